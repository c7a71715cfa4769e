package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation records the share of an employee's time spent in a sub-unit.
type Participation struct {
	SubUnitID string  `json:"subUnitId"`
	Percent   float64 `json:"percent"`
}

type Employee struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	OrgUnitID      string           `json:"orgUnitId"`
	SubUnitID      string           `json:"subUnitId"`
	Participations []Participation  `json:"participations,omitempty"`
	BaseSalary     *decimal.Decimal `json:"baseSalary,omitempty"`
	Currency       string           `json:"currency"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// ParticipationShare returns the recorded share (0..1) of the employee's time
// in subUnitID. ok is false when no participation is recorded for it.
func (e Employee) ParticipationShare(subUnitID string) (share float64, ok bool) {
	for _, p := range e.Participations {
		if p.SubUnitID == subUnitID {
			return p.Percent / 100, true
		}
	}
	return 0, false
}

// InSubUnit reports whether the employee belongs to or participates in the
// sub-unit.
func (e Employee) InSubUnit(subUnitID string) bool {
	if subUnitID == "" {
		return false
	}
	if e.SubUnitID == subUnitID {
		return true
	}
	_, ok := e.ParticipationShare(subUnitID)
	return ok
}

func (e Employee) Salary() decimal.Decimal {
	if e.BaseSalary == nil {
		return decimal.Zero
	}
	return *e.BaseSalary
}
