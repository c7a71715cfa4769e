// Package assignment manages assignment templates: the objectives and
// aptitudes employees are tracked against, together with their goals.
package assignment

import (
	"time"

	"scorecard/internal/domain/core"
	"scorecard/internal/domain/period"
	"scorecard/internal/domain/scoring"
)

type Kind string

const (
	KindObjective Kind = "objective"
	KindAptitude  Kind = "aptitude"
)

type Scope string

const (
	ScopeOrgUnit  Scope = "org_unit"
	ScopeSubUnit  Scope = "sub_unit"
	ScopeEmployee Scope = "employee"
)

type Template struct {
	ID          string           `json:"id"`
	Year        int              `json:"year"`
	Kind        Kind             `json:"kind"`
	Scope       Scope            `json:"scope"`
	TargetID    string           `json:"targetId"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Weight      float64          `json:"weight"`
	Frequency   period.Frequency `json:"frequency"`
	Window      *period.Window   `json:"window,omitempty"`
	Goals       []scoring.Goal   `json:"goals,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type Filter struct {
	Year       int
	Kind       Kind
	ActiveOnly bool
}

// Periods returns the tracking periods of the template for its year.
func (t Template) Periods() ([]period.Period, error) {
	return period.Generate(t.Year, t.Frequency, t.Window)
}

// AppliesTo reports whether the template's scope targets the employee
// directly, one of its sub-units, or its organizational unit.
func (t Template) AppliesTo(emp core.Employee) bool {
	switch t.Scope {
	case ScopeEmployee:
		return t.TargetID == emp.ID
	case ScopeSubUnit:
		return emp.InSubUnit(t.TargetID)
	case ScopeOrgUnit:
		return t.TargetID != "" && t.TargetID == emp.OrgUnitID
	default:
		return false
	}
}

func (t Template) Goal(goalID string) (scoring.Goal, bool) {
	for _, g := range t.Goals {
		if g.ID == goalID {
			return g, true
		}
	}
	return scoring.Goal{}, false
}
