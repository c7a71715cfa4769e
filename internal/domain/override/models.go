// Package override resolves per-employee and per-unit exceptions to
// assignment weights. An employee-level entry always wins over an
// organizational-unit entry for the same (year, template).
package override

import "time"

type Level string

const (
	LevelNone     Level = ""
	LevelEmployee Level = "employee"
	LevelOrgUnit  Level = "org_unit"
)

type Override struct {
	ID         string    `json:"id"`
	Year       int       `json:"year"`
	TemplateID string    `json:"templateId"`
	EmployeeID string    `json:"employeeId,omitempty"`
	OrgUnitID  string    `json:"orgUnitId,omitempty"`
	Excluded   bool      `json:"excluded"`
	Weight     *float64  `json:"weight,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (o Override) Level() Level {
	if o.EmployeeID != "" {
		return LevelEmployee
	}
	if o.OrgUnitID != "" {
		return LevelOrgUnit
	}
	return LevelNone
}

// ScopeKey identifies the override's target; (year, template, scope key) is
// unique.
func (o Override) ScopeKey() string {
	switch o.Level() {
	case LevelEmployee:
		return "employee:" + o.EmployeeID
	case LevelOrgUnit:
		return "org_unit:" + o.OrgUnitID
	default:
		return ""
	}
}

// Resolution is the effective exception for one (employee, year, template).
// Weight is nil when the caller should keep its base weight.
type Resolution struct {
	Excluded bool     `json:"excluded"`
	Weight   *float64 `json:"weight,omitempty"`
	Source   Level    `json:"source,omitempty"`
	ID       string   `json:"overrideId,omitempty"`
}

// Apply returns the effective weight given the caller's base weight, and
// false when the assignment is excluded.
func (r Resolution) Apply(base float64) (float64, bool) {
	if r.Excluded {
		return 0, false
	}
	if r.Weight != nil {
		return *r.Weight, true
	}
	return base, true
}

type Filter struct {
	Year       int
	TemplateID string
	EmployeeID string
	OrgUnitID  string
}
