// Package performance aggregates evaluations into per-employee objective,
// aptitude and global scores for a fiscal year.
package performance

import (
	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/override"
	"scorecard/internal/domain/scoring"
)

// PeriodScore is an item's score in one tracked period.
type PeriodScore struct {
	PeriodCode string  `json:"periodCode"`
	Ordinal    int     `json:"ordinal"`
	Score      float64 `json:"score"`
}

// GoalBreakdown is one goal's per-period series and its closed result.
type GoalBreakdown struct {
	GoalID  string                 `json:"goalId"`
	Name    string                 `json:"name"`
	Weight  *float64               `json:"weight,omitempty"`
	Tracked int                    `json:"tracked"`
	Periods []scoring.PeriodResult `json:"periods"`
	Closed  scoring.Result         `json:"closed"`
}

// ItemScore is the contribution of one assignment template.
type ItemScore struct {
	TemplateID      string           `json:"templateId"`
	Name            string           `json:"name"`
	Kind            assignment.Kind  `json:"kind"`
	Scope           assignment.Scope `json:"scope"`
	BaseWeight      float64          `json:"baseWeight"`
	Participation   *float64         `json:"participation,omitempty"`
	EffectiveWeight float64          `json:"effectiveWeight"`
	OverrideSource  override.Level   `json:"overrideSource,omitempty"`
	Score           float64          `json:"score"`
	Evaluations     int              `json:"evaluations"`
	Periods         []PeriodScore    `json:"periods"`
	Goals           []GoalBreakdown  `json:"goals,omitempty"`
}

// Exclusion names an applicable template that did not contribute.
type Exclusion struct {
	TemplateID string `json:"templateId"`
	Reason     string `json:"reason"`
}

const (
	ReasonOverride      = "excluded_by_override"
	ReasonNoEvaluations = "no_evaluations"
)

// EmployeeScore is the aggregation result for one employee and year.
type EmployeeScore struct {
	EmployeeID string        `json:"employeeId"`
	Year       int           `json:"year"`
	Mode       Mode          `json:"mode"`
	Objectives scoring.Block `json:"objectives"`
	Aptitudes  scoring.Block `json:"aptitudes"`
	Global     float64       `json:"global"`
	Items      []ItemScore   `json:"items"`
	Excluded   []Exclusion   `json:"excluded,omitempty"`
}

// Summary describes the distribution of global scores across a population.
type Summary struct {
	Employees    int            `json:"employees"`
	Scored       int            `json:"scored"`
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type ComputeRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
	Year        int      `json:"year"`
	Mode        Mode     `json:"mode,omitempty"`
}

type ComputeResult struct {
	Scores  []EmployeeScore `json:"scores"`
	Summary Summary         `json:"summary"`
}
