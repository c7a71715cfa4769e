// Package bonus turns global scores into bonus payouts: a per-year scale,
// scoped overrides of that scale, batch materialization of results and the
// per-employee statement.
package bonus

import (
	"time"

	"github.com/shopspring/decimal"

	"scorecard/internal/domain/override"
)

// Tier is one bracket of a tiered scale: scores at or above MinScore pay
// Fraction of the target.
type Tier struct {
	MinScore float64 `json:"minScore"`
	Fraction float64 `json:"fraction"`
}

// Scale maps a global score to a payout fraction.
type Scale struct {
	Kind        ScaleKind `json:"kind"`
	Threshold   float64   `json:"threshold,omitempty"`
	MinFraction float64   `json:"minFraction,omitempty"`
	MaxFraction float64   `json:"maxFraction,omitempty"`
	Floor       float64   `json:"floor,omitempty"`
	Tiers       []Tier    `json:"tiers,omitempty"`
}

// ScopedOverride replaces the scale, the target multiple, or both for one
// employee or one organizational unit.
type ScopedOverride struct {
	EmployeeID     string   `json:"employeeId,omitempty"`
	OrgUnitID      string   `json:"orgUnitId,omitempty"`
	Scale          *Scale   `json:"scale,omitempty"`
	TargetMultiple *float64 `json:"targetMultiple,omitempty"`
	Note           string   `json:"note,omitempty"`
}

type Config struct {
	Year           int              `json:"year"`
	Scale          Scale            `json:"scale"`
	TargetMultiple float64          `json:"targetMultiple"`
	Overrides      []ScopedOverride `json:"overrides"`
	UpdatedBy      string           `json:"updatedBy,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Terms are the scale and target multiple that apply to one employee, with
// the level each was resolved from.
type Terms struct {
	Scale          Scale          `json:"scale"`
	ScaleSource    override.Level `json:"scaleSource,omitempty"`
	TargetMultiple float64        `json:"targetMultiple"`
	TargetSource   override.Level `json:"targetSource,omitempty"`
}

// Result is the materialized bonus of one employee for one year.
type Result struct {
	EmployeeID string          `json:"employeeId"`
	Year       int             `json:"year"`
	Score      float64         `json:"score"`
	Terms      Terms           `json:"terms"`
	Fraction   float64         `json:"fraction"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	ComputedAt time.Time       `json:"computedAt"`
}

type BatchRequest struct {
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employeeIds,omitempty"`
	OrgUnitID   string   `json:"orgUnitId,omitempty"`
}

type ItemFailure struct {
	EmployeeID string `json:"employeeId"`
	Code       string `json:"code"`
	Error      string `json:"error"`
}

type BatchResult struct {
	Year     int           `json:"year"`
	Count    int           `json:"count"`
	Failed   int           `json:"failed"`
	Sample   []Result      `json:"sample"`
	Failures []ItemFailure `json:"failures"`
}
