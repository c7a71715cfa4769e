package bonus

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/core"
	"scorecard/internal/domain/override"
)

func employeeWithSalary(id, unit, salary string) core.Employee {
	s := decimal.RequireFromString(salary)
	return core.Employee{ID: id, Name: "Employee " + id, OrgUnitID: unit, BaseSalary: &s, Currency: "USD", Active: true}
}

func TestComputeLinearScenario(t *testing.T) {
	cfg := Config{Year: 2024, Scale: linear(), TargetMultiple: 1}
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	r, err := Compute(cfg, employeeWithSalary("e1", "ops", "1000000"), 80, now)
	require.NoError(t, err)
	assert.Equal(t, 0.15, r.Fraction)
	assert.True(t, decimal.NewFromInt(150000).Equal(r.Amount), "amount %s", r.Amount)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, override.LevelNone, r.Terms.ScaleSource)
	assert.Equal(t, now, r.ComputedAt)
}

func TestComputeTieredScenario(t *testing.T) {
	cfg := Config{Year: 2024, Scale: tiered(), TargetMultiple: 0.5}
	r, err := Compute(cfg, employeeWithSalary("e1", "ops", "80000"), 90, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.2, r.Fraction)
	assert.True(t, decimal.NewFromInt(8000).Equal(r.Amount), "amount %s", r.Amount)
}

func TestComputeRequiresSalary(t *testing.T) {
	_, err := Compute(Config{Year: 2024, Scale: linear()}, core.Employee{ID: "e1"}, 80, time.Now())
	assert.ErrorIs(t, err, ErrMissingSalary)
}

func TestResolveCascadesPerField(t *testing.T) {
	two, three := 2.0, 3.0
	unitScale := tiered()
	cfg := Config{Year: 2024, Scale: linear(), TargetMultiple: 1, Overrides: []ScopedOverride{
		{OrgUnitID: "sales", Scale: &unitScale, TargetMultiple: &two},
		{EmployeeID: "star", TargetMultiple: &three},
	}}

	star := cfg.Resolve(employeeWithSalary("star", "sales", "1"))
	assert.Equal(t, 3.0, star.TargetMultiple)
	assert.Equal(t, override.LevelEmployee, star.TargetSource)
	assert.Equal(t, ScaleTiered, star.Scale.Kind)
	assert.Equal(t, override.LevelOrgUnit, star.ScaleSource)

	colleague := cfg.Resolve(employeeWithSalary("c", "sales", "1"))
	assert.Equal(t, 2.0, colleague.TargetMultiple)
	assert.Equal(t, override.LevelOrgUnit, colleague.TargetSource)

	outsider := cfg.Resolve(employeeWithSalary("o", "ops", "1"))
	assert.Equal(t, 1.0, outsider.TargetMultiple)
	assert.Equal(t, ScaleLinear, outsider.Scale.Kind)
	assert.Equal(t, override.LevelNone, outsider.ScaleSource)
}
