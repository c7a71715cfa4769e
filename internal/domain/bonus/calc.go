package bonus

import (
	"time"

	"github.com/shopspring/decimal"

	"scorecard/internal/domain/core"
	"scorecard/internal/domain/override"
)

// Resolve picks the scale and target multiple for an employee. Each is
// resolved on its own: the employee's override, then the override for the
// employee's organizational unit, then the year's default.
func (c Config) Resolve(emp core.Employee) Terms {
	var employee, unit *ScopedOverride
	for i := range c.Overrides {
		o := &c.Overrides[i]
		switch {
		case o.EmployeeID != "" && o.EmployeeID == emp.ID:
			employee = o
		case o.OrgUnitID != "" && o.OrgUnitID == emp.OrgUnitID:
			unit = o
		}
	}

	var empScale, unitScale *Scale
	var empTarget, unitTarget *float64
	if employee != nil {
		empScale, empTarget = employee.Scale, employee.TargetMultiple
	}
	if unit != nil {
		unitScale, unitTarget = unit.Scale, unit.TargetMultiple
	}

	var t Terms
	t.Scale, t.ScaleSource = override.Cascade(empScale, unitScale, c.Scale)
	t.TargetMultiple, t.TargetSource = override.Cascade(empTarget, unitTarget, c.TargetMultiple)
	return t
}

// Compute derives one employee's bonus:
// amount = base salary * target multiple * payout fraction.
func Compute(cfg Config, emp core.Employee, score float64, now time.Time) (Result, error) {
	if emp.BaseSalary == nil || emp.BaseSalary.IsNegative() {
		return Result{}, ErrMissingSalary
	}
	terms := cfg.Resolve(emp)
	fraction := decimal.NewFromFloat(PayoutFraction(score, terms.Scale)).Round(fractionPlaces)
	amount := emp.Salary().
		Mul(decimal.NewFromFloat(terms.TargetMultiple)).
		Mul(fraction).
		Round(2)
	return Result{
		EmployeeID: emp.ID,
		Year:       cfg.Year,
		Score:      score,
		Terms:      terms,
		Fraction:   fraction.InexactFloat64(),
		Amount:     amount,
		Currency:   emp.Currency,
		ComputedAt: now,
	}, nil
}
