package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scorecard/internal/platform/apperror"
)

func linear() Scale {
	return Scale{Kind: ScaleLinear, Threshold: 60, MinFraction: 0, MaxFraction: 0.3}
}

func tiered() Scale {
	return Scale{Kind: ScaleTiered, Tiers: []Tier{{95, 0.3}, {0, 0}, {85, 0.2}, {70, 0.1}}}
}

func TestLinearFraction(t *testing.T) {
	s := linear()
	assert.InDelta(t, 0.15, PayoutFraction(80, s), 1e-12)
	assert.Equal(t, 0.0, PayoutFraction(59.9, s))
	assert.Equal(t, 0.0, PayoutFraction(60, s))
	assert.InDelta(t, 0.3, PayoutFraction(100, s), 1e-12)
	assert.InDelta(t, 0.3, PayoutFraction(130, s), 1e-12, "overachievement does not pay past the maximum")

	s.Floor = 0.02
	s.MinFraction = 0.05
	assert.Equal(t, 0.02, PayoutFraction(10, s))
	assert.Equal(t, 0.05, PayoutFraction(60, s))
}

func TestLinearFractionIsMonotonic(t *testing.T) {
	scales := []Scale{
		linear(),
		{Kind: ScaleLinear, Threshold: 0, MinFraction: 0.1, MaxFraction: 0.1},
		{Kind: ScaleLinear, Threshold: 100, MinFraction: 0.2, MaxFraction: 0.5, Floor: 0.1},
		{Kind: ScaleLinear, Threshold: 45, MinFraction: 0.05, MaxFraction: 0.4, Floor: 0.01},
	}
	for _, s := range scales {
		prev := PayoutFraction(-10, s)
		for score := -10.0; score <= 150; score += 0.5 {
			got := PayoutFraction(score, s)
			assert.GreaterOrEqual(t, got, prev, "score %v scale %+v", score, s)
			prev = got
		}
	}
}

func TestTieredFraction(t *testing.T) {
	s := tiered()
	assert.Equal(t, 0.2, PayoutFraction(90, s))
	assert.Equal(t, 0.1, PayoutFraction(70, s))
	assert.Equal(t, 0.0, PayoutFraction(69.9, s))
	assert.Equal(t, 0.3, PayoutFraction(101, s))
	assert.Equal(t, 0.0, PayoutFraction(-1, s))
}

func TestValidateScale(t *testing.T) {
	assert.NoError(t, ValidateScale(linear(), "scale"))
	assert.NoError(t, ValidateScale(tiered(), "scale"))

	bad := linear()
	bad.Threshold = 120
	assert.Equal(t, "scale.threshold", apperror.FieldOf(ValidateScale(bad, "scale")))

	bad = linear()
	bad.MinFraction = 0.4
	assert.Equal(t, "scale.maxFraction", apperror.FieldOf(ValidateScale(bad, "scale")))

	bad = linear()
	bad.Floor = 0.1
	assert.Equal(t, "scale.floor", apperror.FieldOf(ValidateScale(bad, "scale")))

	assert.Equal(t, "scale.tiers", apperror.FieldOf(ValidateScale(Scale{Kind: ScaleTiered}, "scale")))
	assert.Equal(t, "scale.tiers", apperror.FieldOf(ValidateScale(Scale{Kind: ScaleTiered, Tiers: []Tier{{0, 0.2}, {50, 0.1}}}, "scale")))
	assert.Equal(t, "scale.kind", apperror.FieldOf(ValidateScale(Scale{Kind: "step"}, "scale")))
}

func TestValidateConfig(t *testing.T) {
	two := 2.0
	cfg := Config{Year: 2024, Scale: linear(), TargetMultiple: 1, Overrides: []ScopedOverride{
		{OrgUnitID: "sales", TargetMultiple: &two},
	}}
	assert.NoError(t, ValidateConfig(cfg))

	dup := cfg
	dup.Overrides = append(dup.Overrides, ScopedOverride{OrgUnitID: "sales", TargetMultiple: &two})
	assert.Equal(t, "overrides", apperror.FieldOf(ValidateConfig(dup)))

	both := cfg
	both.Overrides = []ScopedOverride{{OrgUnitID: "sales", EmployeeID: "e1", TargetMultiple: &two}}
	assert.Equal(t, "overrides", apperror.FieldOf(ValidateConfig(both)))

	empty := cfg
	empty.Overrides = []ScopedOverride{{EmployeeID: "e1"}}
	assert.Equal(t, "overrides", apperror.FieldOf(ValidateConfig(empty)))

	neg := cfg
	neg.TargetMultiple = -1
	assert.Equal(t, "targetMultiple", apperror.FieldOf(ValidateConfig(neg)))
}
