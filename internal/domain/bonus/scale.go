package bonus

import (
	"math"
	"sort"

	"scorecard/internal/platform/apperror"
)

// PayoutFraction applies the scale to a global score.
//
// Linear scales clamp the score to [0, 100]. Below the threshold they pay
// Floor; from the threshold they interpolate between MinFraction and
// MaxFraction, reaching MaxFraction at 100. Tiered scales pay the fraction of
// the highest bracket whose MinScore does not exceed the score, or 0 when no
// bracket qualifies.
func PayoutFraction(score float64, s Scale) float64 {
	if math.IsNaN(score) {
		score = 0
	}
	switch s.Kind {
	case ScaleTiered:
		tiers := sortedTiers(s.Tiers)
		fraction := 0.0
		for _, t := range tiers {
			if t.MinScore <= score {
				fraction = t.Fraction
			}
		}
		return fraction
	default:
		score = math.Max(0, math.Min(100, score))
		if score < s.Threshold {
			return s.Floor
		}
		if s.Threshold >= 100 {
			return s.MaxFraction
		}
		return s.MinFraction + (s.MaxFraction-s.MinFraction)*(score-s.Threshold)/(100-s.Threshold)
	}
}

func sortedTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinScore < out[j].MinScore })
	return out
}

// ValidateScale rejects scales whose payout would not be monotonic in score.
func ValidateScale(s Scale, field string) error {
	switch s.Kind {
	case ScaleLinear:
		if s.Threshold < 0 || s.Threshold > 100 {
			return apperror.Validation(field+".threshold", "must be between 0 and 100")
		}
		if s.MinFraction < 0 || s.MaxFraction < s.MinFraction {
			return apperror.Validation(field+".maxFraction", "fractions must satisfy 0 <= minFraction <= maxFraction")
		}
		if s.Floor < 0 || s.Floor > s.MinFraction {
			return apperror.Validation(field+".floor", "floor must be between 0 and minFraction")
		}
		if len(s.Tiers) > 0 {
			return apperror.Validation(field+".tiers", "linear scales take no tiers")
		}
	case ScaleTiered:
		if len(s.Tiers) == 0 {
			return apperror.Validation(field+".tiers", "at least one tier is required")
		}
		tiers := sortedTiers(s.Tiers)
		for i, t := range tiers {
			if t.Fraction < 0 {
				return apperror.Validation(field+".tiers", "fractions must not be negative")
			}
			if i > 0 && t.MinScore == tiers[i-1].MinScore {
				return apperror.Validation(field+".tiers", "tier minimum scores must be unique")
			}
			if i > 0 && t.Fraction < tiers[i-1].Fraction {
				return apperror.Validation(field+".tiers", "fractions must not decrease as scores rise")
			}
		}
	default:
		return apperror.Validation(field+".kind", "kind must be linear or tiered")
	}
	return nil
}

// ValidateConfig checks the default scale, the target multiple and every
// scoped override.
func ValidateConfig(c Config) error {
	if c.Year < 2000 || c.Year > 2100 {
		return apperror.Validation("year", "year must be between 2000 and 2100")
	}
	if err := ValidateScale(c.Scale, "scale"); err != nil {
		return err
	}
	if c.TargetMultiple < 0 {
		return apperror.Validation("targetMultiple", "must not be negative")
	}
	seen := map[string]bool{}
	for _, o := range c.Overrides {
		if (o.EmployeeID == "") == (o.OrgUnitID == "") {
			return apperror.Validation("overrides", "each override targets exactly one employee or organizational unit")
		}
		key := "employee:" + o.EmployeeID
		if o.OrgUnitID != "" {
			key = "org_unit:" + o.OrgUnitID
		}
		if seen[key] {
			return apperror.Validation("overrides", "duplicate override for "+key)
		}
		seen[key] = true
		if o.Scale == nil && o.TargetMultiple == nil {
			return apperror.Validation("overrides", "override for "+key+" changes nothing")
		}
		if o.Scale != nil {
			if err := ValidateScale(*o.Scale, "overrides.scale"); err != nil {
				return err
			}
		}
		if o.TargetMultiple != nil && *o.TargetMultiple < 0 {
			return apperror.Validation("overrides.targetMultiple", "must not be negative")
		}
	}
	return nil
}
