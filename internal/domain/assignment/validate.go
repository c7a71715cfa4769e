package assignment

import (
	"fmt"
	"strings"

	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
)

// Validate enforces the write-time rules for a template. It rejects the
// first offending field.
func Validate(t Template) error {
	if t.Year < 2000 || t.Year > 2100 {
		return apperror.Validation("year", "must be a fiscal year between 2000 and 2100")
	}
	if t.Kind != KindObjective && t.Kind != KindAptitude {
		return apperror.Validation("kind", "must be objective or aptitude")
	}
	switch t.Scope {
	case ScopeOrgUnit, ScopeSubUnit, ScopeEmployee:
	default:
		return apperror.Validation("scope", "must be org_unit, sub_unit or employee")
	}
	if strings.TrimSpace(t.TargetID) == "" {
		return apperror.Validation("targetId", "scope target id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return apperror.Validation("name", "name is required")
	}
	if t.Weight < 0 || t.Weight > 100 {
		return apperror.Validation("weight", "must be between 0 and 100")
	}
	if !t.Frequency.Valid() {
		return apperror.Validation("frequency", "must be monthly, quarterly, semestral or annual")
	}
	periods, err := t.Periods()
	if err != nil {
		return err
	}

	switch t.Kind {
	case KindAptitude:
		if len(t.Goals) > 0 {
			return apperror.Validation("goals", "aptitudes are rated directly and carry no goals")
		}
	case KindObjective:
		if len(t.Goals) == 0 {
			return apperror.Validation("goals", "an objective needs at least one goal")
		}
	}

	seen := map[string]bool{}
	for i, g := range t.Goals {
		path := fmt.Sprintf("goals[%d]", i)
		if seen[g.ID] {
			return apperror.Validation(path+".id", "duplicate goal id")
		}
		seen[g.ID] = true
		if err := validateGoal(g, path, len(periods)); err != nil {
			return err
		}
	}
	return nil
}

func validateGoal(g scoring.Goal, path string, tracked int) error {
	if strings.TrimSpace(g.ID) == "" {
		return apperror.Validation(path+".id", "goal id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return apperror.Validation(path+".name", "name is required")
	}
	if !g.Unit.Valid() {
		return apperror.Validation(path+".unit", "must be binary, percentage or numeric")
	}
	if !g.Operator.Valid() {
		return apperror.Validation(path+".operator", "must be one of >=, >, <=, <, ==")
	}
	if !g.Accumulation.Valid() {
		return apperror.Validation(path+".accumulation", "must be per_period or cumulative")
	}
	if !g.Closure.Valid() {
		return apperror.Validation(path+".closure", "must be average, last_period or threshold_count")
	}
	if g.Weight != nil && (*g.Weight < 0 || *g.Weight > 100) {
		return apperror.Validation(path+".weight", "must be between 0 and 100")
	}
	if g.Tolerance < 0 {
		return apperror.Validation(path+".tolerance", "must not be negative")
	}
	if g.Unit == scoring.UnitPercentage && (g.Expected < 0 || g.Expected > 100) {
		return apperror.Validation(path+".expected", "percentage goals expect a value between 0 and 100")
	}
	if g.Threshold < 0 || g.Threshold > tracked {
		return apperror.Validation(path+".threshold", fmt.Sprintf("must be between 0 and the %d tracked periods", tracked))
	}
	if g.OverachievementCap != 0 && g.OverachievementCap < 100 {
		return apperror.Validation(path+".overachievementCap", "must be at least 100")
	}
	return nil
}
