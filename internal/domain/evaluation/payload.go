package evaluation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
)

// applyResults merges submitted goal results into current. Writes are
// strict: unknown goals and unparseable values are rejected. A null value
// clears the goal's result.
func applyResults(tpl assignment.Template, current map[string]float64, submitted map[string]any) (map[string]float64, error) {
	out := make(map[string]float64, len(current)+len(submitted))
	for k, v := range current {
		out[k] = v
	}
	if len(submitted) > 0 && tpl.Kind != assignment.KindObjective {
		return nil, apperror.Validation("results", "aptitudes take a rating, not goal results")
	}
	for goalID, raw := range submitted {
		field := "results." + goalID
		g, ok := tpl.Goal(goalID)
		if !ok {
			return nil, apperror.Validation(field, "unknown goal")
		}
		if raw == nil {
			delete(out, goalID)
			continue
		}
		value, err := parseValue(raw)
		if err != nil {
			return nil, apperror.Validation(field, err.Error())
		}
		switch g.Unit {
		case scoring.UnitBinary:
			if value != 0 && value != 1 {
				return nil, apperror.Validation(field, "binary goals take 0/1 or true/false")
			}
		case scoring.UnitPercentage:
			if value < 0 {
				return nil, apperror.Validation(field, "percentage must not be negative")
			}
		}
		out[goalID] = value
	}
	return out, nil
}

func validateRating(tpl assignment.Template, rating *float64, scaleMax float64) error {
	if rating == nil {
		return nil
	}
	if tpl.Kind != assignment.KindAptitude {
		return apperror.Validation("rating", "only aptitudes are rated")
	}
	if math.IsNaN(*rating) || *rating < 0 || *rating > scaleMax {
		return apperror.Validation("rating", "must be between 0 and "+strconv.FormatFloat(scaleMax, 'f', -1, 64))
	}
	return nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

func parseValue(raw any) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		v = x
	case int:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, parseError("must be a number")
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, parseError("must be a number")
		}
		v = f
	default:
		return 0, parseError("must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, parseError("must be a finite number")
	}
	return v, nil
}
