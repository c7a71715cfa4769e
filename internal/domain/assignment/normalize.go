package assignment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"scorecard/internal/domain/period"
	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
)

// Field aliases accepted on ingestion. The first name is canonical.
var (
	expectedAliases     = []string{"expected", "target", "goal"}
	goalWeightAliases   = []string{"weight", "goalWeight"}
	operatorAliases     = []string{"operator", "comparison"}
	accumulationAliases = []string{"accumulation", "accumulationMode"}
	closureAliases      = []string{"closure", "closureRule"}
	targetIDAliases     = []string{"targetId", "target_id"}
	frequencyAliases    = []string{"frequency", "reviewFrequency"}
)

var operatorNames = map[string]scoring.Operator{
	">=": scoring.OpGreaterOrEqual, "gte": scoring.OpGreaterOrEqual, "at_least": scoring.OpGreaterOrEqual,
	">": scoring.OpGreater, "gt": scoring.OpGreater,
	"<=": scoring.OpLessOrEqual, "lte": scoring.OpLessOrEqual, "at_most": scoring.OpLessOrEqual,
	"<": scoring.OpLess, "lt": scoring.OpLess,
	"==": scoring.OpEqual, "=": scoring.OpEqual, "eq": scoring.OpEqual,
}

var unitNames = map[string]scoring.Unit{
	"binary": scoring.UnitBinary, "boolean": scoring.UnitBinary, "bool": scoring.UnitBinary,
	"percentage": scoring.UnitPercentage, "percent": scoring.UnitPercentage, "%": scoring.UnitPercentage,
	"numeric": scoring.UnitNumeric, "number": scoring.UnitNumeric,
}

var accumulationNames = map[string]scoring.Accumulation{
	"per_period": scoring.PerPeriod, "per-period": scoring.PerPeriod, "periodic": scoring.PerPeriod,
	"cumulative": scoring.Cumulative, "accumulated": scoring.Cumulative,
}

var closureNames = map[string]scoring.ClosureRule{
	"average": scoring.ClosureAverage, "avg": scoring.ClosureAverage,
	"last_period": scoring.ClosureLastPeriod, "last-period": scoring.ClosureLastPeriod,
	"last_period_only": scoring.ClosureLastPeriod, "last-period-only": scoring.ClosureLastPeriod,
	"threshold_count": scoring.ClosureThresholdCount, "threshold-count": scoring.ClosureThresholdCount,
}

var scopeNames = map[string]Scope{
	"org_unit": ScopeOrgUnit, "org-unit": ScopeOrgUnit, "organizational-unit": ScopeOrgUnit, "organizational_unit": ScopeOrgUnit,
	"sub_unit": ScopeSubUnit, "sub-unit": ScopeSubUnit, "subunit": ScopeSubUnit,
	"employee": ScopeEmployee,
}

type fields map[string]json.RawMessage

func (f fields) pick(aliases []string) (json.RawMessage, bool) {
	for _, name := range aliases {
		if raw, ok := f[name]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

// Decode parses a template document, accepting the legacy field aliases and
// value spellings, into the canonical Template. Missing goal ids are
// generated. Decode does not validate business rules; see Validate.
func Decode(data []byte) (Template, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return Template{}, apperror.Validation("body", "invalid JSON document")
	}

	t := Template{Active: true}
	var err error
	if t.ID, err = stringField(f, "id", []string{"id"}); err != nil {
		return Template{}, err
	}
	if t.Year, err = intField(f, "year", []string{"year"}); err != nil {
		return Template{}, err
	}
	kind, err := stringField(f, "kind", []string{"kind"})
	if err != nil {
		return Template{}, err
	}
	t.Kind = Kind(strings.ToLower(kind))
	scope, err := stringField(f, "scope", []string{"scope"})
	if err != nil {
		return Template{}, err
	}
	t.Scope = Scope(normalizeName(scope, scopeNames))
	if t.TargetID, err = stringField(f, "targetId", targetIDAliases); err != nil {
		return Template{}, err
	}
	if t.Name, err = stringField(f, "name", []string{"name"}); err != nil {
		return Template{}, err
	}
	if t.Description, err = stringField(f, "description", []string{"description"}); err != nil {
		return Template{}, err
	}
	if t.Weight, err = numberField(f, "weight", []string{"weight"}); err != nil {
		return Template{}, err
	}
	freq, err := stringField(f, "frequency", frequencyAliases)
	if err != nil {
		return Template{}, err
	}
	t.Frequency = period.Frequency(strings.ToLower(freq))
	if raw, ok := f.pick([]string{"active"}); ok {
		if err := json.Unmarshal(raw, &t.Active); err != nil {
			return Template{}, apperror.Validation("active", "must be a boolean")
		}
	}
	if raw, ok := f.pick([]string{"window"}); ok {
		w, err := decodeWindow(raw)
		if err != nil {
			return Template{}, err
		}
		t.Window = w
	}
	if raw, ok := f.pick([]string{"goals"}); ok {
		goals, err := DecodeGoals(raw)
		if err != nil {
			return Template{}, err
		}
		t.Goals = goals
	}
	return t, nil
}

// DecodeGoals normalizes a JSON array of goal definitions.
func DecodeGoals(data []byte) ([]scoring.Goal, error) {
	if len(data) == 0 || isNull(data) {
		return nil, nil
	}
	var raw []fields
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperror.Validation("goals", "must be an array of goal objects")
	}
	goals := make([]scoring.Goal, 0, len(raw))
	for i, f := range raw {
		g, err := decodeGoal(f, fmt.Sprintf("goals[%d]", i))
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func decodeGoal(f fields, path string) (scoring.Goal, error) {
	g := scoring.Goal{
		Unit:         scoring.UnitNumeric,
		Operator:     scoring.OpGreaterOrEqual,
		Accumulation: scoring.PerPeriod,
		Closure:      scoring.ClosureAverage,
	}
	var err error
	if g.ID, err = stringField(f, path+".id", []string{"id"}); err != nil {
		return g, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Name, err = stringField(f, path+".name", []string{"name"}); err != nil {
		return g, err
	}
	if g.Expected, err = numberField(f, path+".expected", expectedAliases); err != nil {
		return g, err
	}
	if unit, err := stringField(f, path+".unit", []string{"unit"}); err != nil {
		return g, err
	} else if unit != "" {
		g.Unit = scoring.Unit(normalizeName(unit, unitNames))
	}
	if op, err := stringField(f, path+".operator", operatorAliases); err != nil {
		return g, err
	} else if op != "" {
		g.Operator = scoring.Operator(normalizeName(op, operatorNames))
	}
	if acc, err := stringField(f, path+".accumulation", accumulationAliases); err != nil {
		return g, err
	} else if acc != "" {
		g.Accumulation = scoring.Accumulation(normalizeName(acc, accumulationNames))
	}
	if closure, err := stringField(f, path+".closure", closureAliases); err != nil {
		return g, err
	} else if closure != "" {
		g.Closure = scoring.ClosureRule(normalizeName(closure, closureNames))
	}
	if _, ok := f.pick(goalWeightAliases); ok {
		w, err := numberField(f, path+".weight", goalWeightAliases)
		if err != nil {
			return g, err
		}
		g.Weight = &w
	}
	threshold, err := intField(f, path+".threshold", []string{"threshold"})
	if err != nil {
		return g, err
	}
	g.Threshold = threshold
	if g.Tolerance, err = numberField(f, path+".tolerance", []string{"tolerance"}); err != nil {
		return g, err
	}
	if g.EffortCredit, err = boolField(f, path+".effortCredit", []string{"effortCredit", "effort_credit"}); err != nil {
		return g, err
	}
	if g.Overachievement, err = boolField(f, path+".overachievement", []string{"overachievement"}); err != nil {
		return g, err
	}
	if g.OverachievementCap, err = numberField(f, path+".overachievementCap", []string{"overachievementCap", "overachievement_cap"}); err != nil {
		return g, err
	}
	return g, nil
}

func decodeWindow(raw json.RawMessage) (*period.Window, error) {
	var w struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, apperror.Validation("window", "must be an object with start and end")
	}
	if w.Start == "" && w.End == "" {
		return nil, nil
	}
	start, err := parseDate(w.Start)
	if err != nil {
		return nil, apperror.Validation("window.start", "must be a date (YYYY-MM-DD)")
	}
	end, err := parseDate(w.End)
	if err != nil {
		return nil, apperror.Validation("window.end", "must be a date (YYYY-MM-DD)")
	}
	return &period.Window{Start: start, End: end}, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func normalizeName[T ~string](value string, names map[string]T) string {
	key := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := names[key]; ok {
		return string(canonical)
	}
	return key
}

func stringField(f fields, path string, aliases []string) (string, error) {
	raw, ok := f.pick(aliases)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", apperror.Validation(path, "must be a string")
	}
	return strings.TrimSpace(s), nil
}

// numberField accepts JSON numbers and numeric strings. Anything else is a
// validation error: writes never coerce silently.
func numberField(f fields, path string, aliases []string) (float64, error) {
	raw, ok := f.pick(aliases)
	if !ok {
		return 0, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, apperror.Validation(path, "must be a number")
	}
	switch x := v.(type) {
	case json.Number:
		n = x
	case string:
		n = json.Number(strings.TrimSpace(x))
	default:
		return 0, apperror.Validation(path, "must be a number")
	}
	parsed, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, apperror.Validation(path, "must be a number")
	}
	return parsed, nil
}

func intField(f fields, path string, aliases []string) (int, error) {
	v, err := numberField(f, path, aliases)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) {
		return 0, apperror.Validation(path, "must be a whole number")
	}
	return int(v), nil
}

func boolField(f fields, path string, aliases []string) (bool, error) {
	raw, ok := f.pick(aliases)
	if !ok {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, apperror.Validation(path, "must be a boolean")
	}
	return b, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
