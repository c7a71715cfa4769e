package shared

import (
	"net/http"
	"slices"
	"strings"

	"scorecard/internal/transport/http/api"
)

const (
	minYear = 2000
	maxYear = 2100
)

// ValidationIssue names one rejected input field.
type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects every problem with a request before answering, so a
// client sees all rejected fields in one 400.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

// Add records an issue. Blank reasons are dropped.
func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum accepts an empty value; pair it with Required when the field is
// mandatory. Matching ignores case.
func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if !slices.ContainsFunc(allowed, func(candidate string) bool {
		return strings.EqualFold(value, strings.TrimSpace(candidate))
	}) {
		v.Add(field, reason)
	}
}

func (v *Validator) Year(field string, value int) {
	if value < minYear || value > maxYear {
		v.Add(field, "must be between 2000 and 2100")
	}
}

// QueryYear reads a year from the query string. An absent parameter yields 0
// and is only an issue when required.
func (v *Validator) QueryYear(r *http.Request, name string, required bool) int {
	year, ok := QueryInt(r, name)
	switch {
	case !ok:
		v.Add(name, "must be an integer")
	case year == 0 && required:
		v.Add(name, "is required")
	case year != 0:
		v.Year(name, year)
	}
	return year
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

// Issues returns a copy ordered by field, then reason.
func (v *Validator) Issues() []ValidationIssue {
	if !v.HasIssues() {
		return nil
	}
	out := slices.Clone(v.issues)
	slices.SortStableFunc(out, func(a, b ValidationIssue) int {
		if c := strings.Compare(a.Field, b.Field); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})
	return out
}

// Reject writes a 400 and returns true when any issue was recorded.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

// FailValidation writes the validation envelope. details.field names the
// first rejected field, matching errors raised by the domain services;
// details.fields lists all of them.
func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	details := map[string]any{"fields": issues}
	if len(issues) > 0 {
		details["field"] = issues[0].Field
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed", details, requestID)
}
