package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/transport/http/api"
)

// DecodeJSON reads the request body into dst. Numbers are kept as
// json.Number so free-form payloads preserve their textual form. On failure a
// validation envelope is written and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusRequestEntityTooLarge, "validation_error", "request body too large or unreadable", requestID)
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		api.Fail(w, http.StatusBadRequest, "validation_error", "request body is required", requestID)
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			FailValidation(w, requestID, []ValidationIssue{{Field: typeErr.Field, Reason: "has the wrong type"}})
		case errors.As(err, &syntaxErr):
			api.Fail(w, http.StatusBadRequest, "validation_error", "malformed json", requestID)
		default:
			api.Fail(w, http.StatusBadRequest, "validation_error", "invalid request payload", requestID)
		}
		return false
	}
	return true
}

// PathYear parses a {year} URL parameter.
func PathYear(w http.ResponseWriter, r *http.Request, requestID string) (int, bool) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	v := NewValidator()
	if err != nil {
		v.Add("year", "must be an integer")
	} else {
		v.Year("year", year)
	}
	if v.Reject(w, requestID) {
		return 0, false
	}
	return year, true
}

// QueryInt returns the integer query parameter name, or 0 when absent. The
// second return is false when the value is present but not an integer.
func QueryInt(r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// QueryBool returns nil when the parameter is absent or unparsable.
func QueryBool(r *http.Request, name string) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}
