package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("year", "", "is required")
	v.Enum("mode", "draft", []string{"official", "provisional"}, "must be official or provisional")
	v.Year("fiscalYear", 1999)
	v.Add("ignored", " ")

	require.True(t, v.HasIssues())
	issues := v.Issues()
	require.Len(t, issues, 3)
	assert.Equal(t, "fiscalYear", issues[0].Field)
	assert.Equal(t, "mode", issues[1].Field)
	assert.Equal(t, "year", issues[2].Field)
}

func TestDecodeJSONKeepsNumbers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value": 12.50}`))
	rec := httptest.NewRecorder()

	var dst map[string]any
	require.True(t, DecodeJSON(rec, req, &dst, "req"))
	assert.Equal(t, json.Number("12.50"), dst["value"])
}

func TestDecodeJSONRejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(" "))
	rec := httptest.NewRecorder()

	var dst map[string]any
	assert.False(t, DecodeJSON(rec, req, &dst, "req"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathYear(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/{year}", func(w http.ResponseWriter, r *http.Request) {
		if year, ok := PathYear(w, r, ""); ok {
			_, _ = w.Write([]byte(strconv.Itoa(year)))
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/2024", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadWindowClampsLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=900&offset=20", nil)
	v := NewValidator()
	win := ReadWindow(req, v, 50, 200)
	assert.False(t, v.HasIssues())
	assert.Equal(t, Window{Limit: 200, Offset: 20}, win)

	win = ReadWindow(httptest.NewRequest(http.MethodGet, "/", nil), v, 50, 200)
	assert.Equal(t, Window{Limit: 50}, win)
}

func TestReadWindowReportsBadValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=0&offset=-1", nil)
	v := NewValidator()
	ReadWindow(req, v, 50, 200)

	issues := v.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "limit", issues[0].Field)
	assert.Equal(t, "offset", issues[1].Field)

	v = NewValidator()
	ReadWindow(httptest.NewRequest(http.MethodGet, "/?limit=ten", nil), v, 50, 200)
	assert.Equal(t, []ValidationIssue{{Field: "limit", Reason: "must be an integer"}}, v.Issues())
}

func TestQueryYear(t *testing.T) {
	v := NewValidator()
	assert.Equal(t, 2024, v.QueryYear(httptest.NewRequest(http.MethodGet, "/?year=2024", nil), "year", true))
	assert.Equal(t, 0, v.QueryYear(httptest.NewRequest(http.MethodGet, "/", nil), "year", false))
	assert.False(t, v.HasIssues())

	v.QueryYear(httptest.NewRequest(http.MethodGet, "/", nil), "year", true)
	v.QueryYear(httptest.NewRequest(http.MethodGet, "/?fy=1999", nil), "fy", false)
	assert.Equal(t, []ValidationIssue{
		{Field: "fy", Reason: "must be between 2000 and 2100"},
		{Field: "year", Reason: "is required"},
	}, v.Issues())
}

func TestFailValidationNamesFirstField(t *testing.T) {
	rec := httptest.NewRecorder()
	FailValidation(rec, "req-1", []ValidationIssue{{Field: "templateId", Reason: "is required"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	details := env["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "templateId", details["field"])
	assert.Len(t, details["fields"], 1)
}
