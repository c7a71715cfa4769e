package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/auth"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/metrics"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type emptyTemplates struct{}

func (emptyTemplates) Create(_ context.Context, _ auth.Actor, t assignment.Template) (assignment.Template, error) {
	return t, nil
}

func (emptyTemplates) Update(_ context.Context, _ auth.Actor, t assignment.Template) (assignment.Template, error) {
	return t, nil
}

func (emptyTemplates) Deactivate(context.Context, auth.Actor, string) error { return nil }

func (emptyTemplates) Get(context.Context, string) (*assignment.Template, error) {
	return nil, assignment.ErrTemplateNotFound
}

func (emptyTemplates) List(context.Context, assignment.Filter) ([]assignment.Template, error) {
	return []assignment.Template{}, nil
}

const secret = "router-test-secret"

func testRouter(ready error) http.Handler {
	cfg := config.Config{JWTSecret: secret, MetricsEnabled: true, CORSAllowedOrigins: []string{"https://app.example"}}
	return NewRouter(cfg, Deps{
		Policy:    auth.DefaultPolicy(),
		Ready:     fakePinger{err: ready},
		Metrics:   metrics.New(),
		Templates: emptyTemplates{},
	})
}

func TestHealthAndReadiness(t *testing.T) {
	h := testRouter(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	testRouter(errors.New("down")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := testRouter(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.GenerateToken(secret, auth.Actor{UserID: "u-mgr", Role: auth.RoleManager}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates?year=2024", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsCountRequests(t *testing.T) {
	h := testRouter(nil)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestsTotal":1`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/templates", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
