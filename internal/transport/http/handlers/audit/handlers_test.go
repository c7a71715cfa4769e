package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/transport/http/middleware"
)

type fakeEvents struct {
	filter audit.Filter
	limit  int
}

func (f *fakeEvents) List(_ context.Context, filter audit.Filter, limit, _ int) ([]audit.Event, error) {
	f.filter = filter
	f.limit = limit
	return []audit.Event{{
		ID:         "evt-1",
		ActorID:    "u-hr",
		Action:     "bonus.config.put",
		EntityType: "bonus_config",
		EntityID:   "2024",
		CreatedAt:  time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC),
	}}, nil
}

type fakeRuns struct {
	jobType string
}

func (f *fakeRuns) ListRuns(_ context.Context, jobType string, _ int) ([]jobs.Run, error) {
	f.jobType = jobType
	return []jobs.Run{{ID: "run-1", JobType: jobType, Status: jobs.StatusCompleted}}, nil
}

func serve(h *Handler, actor auth.Actor, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var hr = auth.Actor{UserID: "u-hr", Role: auth.RoleHR}

func TestListEventsPassesFilter(t *testing.T) {
	events := &fakeEvents{}
	h := NewHandler(events, &fakeRuns{}, auth.DefaultPolicy())

	rec := serve(h, hr, "/audit/events?action=template.update&limit=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "template.update", events.filter.Action)
	assert.Equal(t, 500, events.limit)

	rec = serve(h, hr, "/audit/events?offset=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, auth.Actor{UserID: "u-mgr", Role: auth.RoleManager}, "/audit/events")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportEventsWritesCSV(t *testing.T) {
	h := NewHandler(&fakeEvents{}, &fakeRuns{}, auth.DefaultPolicy())
	rec := serve(h, hr, "/audit/events/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bonus.config.put", rows[1][2])
	assert.Equal(t, "2024-12-01T09:00:00Z", rows[1][6])
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{}
	h := NewHandler(&fakeEvents{}, runs, auth.DefaultPolicy())
	rec := serve(h, hr, "/jobs/runs?type=bonus_batch")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jobs.JobBonusBatch, runs.jobType)
}
