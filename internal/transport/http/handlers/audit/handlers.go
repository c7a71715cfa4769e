package audithandler

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type EventLister interface {
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, jobType string, limit int) ([]jobs.Run, error)
}

type Handler struct {
	Events EventLister
	Runs   RunLister
	Policy *auth.Policy
}

func NewHandler(events EventLister, runs RunLister, policy *auth.Policy) *Handler {
	return &Handler{Events: events, Runs: runs, Policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCapability(h.Policy, auth.CapAuditRead))
		r.Get("/audit/events", h.handleListEvents)
		r.Get("/audit/events/export", h.handleExportEvents)
		r.Get("/jobs/runs", h.handleListRuns)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	query := r.URL.Query()
	return audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		EntityID:   query.Get("entityId"),
		ActorID:    query.Get("actorId"),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	win := shared.ReadWindow(r, v, 100, 500)
	if v.Reject(w, requestID) {
		return
	}

	events, err := h.Events.List(r.Context(), filterFrom(r), win.Limit, win.Offset)
	if err != nil {
		slog.WarnContext(r.Context(), "audit list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", requestID)
		return
	}
	api.Success(w, events, requestID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	events, err := h.Events.List(r.Context(), filterFrom(r), 10000, 0)
	if err != nil {
		slog.WarnContext(r.Context(), "audit export failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_id", "action", "entity_type", "entity_id", "request_id", "created_at"}); err != nil {
		slog.WarnContext(r.Context(), "audit export header failed", "err", err)
	}
	for _, evt := range events {
		if err := writer.Write([]string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			slog.WarnContext(r.Context(), "audit export row failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.WarnContext(r.Context(), "audit export flush failed", "err", err)
	}
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	win := shared.ReadWindow(r, v, 20, 100)
	if v.Reject(w, requestID) {
		return
	}
	runs, err := h.Runs.ListRuns(r.Context(), r.URL.Query().Get("type"), win.Limit)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, runs, requestID)
}
