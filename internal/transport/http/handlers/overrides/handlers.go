package overridehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/override"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	Upsert(ctx context.Context, actor auth.Actor, o override.Override) (override.Override, error)
	Delete(ctx context.Context, actor auth.Actor, overrideID string) error
	List(ctx context.Context, filter override.Filter) ([]override.Override, error)
	Resolve(ctx context.Context, employeeID, orgUnitID string, year int, templateID string) (override.Resolution, error)
}

type Handler struct {
	Service Service
	Policy  *auth.Policy
}

func NewHandler(service Service, policy *auth.Policy) *Handler {
	return &Handler{Service: service, Policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/overrides", func(r chi.Router) {
		r.Use(middleware.RequireCapability(h.Policy, auth.CapOverridesWrite))
		r.Get("/", h.handleList)
		r.Get("/resolve", h.handleResolve)
		r.Put("/", h.handleUpsert)
		r.Put("/{overrideID}", h.handleUpsert)
		r.Delete("/{overrideID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	year := v.QueryYear(r, "year", false)
	if v.Reject(w, requestID) {
		return
	}
	query := r.URL.Query()
	items, err := h.Service.List(r.Context(), override.Filter{
		Year:       year,
		TemplateID: query.Get("templateId"),
		EmployeeID: query.Get("employeeId"),
		OrgUnitID:  query.Get("orgUnitId"),
	})
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, items, requestID)
}

// handleResolve reports the effective override for one employee, which is
// what the aggregation will apply.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()
	v := shared.NewValidator()
	year := v.QueryYear(r, "year", true)
	v.Required("templateId", query.Get("templateId"), "is required")
	v.Required("employeeId", query.Get("employeeId"), "is required")
	if v.Reject(w, requestID) {
		return
	}

	res, err := h.Service.Resolve(r.Context(), query.Get("employeeId"), query.Get("orgUnitId"), year, query.Get("templateId"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, res, requestID)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var o override.Override
	if !shared.DecodeJSON(w, r, &o, requestID) {
		return
	}
	if id := chi.URLParam(r, "overrideID"); id != "" {
		o.ID = id
	}
	saved, err := h.Service.Upsert(r.Context(), actor, o)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, saved, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	overrideID := chi.URLParam(r, "overrideID")
	if err := h.Service.Delete(r.Context(), actor, overrideID); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"id": overrideID}, requestID)
}
