package bonushandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/bonus"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	PutConfig(ctx context.Context, actor auth.Actor, cfg bonus.Config) (bonus.Config, error)
	GetConfig(ctx context.Context, year int) (*bonus.Config, error)
	CalculateBatch(ctx context.Context, actor auth.Actor, req bonus.BatchRequest) (bonus.BatchResult, error)
	GetResult(ctx context.Context, actor auth.Actor, employeeID string, year int) (*bonus.Result, error)
	ListResults(ctx context.Context, actor auth.Actor, year int) ([]bonus.Result, error)
	Statement(ctx context.Context, actor auth.Actor, employeeID string, year int) ([]byte, error)
}

type Handler struct {
	Service     Service
	Policy      *auth.Policy
	Idempotency middleware.IdempotencyKeys
}

func NewHandler(service Service, policy *auth.Policy, idempotency middleware.IdempotencyKeys) *Handler {
	return &Handler{Service: service, Policy: policy, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bonus", func(r chi.Router) {
		r.With(middleware.RequireCapability(h.Policy, auth.CapBonusConfigure)).Put("/config/{year}", h.handlePutConfig)
		r.With(middleware.RequireCapability(h.Policy, auth.CapBonusCalculate)).Get("/config/{year}", h.handleGetConfig)
		r.With(
			middleware.RequireCapability(h.Policy, auth.CapBonusCalculate),
			middleware.Idempotent(h.Idempotency, "bonus.calculate"),
		).Post("/{year}/calculate", h.handleCalculate)
		r.With(middleware.RequireCapability(h.Policy, auth.CapBonusCalculate)).Get("/{year}/results", h.handleListResults)
		r.With(middleware.RequireCapability(h.Policy, auth.CapBonusRead)).Get("/{year}/employees/{employeeID}", h.handleGetResult)
		r.With(middleware.RequireCapability(h.Policy, auth.CapBonusRead)).Get("/{year}/employees/{employeeID}/statement.pdf", h.handleStatement)
	})
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	var cfg bonus.Config
	if !shared.DecodeJSON(w, r, &cfg, requestID) {
		return
	}
	if cfg.Year != 0 && cfg.Year != year {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "year", Reason: "must match the path"}})
		return
	}
	cfg.Year = year

	saved, err := h.Service.PutConfig(r.Context(), actor, cfg)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, saved, requestID)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	cfg, err := h.Service.GetConfig(r.Context(), year)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, cfg, requestID)
}

// handleCalculate accepts an empty body, which selects every active
// employee.
func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	var req bonus.BatchRequest
	if r.ContentLength != 0 && !shared.DecodeJSON(w, r, &req, requestID) {
		return
	}
	if req.Year != 0 && req.Year != year {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "year", Reason: "must match the path"}})
		return
	}
	req.Year = year

	result, err := h.Service.CalculateBatch(r.Context(), actor, req)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	results, err := h.Service.ListResults(r.Context(), actor, year)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, results, requestID)
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	result, err := h.Service.GetResult(r.Context(), actor, chi.URLParam(r, "employeeID"), year)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	pdf, err := h.Service.Statement(r.Context(), actor, employeeID, year)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bonus-%s-%d.pdf", employeeID, year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
