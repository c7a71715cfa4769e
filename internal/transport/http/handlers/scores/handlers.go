package scorehandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/performance"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	ComputeScores(ctx context.Context, req performance.ComputeRequest) (performance.ComputeResult, error)
	RecomputeAnnual(ctx context.Context, employeeID string, year int) (performance.EmployeeScore, error)
}

type Handler struct {
	Service Service
	Policy  *auth.Policy
}

func NewHandler(service Service, policy *auth.Policy) *Handler {
	return &Handler{Service: service, Policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Use(middleware.RequireCapability(h.Policy, auth.CapScoresRead))
		r.Post("/compute", h.handleCompute)
		r.Get("/employees/{employeeID}/{year}", h.handleEmployeeYear)
	})
}

func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req performance.ComputeRequest
	if !shared.DecodeJSON(w, r, &req, requestID) {
		return
	}
	req.Mode = performance.Mode(strings.ToLower(strings.TrimSpace(string(req.Mode))))

	v := shared.NewValidator()
	v.Year("year", req.Year)
	v.Enum("mode", string(req.Mode), []string{string(performance.ModeOfficial), string(performance.ModeProvisional)}, "must be official or provisional")
	if v.Reject(w, requestID) {
		return
	}
	if !h.canRead(actor, req.EmployeeIDs) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only compute their own scores", requestID)
		return
	}

	result, err := h.Service.ComputeScores(r.Context(), req)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleEmployeeYear(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	year, ok := shared.PathYear(w, r, requestID)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if !h.canRead(actor, []string{employeeID}) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only read their own scores", requestID)
		return
	}

	score, err := h.Service.RecomputeAnnual(r.Context(), employeeID, year)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, score, requestID)
}

// canRead allows population-wide reads only with recompute rights. Others
// may only ask for themselves, by id.
func (h *Handler) canRead(actor auth.Actor, employeeIDs []string) bool {
	if h.Policy.Can(actor, auth.CapScoresRecompute) {
		return true
	}
	if len(employeeIDs) == 0 {
		return false
	}
	for _, id := range employeeIDs {
		if !actor.IsEmployee(id) {
			return false
		}
	}
	return true
}
