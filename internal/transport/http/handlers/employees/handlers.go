package employeehandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/core"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	GetEmployee(ctx context.Context, employeeID string) (*core.Employee, error)
	ListByOrgUnit(ctx context.Context, orgUnitID string) ([]core.Employee, error)
	SaveEmployee(ctx context.Context, emp core.Employee) error
}

type Handler struct {
	Service Service
	Policy  *auth.Policy
}

func NewHandler(service Service, policy *auth.Policy) *Handler {
	return &Handler{Service: service, Policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationEdit)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationRead)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireCapability(h.Policy, auth.CapEmployeesWrite)).Put("/{employeeID}", h.handleSave)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	orgUnitID := r.URL.Query().Get("orgUnitId")
	v := shared.NewValidator()
	v.Required("orgUnitId", orgUnitID, "is required")
	if v.Reject(w, requestID) {
		return
	}
	employees, err := h.Service.ListByOrgUnit(r.Context(), orgUnitID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	for i := range employees {
		core.RedactSalary(&employees[i], actor, h.Policy)
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	employeeID := chi.URLParam(r, "employeeID")
	if !actor.IsEmployee(employeeID) && !h.Policy.Can(actor, auth.CapEvaluationEdit) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}
	emp, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	core.RedactSalary(emp, actor, h.Policy)
	api.Success(w, emp, requestID)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var emp core.Employee
	if !shared.DecodeJSON(w, r, &emp, requestID) {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	if emp.ID != "" && emp.ID != employeeID {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "id", Reason: "must match the path"}})
		return
	}
	emp.ID = employeeID
	if err := h.Service.SaveEmployee(r.Context(), emp); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	core.RedactSalary(&emp, actor, h.Policy)
	api.Success(w, emp, requestID)
}
