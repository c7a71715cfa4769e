package evaluationhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	CreateOrFetch(ctx context.Context, actor auth.Actor, req evaluation.CreateRequest) (evaluation.Evaluation, bool, error)
	Get(ctx context.Context, evaluationID string) (*evaluation.Evaluation, error)
	List(ctx context.Context, filter evaluation.Filter) ([]evaluation.Evaluation, error)
	Transition(ctx context.Context, evaluationID string, action evaluation.Action, actor auth.Actor, payload evaluation.Payload) (evaluation.Evaluation, error)
	BulkClose(ctx context.Context, actor auth.Actor, req evaluation.BulkCloseRequest) (evaluation.BulkCloseResult, error)
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
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationRead)).Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.With(
			middleware.RequireCapability(h.Policy, auth.CapEvaluationBulkClose),
			middleware.Idempotent(h.Idempotency, "evaluations.bulk_close"),
		).Post("/bulk-close", h.handleBulkClose)
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationRead)).Get("/{evaluationID}", h.handleGet)
		r.Post("/{evaluationID}/transitions", h.handleTransition)
	})
}

// view adds the actions legal from the evaluation's current state.
type view struct {
	evaluation.Evaluation
	AvailableActions []evaluation.Action `json:"availableActions"`
}

func newView(ev evaluation.Evaluation) view {
	return view{Evaluation: ev, AvailableActions: evaluation.AvailableActions(ev.State)}
}

type transitionRequest struct {
	Action  evaluation.Action  `json:"action"`
	Payload evaluation.Payload `json:"payload"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var req evaluation.CreateRequest
	if !shared.DecodeJSON(w, r, &req, requestID) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", req.EmployeeID, "is required")
	v.Required("templateId", req.TemplateID, "is required")
	v.Required("periodCode", req.PeriodCode, "is required")
	if v.Reject(w, requestID) {
		return
	}

	ev, created, err := h.Service.CreateOrFetch(r.Context(), actor, req)
	if err != nil {
		failTransition(w, err, requestID)
		return
	}
	if created {
		api.Created(w, newView(ev), requestID)
		return
	}
	api.Success(w, newView(ev), requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	ev, err := h.Service.Get(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	if !h.canSeeAll(actor) && !actor.IsEmployee(ev.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}
	api.Success(w, newView(*ev), requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	query := r.URL.Query()
	v := shared.NewValidator()
	year := v.QueryYear(r, "year", false)
	state := strings.ToUpper(strings.TrimSpace(query.Get("state")))
	v.Enum("state", state, []string{
		string(evaluation.StateDraft),
		string(evaluation.StatePendingEmployee),
		string(evaluation.StatePendingHR),
		string(evaluation.StateClosed),
	}, "must be a workflow state")
	if v.Reject(w, requestID) {
		return
	}

	filter := evaluation.Filter{
		TemplateID:   query.Get("templateId"),
		PeriodCode:   query.Get("periodCode"),
		Year:         year,
		WithTimeline: query.Get("includeTimeline") == "true",
	}
	if employeeID := query.Get("employeeId"); employeeID != "" {
		filter.EmployeeIDs = []string{employeeID}
	}
	if state != "" {
		filter.States = []evaluation.State{evaluation.State(state)}
	}
	if !h.canSeeAll(actor) {
		if actor.EmployeeID == "" || (len(filter.EmployeeIDs) > 0 && filter.EmployeeIDs[0] != actor.EmployeeID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
			return
		}
		filter.EmployeeIDs = []string{actor.EmployeeID}
	}

	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	out := make([]view, 0, len(items))
	for _, ev := range items {
		out = append(out, newView(ev))
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var req transitionRequest
	if !shared.DecodeJSON(w, r, &req, requestID) {
		return
	}
	req.Action = evaluation.Action(strings.ToLower(strings.TrimSpace(string(req.Action))))
	if !evaluation.KnownAction(req.Action) || req.Action == evaluation.ActionCreate {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "action", Reason: "unknown workflow action"}})
		return
	}

	ev, err := h.Service.Transition(r.Context(), chi.URLParam(r, "evaluationID"), req.Action, actor, req.Payload)
	if err != nil {
		failTransition(w, err, requestID)
		return
	}
	api.Success(w, newView(ev), requestID)
}

func (h *Handler) handleBulkClose(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req evaluation.BulkCloseRequest
	if !shared.DecodeJSON(w, r, &req, requestID) {
		return
	}
	if len(req.IDs) == 0 {
		v := shared.NewValidator()
		v.Required("periodCode", req.PeriodCode, "is required when ids are not given")
		v.Required("templateId", req.TemplateID, "is required when ids are not given")
		if v.Reject(w, requestID) {
			return
		}
	}

	result, err := h.Service.BulkClose(r.Context(), actor, req)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) canSeeAll(actor auth.Actor) bool {
	return h.Policy.Can(actor, auth.CapEvaluationEdit)
}

// failTransition reports workflow errors with the state details clients need
// to recover.
func failTransition(w http.ResponseWriter, err error, requestID string) {
	var stateErr *evaluation.StateError
	if errors.As(err, &stateErr) {
		required := make([]string, len(stateErr.Required))
		for i, s := range stateErr.Required {
			required[i] = string(s)
		}
		api.FailErrorWithDetails(w, err, map[string]any{
			"currentState":   stateErr.Current,
			"requiredStates": required,
		}, requestID)
		return
	}
	api.FailError(w, err, requestID)
}
