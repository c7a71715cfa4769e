package templatehandler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/auth"
	"scorecard/internal/transport/http/api"
	"scorecard/internal/transport/http/middleware"
	"scorecard/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, actor auth.Actor, t assignment.Template) (assignment.Template, error)
	Update(ctx context.Context, actor auth.Actor, t assignment.Template) (assignment.Template, error)
	Deactivate(ctx context.Context, actor auth.Actor, templateID string) error
	Get(ctx context.Context, templateID string) (*assignment.Template, error)
	List(ctx context.Context, filter assignment.Filter) ([]assignment.Template, error)
}

type Handler struct {
	Service Service
	Policy  *auth.Policy
}

func NewHandler(service Service, policy *auth.Policy) *Handler {
	return &Handler{Service: service, Policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationRead)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(h.Policy, auth.CapEvaluationRead)).Get("/{templateID}", h.handleGet)
		r.With(middleware.RequireCapability(h.Policy, auth.CapTemplatesWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequireCapability(h.Policy, auth.CapTemplatesWrite)).Put("/{templateID}", h.handleUpdate)
		r.With(middleware.RequireCapability(h.Policy, auth.CapTemplatesWrite)).Post("/{templateID}/deactivate", h.handleDeactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))

	v := shared.NewValidator()
	year := v.QueryYear(r, "year", false)
	v.Enum("kind", kind, []string{string(assignment.KindObjective), string(assignment.KindAptitude)}, "must be objective or aptitude")
	if v.Reject(w, requestID) {
		return
	}

	filter := assignment.Filter{Year: year, Kind: assignment.Kind(kind)}
	if active := shared.QueryBool(r, "active"); active != nil && *active {
		filter.ActiveOnly = true
	}
	templates, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, templates, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	t, err := h.Service.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, t, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	t, ok := decodeTemplate(w, r, requestID)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), actor, t)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	t, ok := decodeTemplate(w, r, requestID)
	if !ok {
		return
	}
	templateID := chi.URLParam(r, "templateID")
	if t.ID != "" && t.ID != templateID {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "id", Reason: "must match the path"}})
		return
	}
	t.ID = templateID
	updated, err := h.Service.Update(r.Context(), actor, t)
	if err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	templateID := chi.URLParam(r, "templateID")
	if err := h.Service.Deactivate(r.Context(), actor, templateID); err != nil {
		api.FailError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"id": templateID, "active": false}, requestID)
}

// decodeTemplate accepts the legacy field aliases through assignment.Decode.
func decodeTemplate(w http.ResponseWriter, r *http.Request, requestID string) (assignment.Template, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusRequestEntityTooLarge, "validation_error", "request body too large or unreadable", requestID)
		return assignment.Template{}, false
	}
	t, err := assignment.Decode(body)
	if err != nil {
		api.FailError(w, err, requestID)
		return assignment.Template{}, false
	}
	return t, true
}
