package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
)

type TemplateSource interface {
	Get(ctx context.Context, templateID string) (*assignment.Template, error)
}

type Metrics interface {
	Transition(action string)
	Conflict()
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType, actorID string, run func(context.Context) (any, error)) (any, error)
}

type Service struct {
	store       StoreAPI
	templates   TemplateSource
	policy      *auth.Policy
	ratingScale float64
	metrics     Metrics
	jobs        JobRunner
	now         func() time.Time
}

type Option func(*Service)

func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithJobs(j JobRunner) Option { return func(s *Service) { s.jobs = j } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store StoreAPI, templates TemplateSource, policy *auth.Policy, ratingScale float64, opts ...Option) *Service {
	s := &Service{
		store:       store,
		templates:   templates,
		policy:      policy,
		ratingScale: ratingScale,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrFetch returns the evaluation for (employee, template, period),
// creating it in DRAFT when absent. Concurrent callers converge on one
// document: a uniqueness violation on insert is answered by reading the
// winner's row. created reports whether this call inserted it.
func (s *Service) CreateOrFetch(ctx context.Context, actor auth.Actor, req CreateRequest) (ev Evaluation, created bool, err error) {
	if err := validateCreate(req); err != nil {
		return Evaluation{}, false, err
	}
	key := Key{EmployeeID: req.EmployeeID, TemplateID: req.TemplateID, PeriodCode: req.PeriodCode}
	if existing, err := s.store.FindByKey(ctx, key); err == nil {
		return *existing, false, nil
	} else if !errors.Is(err, ErrEvaluationNotFound) {
		return Evaluation{}, false, err
	}

	if !s.policy.Can(actor, auth.CapEvaluationEdit) && !actor.IsEmployee(req.EmployeeID) {
		return Evaluation{}, false, &GuardError{Action: ActionCreate, Reason: "missing capability " + string(auth.CapEvaluationEdit)}
	}
	tpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return Evaluation{}, false, err
	}
	if !tpl.Active {
		return Evaluation{}, false, apperror.Validation("templateId", "template is inactive")
	}
	if err := checkPeriod(*tpl, req.PeriodCode); err != nil {
		return Evaluation{}, false, err
	}

	now := s.now()
	evaluator := req.EvaluatorID
	if evaluator == "" {
		evaluator = actor.UserID
	}
	ev = Evaluation{
		ID:          uuid.NewString(),
		EmployeeID:  req.EmployeeID,
		TemplateID:  req.TemplateID,
		PeriodCode:  req.PeriodCode,
		Year:        tpl.Year,
		Results:     map[string]float64{},
		State:       StateDraft,
		EvaluatorID: evaluator,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := s.entry(ctx, actor, ActionCreate, "", StateDraft, "", ev)
	err = s.store.InsertEvaluation(ctx, ev, entry)
	switch {
	case err == nil:
		ev.Timeline = []TimelineEntry{entry}
		s.count(ActionCreate)
		return ev, true, nil
	case errors.Is(err, apperror.ErrDuplicate):
		existing, findErr := s.store.FindByKey(ctx, key)
		if findErr != nil {
			return Evaluation{}, false, findErr
		}
		return *existing, false, nil
	default:
		return Evaluation{}, false, err
	}
}

func (s *Service) Get(ctx context.Context, evaluationID string) (*Evaluation, error) {
	return s.store.GetEvaluation(ctx, evaluationID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Evaluation, error) {
	return s.store.ListEvaluations(ctx, filter)
}

// Transition applies one workflow action. The guard and state check run
// against the stored document; the write is conditional on its version so a
// concurrent change surfaces as a conflict that is safe to retry.
func (s *Service) Transition(ctx context.Context, evaluationID string, action Action, actor auth.Actor, payload Payload) (Evaluation, error) {
	current, err := s.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	return s.transition(ctx, *current, action, actor, payload)
}

func (s *Service) transition(ctx context.Context, current Evaluation, action Action, actor auth.Actor, payload Payload) (Evaluation, error) {
	if err := CanTransition(s.policy, actor, current, action); err != nil {
		if errors.Is(err, ErrInvalidState) {
			s.conflict()
		}
		return Evaluation{}, err
	}
	next, _ := NextState(current.State, action)

	updated := current
	updated.Timeline = nil
	now := s.now()
	if err := s.applyEffects(ctx, &updated, action, actor, payload, now); err != nil {
		return Evaluation{}, err
	}
	updated.State = next
	updated.Version = current.Version + 1
	updated.UpdatedAt = now

	entry := s.entry(ctx, actor, action, current.State, next, payload.Note, updated)
	if err := s.store.SaveTransition(ctx, updated, entry, current.Version); err != nil {
		if errors.Is(err, apperror.ErrConcurrentModification) {
			s.conflict()
		}
		return Evaluation{}, err
	}
	updated.Timeline = append(append([]TimelineEntry(nil), current.Timeline...), entry)
	s.count(action)
	return updated, nil
}

func (s *Service) applyEffects(ctx context.Context, ev *Evaluation, action Action, actor auth.Actor, payload Payload, now time.Time) error {
	switch action {
	case ActionEdit:
		return s.edit(ctx, ev, payload)
	case ActionSubmitEmployee:
		ev.SubmittedAt = &now
	case ActionAcknowledge, ActionContest:
		decision := AckAgree
		if action == ActionContest {
			decision = AckContest
		}
		ev.Ack = &Acknowledgement{Decision: decision, Comment: strings.TrimSpace(payload.Note), By: actor.UserID, At: now}
	case ActionSubmitHR:
		if ev.SubmittedAt == nil {
			ev.SubmittedAt = &now
		}
	case ActionClose:
		ev.ClosedAt = &now
		ev.HRReviewerID = actor.UserID
		if c := strings.TrimSpace(payload.HRComment); c != "" {
			ev.HRComment = c
		}
	case ActionReopen:
		ev.ClosedAt = nil
	}
	return nil
}

// edit updates submitted content and recomputes the period score. Earlier
// periods of the same employee and template feed cumulative goals.
func (s *Service) edit(ctx context.Context, ev *Evaluation, payload Payload) error {
	tpl, err := s.templates.Get(ctx, ev.TemplateID)
	if err != nil {
		return err
	}
	results, err := applyResults(*tpl, ev.Results, payload.Results)
	if err != nil {
		return err
	}
	if err := validateRating(*tpl, payload.Rating, s.ratingScale); err != nil {
		return err
	}
	ev.Results = results
	if payload.Rating != nil {
		ev.Rating = payload.Rating
	}
	if payload.Comment != nil {
		ev.Comment = strings.TrimSpace(*payload.Comment)
	}

	var history []Evaluation
	if hasCumulative(*tpl) {
		history, err = s.store.ListEvaluations(ctx, Filter{EmployeeIDs: []string{ev.EmployeeID}, TemplateID: ev.TemplateID})
		if err != nil {
			return err
		}
	}
	ev.Score, err = PeriodScore(*tpl, *ev, history, s.ratingScale)
	return err
}

func hasCumulative(tpl assignment.Template) bool {
	for _, g := range tpl.Goals {
		if g.Accumulation == scoring.Cumulative {
			return true
		}
	}
	return false
}

func (s *Service) entry(ctx context.Context, actor auth.Actor, action Action, from, to State, note string, ev Evaluation) TimelineEntry {
	snap, err := json.Marshal(snapshot{Results: ev.Results, Rating: ev.Rating, Score: ev.Score, Ack: ev.Ack})
	if err != nil {
		slog.WarnContext(ctx, "timeline snapshot marshal failed", "evaluationId", ev.ID, "err", err)
		snap = nil
	}
	return TimelineEntry{
		ID:        uuid.NewString(),
		At:        s.now(),
		ActorID:   actor.UserID,
		Action:    action,
		FromState: from,
		ToState:   to,
		Note:      strings.TrimSpace(note),
		Snapshot:  snap,
	}
}

func (s *Service) count(action Action) {
	if s.metrics != nil {
		s.metrics.Transition(string(action))
	}
}

func (s *Service) conflict() {
	if s.metrics != nil {
		s.metrics.Conflict()
	}
}

func validateCreate(req CreateRequest) error {
	if strings.TrimSpace(req.EmployeeID) == "" {
		return apperror.Validation("employeeId", "employee id is required")
	}
	if strings.TrimSpace(req.TemplateID) == "" {
		return apperror.Validation("templateId", "template id is required")
	}
	if strings.TrimSpace(req.PeriodCode) == "" {
		return apperror.Validation("periodCode", "period code is required")
	}
	return nil
}

func checkPeriod(tpl assignment.Template, code string) error {
	periods, err := tpl.Periods()
	if err != nil {
		return err
	}
	for _, p := range periods {
		if p.Code == code {
			return nil
		}
	}
	return apperror.Validation("periodCode", "period "+code+" is not tracked by this template")
}
