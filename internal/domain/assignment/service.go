package assignment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"scorecard/internal/domain/auth"
)

// Auditor records administrative changes.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

const entityType = "assignment_template"

type Service struct {
	store      StoreAPI
	audit      Auditor
	defaultCap float64
}

type Option func(*Service)

// WithDefaultCap sets the ceiling stamped on overachievement goals that do
// not declare their own.
func WithDefaultCap(limit float64) Option { return func(s *Service) { s.defaultCap = limit } }

func NewService(store StoreAPI, audit Auditor, opts ...Option) *Service {
	s := &Service{store: store, audit: audit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) stampCaps(t *Template) {
	if s.defaultCap <= 100 {
		return
	}
	for i := range t.Goals {
		if t.Goals[i].Overachievement && t.Goals[i].OverachievementCap == 0 {
			t.Goals[i].OverachievementCap = s.defaultCap
		}
	}
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, t Template) (Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.stampCaps(&t)
	if err := Validate(t); err != nil {
		return Template{}, err
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return Template{}, err
	}
	s.record(ctx, actor, "template.create", t.ID, nil, t)
	return t, nil
}

// Update replaces a template's definition. Goal ids are kept stable so
// results already submitted against them stay attached.
func (s *Service) Update(ctx context.Context, actor auth.Actor, t Template) (Template, error) {
	before, err := s.store.GetTemplate(ctx, t.ID)
	if err != nil {
		return Template{}, err
	}
	s.stampCaps(&t)
	if err := Validate(t); err != nil {
		return Template{}, err
	}
	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return Template{}, err
	}
	s.record(ctx, actor, "template.update", t.ID, before, t)
	return t, nil
}

// Deactivate soft-deletes a template. Templates are never hard-deleted
// because evaluations reference them.
func (s *Service) Deactivate(ctx context.Context, actor auth.Actor, templateID string) error {
	if err := s.store.SetActive(ctx, templateID, false); err != nil {
		return err
	}
	s.record(ctx, actor, "template.deactivate", templateID, map[string]bool{"active": true}, map[string]bool{"active": false})
	return nil
}

func (s *Service) Get(ctx context.Context, templateID string) (*Template, error) {
	return s.store.GetTemplate(ctx, templateID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Template, error) {
	return s.store.ListTemplates(ctx, filter)
}

func (s *Service) record(ctx context.Context, actor auth.Actor, action, id string, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor.UserID, action, entityType, id, before, after); err != nil {
		slog.WarnContext(ctx, "audit record failed", "action", action, "templateId", id, "err", err)
	}
}
