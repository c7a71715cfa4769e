package override

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"scorecard/internal/domain/auth"
)

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type Service struct {
	store StoreAPI
	audit Auditor
}

func NewService(store StoreAPI, audit Auditor) *Service {
	return &Service{store: store, audit: audit}
}

func (s *Service) Upsert(ctx context.Context, actor auth.Actor, o Override) (Override, error) {
	if err := Validate(o); err != nil {
		return Override{}, err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	saved, err := s.store.UpsertOverride(ctx, o)
	if err != nil {
		return Override{}, err
	}
	s.record(ctx, actor, "override.upsert", saved.ID, nil, saved)
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, overrideID string) error {
	removed, err := s.store.DeleteOverride(ctx, overrideID)
	if err != nil {
		return err
	}
	s.record(ctx, actor, "override.delete", overrideID, removed, nil)
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Override, error) {
	return s.store.ListOverrides(ctx, filter)
}

// Index loads every override of the year for repeated resolution.
func (s *Service) Index(ctx context.Context, year int) (*Index, error) {
	overrides, err := s.store.ListOverrides(ctx, Filter{Year: year})
	if err != nil {
		return nil, err
	}
	return NewIndex(year, overrides), nil
}

// Resolve returns the exception for one (employee, year, template).
func (s *Service) Resolve(ctx context.Context, employeeID, orgUnitID string, year int, templateID string) (Resolution, error) {
	overrides, err := s.store.ListOverrides(ctx, Filter{Year: year, TemplateID: templateID})
	if err != nil {
		return Resolution{}, err
	}
	return NewIndex(year, overrides).Resolve(employeeID, orgUnitID, templateID), nil
}

func (s *Service) record(ctx context.Context, actor auth.Actor, action, id string, before, after any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, actor.UserID, action, "override", id, before, after); err != nil {
		slog.WarnContext(ctx, "audit record failed", "action", action, "overrideId", id, "err", err)
	}
}
