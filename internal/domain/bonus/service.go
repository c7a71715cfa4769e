package bonus

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/performance"
)

type EmployeeSource interface {
	GetEmployee(ctx context.Context, employeeID string) (*core.Employee, error)
	ListEmployees(ctx context.Context, employeeIDs []string) ([]core.Employee, error)
	ListByOrgUnit(ctx context.Context, orgUnitID string) ([]core.Employee, error)
}

type ScoreSource interface {
	ComputeScores(ctx context.Context, req performance.ComputeRequest) (performance.ComputeResult, error)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

type Metrics interface {
	BonusComputed(ok, failed int)
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType, actorID string, run func(context.Context) (any, error)) (any, error)
}

type Service struct {
	store      StoreAPI
	employees  EmployeeSource
	scores     ScoreSource
	policy     *auth.Policy
	audit      Auditor
	metrics    Metrics
	jobs       JobRunner
	sampleSize int
	now        func() time.Time
}

type Option func(*Service)

func WithAudit(a Auditor) Option { return func(s *Service) { s.audit = a } }

func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithJobs(j JobRunner) Option { return func(s *Service) { s.jobs = j } }

func WithSampleSize(n int) Option { return func(s *Service) { s.sampleSize = n } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store StoreAPI, employees EmployeeSource, scores ScoreSource, policy *auth.Policy, opts ...Option) *Service {
	s := &Service{
		store:      store,
		employees:  employees,
		scores:     scores,
		policy:     policy,
		sampleSize: DefaultSampleSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) PutConfig(ctx context.Context, actor auth.Actor, cfg Config) (Config, error) {
	if !s.policy.Can(actor, auth.CapBonusConfigure) {
		return Config{}, ErrForbidden
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Overrides == nil {
		cfg.Overrides = []ScopedOverride{}
	}
	cfg.UpdatedBy = actor.UserID
	cfg.UpdatedAt = s.now()

	before, _ := s.store.GetConfig(ctx, cfg.Year)
	if err := s.store.PutConfig(ctx, cfg); err != nil {
		return Config{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, actor.UserID, "bonus.config.put", "bonus_config", strconv.Itoa(cfg.Year), before, cfg); err != nil {
			slog.WarnContext(ctx, "audit log failed", "err", err)
		}
	}
	return cfg, nil
}

func (s *Service) GetConfig(ctx context.Context, year int) (*Config, error) {
	return s.store.GetConfig(ctx, year)
}

// GetResult returns a stored bonus. Employees may read their own; everyone
// else needs bonus calculation rights.
func (s *Service) GetResult(ctx context.Context, actor auth.Actor, employeeID string, year int) (*Result, error) {
	if !s.canRead(actor, employeeID) {
		return nil, ErrForbidden
	}
	return s.store.GetResult(ctx, employeeID, year)
}

func (s *Service) ListResults(ctx context.Context, actor auth.Actor, year int) ([]Result, error) {
	if !s.policy.Can(actor, auth.CapBonusCalculate) {
		return nil, ErrForbidden
	}
	return s.store.ListResults(ctx, year)
}

func (s *Service) canRead(actor auth.Actor, employeeID string) bool {
	if s.policy.Can(actor, auth.CapBonusCalculate) {
		return true
	}
	return actor.IsEmployee(employeeID) && s.policy.Can(actor, auth.CapBonusRead)
}
