package performance

import (
	"context"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/domain/override"
)

// The aggregator owns no tables; it reads through the services that do.

type EmployeeSource interface {
	GetEmployee(ctx context.Context, employeeID string) (*core.Employee, error)
	ListEmployees(ctx context.Context, employeeIDs []string) ([]core.Employee, error)
}

type TemplateSource interface {
	List(ctx context.Context, filter assignment.Filter) ([]assignment.Template, error)
}

type EvaluationSource interface {
	List(ctx context.Context, filter evaluation.Filter) ([]evaluation.Evaluation, error)
}

type OverrideSource interface {
	Index(ctx context.Context, year int) (*override.Index, error)
}
