package evaluation

import "context"

type StoreAPI interface {
	// InsertEvaluation stores a new evaluation with its first timeline entry.
	// A duplicate (employee, template, period) returns apperror.ErrDuplicate.
	InsertEvaluation(ctx context.Context, ev Evaluation, entry TimelineEntry) error
	GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error)
	FindByKey(ctx context.Context, key Key) (*Evaluation, error)
	ListEvaluations(ctx context.Context, filter Filter) ([]Evaluation, error)
	// SaveTransition persists ev and appends entry when the stored version
	// still equals expectedVersion; otherwise apperror.ErrConcurrentModification.
	SaveTransition(ctx context.Context, ev Evaluation, entry TimelineEntry, expectedVersion int) error
}
