package bonus

import "context"

type StoreAPI interface {
	PutConfig(ctx context.Context, cfg Config) error
	GetConfig(ctx context.Context, year int) (*Config, error)
	// UpsertResults writes all results in one round trip, replacing any
	// stored result for the same (employee, year).
	UpsertResults(ctx context.Context, results []Result) error
	UpsertResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, employeeID string, year int) (*Result, error)
	ListResults(ctx context.Context, year int) ([]Result, error)
}
