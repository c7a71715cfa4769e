package override

import "context"

type StoreAPI interface {
	UpsertOverride(ctx context.Context, o Override) (Override, error)
	DeleteOverride(ctx context.Context, overrideID string) (Override, error)
	ListOverrides(ctx context.Context, filter Filter) ([]Override, error)
}
