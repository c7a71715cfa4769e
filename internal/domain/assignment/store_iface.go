package assignment

import "context"

type StoreAPI interface {
	CreateTemplate(ctx context.Context, t Template) error
	UpdateTemplate(ctx context.Context, t Template) error
	SetActive(ctx context.Context, templateID string, active bool) error
	GetTemplate(ctx context.Context, templateID string) (*Template, error)
	ListTemplates(ctx context.Context, filter Filter) ([]Template, error)
}
