// Package requestctx carries per-request metadata below the transport layer
// so audit rows and log lines can be tagged without importing HTTP packages.
package requestctx

import "context"

// Meta is what the HTTP layer knows about the caller of the current request.
type Meta struct {
	RequestID string
	ActorID   string
}

type ctxKey struct{}

func With(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, meta)
}

func From(ctx context.Context) Meta {
	meta, _ := ctx.Value(ctxKey{}).(Meta)
	return meta
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	meta := From(ctx)
	meta.RequestID = requestID
	return With(ctx, meta)
}

func WithActorID(ctx context.Context, actorID string) context.Context {
	meta := From(ctx)
	meta.ActorID = actorID
	return With(ctx, meta)
}

func RequestID(ctx context.Context) string {
	return From(ctx).RequestID
}

// Attrs returns the non-empty metadata as slog key/value pairs.
func (m Meta) Attrs() []any {
	var attrs []any
	if m.RequestID != "" {
		attrs = append(attrs, "requestId", m.RequestID)
	}
	if m.ActorID != "" {
		attrs = append(attrs, "actorId", m.ActorID)
	}
	return attrs
}
