package middleware

import (
	"context"
	"net/http"
	"strings"

	"scorecard/internal/domain/auth"
	"scorecard/internal/requestctx"
	"scorecard/internal/transport/http/api"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

// Auth resolves a bearer token into an auth.Actor. Requests without a valid
// token pass through anonymously; RequireActor rejects them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores the actor and tags the request metadata with its user id.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	ctx = requestctx.WithActorID(ctx, actor.UserID)
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(auth.Actor)
	return actor, ok
}

func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetActor(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
