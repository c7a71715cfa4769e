// Package server wires configuration, storage, domain services and the HTTP
// router into a running process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/bonus"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/domain/override"
	"scorecard/internal/domain/performance"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/crypto"
	"scorecard/internal/platform/db"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/platform/metrics"
	"scorecard/internal/transport/http/api"
	audithandler "scorecard/internal/transport/http/handlers/audit"
	bonushandler "scorecard/internal/transport/http/handlers/bonus"
	employeehandler "scorecard/internal/transport/http/handlers/employees"
	evaluationhandler "scorecard/internal/transport/http/handlers/evaluations"
	overridehandler "scorecard/internal/transport/http/handlers/overrides"
	scorehandler "scorecard/internal/transport/http/handlers/scores"
	templatehandler "scorecard/internal/transport/http/handlers/templates"
	"scorecard/internal/transport/http/middleware"
)

const maxBodyBytes = 1 << 20

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// Pinger reports whether a dependency is ready to serve.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the router exposes. Nil handler services are not
// mounted.
type Deps struct {
	Policy      *auth.Policy
	Ready       Pinger
	Metrics     *metrics.Collector
	Idempotency middleware.IdempotencyKeys

	Templates   templatehandler.Service
	Overrides   overridehandler.Service
	Evaluations evaluationhandler.Service
	Scores      scorehandler.Service
	Bonus       bonushandler.Service
	Employees   employeehandler.Service
	AuditEvents audithandler.EventLister
	JobRuns     audithandler.RunLister
}

// New connects to the database, applies migrations when enabled and wires
// every service.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := auth.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	jobSvc := jobs.New(pool)
	auditSvc := audit.New(pool)

	coreSvc := core.NewService(core.NewStore(pool, cipher))
	templateSvc := assignment.NewService(assignment.NewStore(pool), auditSvc, assignment.WithDefaultCap(cfg.OverachievementCap))
	overrideSvc := override.NewService(override.NewStore(pool), auditSvc)
	evaluationSvc := evaluation.NewService(evaluation.NewStore(pool), templateSvc, policy, cfg.RatingScaleMax,
		evaluation.WithMetrics(collector),
		evaluation.WithJobs(jobSvc),
	)
	scoreSvc := performance.NewService(coreSvc, templateSvc, evaluationSvc, overrideSvc, performance.Options{
		Mode:              performance.ModeOfficial,
		ObjectiveMixRatio: cfg.ObjectiveMixRatio,
		RatingScale:       cfg.RatingScaleMax,
	})
	bonusSvc := bonus.NewService(bonus.NewStore(pool), coreSvc, scoreSvc, policy,
		bonus.WithAudit(auditSvc),
		bonus.WithMetrics(collector),
		bonus.WithJobs(jobSvc),
		bonus.WithSampleSize(cfg.BonusSampleSize),
	)

	router := NewRouter(cfg, Deps{
		Policy:      policy,
		Ready:       pool,
		Metrics:     collector,
		Idempotency: middleware.NewIdempotencyStore(pool),
		Templates:   templateSvc,
		Overrides:   overrideSvc,
		Evaluations: evaluationSvc,
		Scores:      scoreSvc,
		Bonus:       bonusSvc,
		Employees:   coreSvc,
		AuditEvents: auditSvc,
		JobRuns:     jobSvc,
	})
	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "Idempotent-Replay"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.BodyLimit(maxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger(deps.Metrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready == nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Ready.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireActor)
		r.Use(middleware.RateLimit(600, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(40, time.Minute))

		if deps.Templates != nil {
			templatehandler.NewHandler(deps.Templates, deps.Policy).RegisterRoutes(r)
		}
		if deps.Overrides != nil {
			overridehandler.NewHandler(deps.Overrides, deps.Policy).RegisterRoutes(r)
		}
		if deps.Evaluations != nil {
			evaluationhandler.NewHandler(deps.Evaluations, deps.Policy, deps.Idempotency).RegisterRoutes(r)
		}
		if deps.Scores != nil {
			scorehandler.NewHandler(deps.Scores, deps.Policy).RegisterRoutes(r)
		}
		if deps.Bonus != nil {
			bonushandler.NewHandler(deps.Bonus, deps.Policy, deps.Idempotency).RegisterRoutes(r)
		}
		if deps.Employees != nil {
			employeehandler.NewHandler(deps.Employees, deps.Policy).RegisterRoutes(r)
		}
		if deps.AuditEvents != nil && deps.JobRuns != nil {
			audithandler.NewHandler(deps.AuditEvents, deps.JobRuns, deps.Policy).RegisterRoutes(r)
		}
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	defer a.DB.Close()

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("scorecard server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	slog.Info("shutting down", "timeout", a.Config.ShutdownTimeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
