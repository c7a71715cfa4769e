// Package jobs records request-triggered batch operations (bulk close, bonus
// batches) as job_runs rows. There is no background scheduler: every run
// executes synchronously inside the caller's request.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobBulkClose  = "evaluation_bulk_close"
	JobBonusBatch = "bonus_batch"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	ActorID     string          `json:"actorId"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// RunNow executes run and records its outcome. Failing to record the run is
// logged and never fails the job itself. Without a database run is executed
// unrecorded.
func (s *Service) RunNow(ctx context.Context, jobType, actorID string, run func(context.Context) (any, error)) (any, error) {
	if s == nil || s.DB == nil {
		return run(ctx)
	}

	runID := uuid.NewString()
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, actor_id, status)
    VALUES ($1,$2,$3,$4)
  `, runID, jobType, actorID, StatusRunning); err != nil {
		slog.WarnContext(ctx, "job run insert failed", "jobType", jobType, "err", err)
		runID = ""
	}

	details, err := run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.WarnContext(ctx, "job details marshal failed", "jobType", jobType, "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.WarnContext(ctx, "job run update failed", "jobType", jobType, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) ListRuns(ctx context.Context, jobType string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `SELECT id, job_type, status, COALESCE(actor_id, ''), details_json, started_at, completed_at FROM job_runs`
	args := []any{limit}
	if jobType != "" {
		query += ` WHERE job_type = $2`
		args = append(args, jobType)
	}
	query += ` ORDER BY started_at DESC LIMIT $1`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.JobType, &r.Status, &r.ActorID, &r.Details, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
