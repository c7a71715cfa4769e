package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
	"scorecard/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const evaluationColumns = `id, employee_id, template_id, period_code, year, results_json, rating, score,
    COALESCE(comment, ''), state, COALESCE(evaluator_id, ''), COALESCE(hr_reviewer_id, ''), COALESCE(hr_comment, ''),
    ack_json, submitted_at, closed_at, version, created_at, updated_at`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var ev Evaluation
	var resultsJSON, ackJSON []byte
	if err := row.Scan(&ev.ID, &ev.EmployeeID, &ev.TemplateID, &ev.PeriodCode, &ev.Year, &resultsJSON, &ev.Rating, &ev.Score,
		&ev.Comment, &ev.State, &ev.EvaluatorID, &ev.HRReviewerID, &ev.HRComment,
		&ackJSON, &ev.SubmittedAt, &ev.ClosedAt, &ev.Version, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return Evaluation{}, err
	}
	ev.Results = decodeResults(ev.ID, resultsJSON)
	if len(ackJSON) > 0 {
		var ack Acknowledgement
		if err := json.Unmarshal(ackJSON, &ack); err == nil {
			ev.Ack = &ack
		}
	}
	return ev, nil
}

// decodeResults reads stored results permissively: values that are not
// numbers are coerced so a bad row never blocks a score read.
func decodeResults(evaluationID string, data []byte) map[string]float64 {
	out := map[string]float64{}
	if len(data) == 0 {
		return out
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("evaluation results decode failed", "evaluationId", evaluationID, "err", err)
		return out
	}
	for goalID, v := range raw {
		out[goalID] = scoring.Coerce(v)
	}
	return out
}

func encodeEvaluation(ev Evaluation) (resultsJSON, ackJSON []byte, err error) {
	results := ev.Results
	if results == nil {
		results = map[string]float64{}
	}
	if resultsJSON, err = json.Marshal(results); err != nil {
		return nil, nil, err
	}
	if ev.Ack != nil {
		if ackJSON, err = json.Marshal(ev.Ack); err != nil {
			return nil, nil, err
		}
	}
	return resultsJSON, ackJSON, nil
}

func insertTimeline(ctx context.Context, tx pgx.Tx, evaluationID string, entry TimelineEntry) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO evaluation_timeline (id, evaluation_id, at, actor_id, action, from_state, to_state, note, snapshot_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, entry.ID, evaluationID, entry.At, entry.ActorID, entry.Action, db.NullIfEmpty(string(entry.FromState)), entry.ToState,
		db.NullIfEmpty(entry.Note), []byte(entry.Snapshot))
	return err
}

func (s *Store) InsertEvaluation(ctx context.Context, ev Evaluation, entry TimelineEntry) error {
	resultsJSON, ackJSON, err := encodeEvaluation(ev)
	if err != nil {
		return err
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO evaluations (id, employee_id, template_id, period_code, year, results_json, rating, score, comment,
      state, evaluator_id, hr_reviewer_id, hr_comment, ack_json, submitted_at, closed_at, version)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
  `, ev.ID, ev.EmployeeID, ev.TemplateID, ev.PeriodCode, ev.Year, resultsJSON, ev.Rating, ev.Score, db.NullIfEmpty(ev.Comment),
		ev.State, db.NullIfEmpty(ev.EvaluatorID), db.NullIfEmpty(ev.HRReviewerID), db.NullIfEmpty(ev.HRComment),
		ackJSON, ev.SubmittedAt, ev.ClosedAt, ev.Version); err != nil {
		return db.MapError(err, nil)
	}
	if err := insertTimeline(ctx, tx, ev.ID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) SaveTransition(ctx context.Context, ev Evaluation, entry TimelineEntry, expectedVersion int) error {
	resultsJSON, ackJSON, err := encodeEvaluation(ev)
	if err != nil {
		return err
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx, `
    UPDATE evaluations
    SET results_json = $3, rating = $4, score = $5, comment = $6, state = $7, evaluator_id = $8,
        hr_reviewer_id = $9, hr_comment = $10, ack_json = $11, submitted_at = $12, closed_at = $13,
        version = version + 1, updated_at = now()
    WHERE id = $1 AND version = $2
  `, ev.ID, expectedVersion, resultsJSON, ev.Rating, ev.Score, db.NullIfEmpty(ev.Comment), ev.State,
		db.NullIfEmpty(ev.EvaluatorID), db.NullIfEmpty(ev.HRReviewerID), db.NullIfEmpty(ev.HRComment),
		ackJSON, ev.SubmittedAt, ev.ClosedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM evaluations WHERE id = $1)`, ev.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrEvaluationNotFound
		}
		return apperror.ErrConcurrentModification
	}
	if err := insertTimeline(ctx, tx, ev.ID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, evaluationID))
	if err != nil {
		return nil, db.MapError(err, ErrEvaluationNotFound)
	}
	timelines, err := s.timelines(ctx, []string{ev.ID})
	if err != nil {
		return nil, err
	}
	ev.Timeline = timelines[ev.ID]
	return &ev, nil
}

func (s *Store) FindByKey(ctx context.Context, key Key) (*Evaluation, error) {
	ev, err := scanEvaluation(s.DB.QueryRow(ctx, `
    SELECT `+evaluationColumns+`
    FROM evaluations
    WHERE employee_id = $1 AND template_id = $2 AND period_code = $3
  `, key.EmployeeID, key.TemplateID, key.PeriodCode))
	if err != nil {
		return nil, db.MapError(err, ErrEvaluationNotFound)
	}
	timelines, err := s.timelines(ctx, []string{ev.ID})
	if err != nil {
		return nil, err
	}
	ev.Timeline = timelines[ev.ID]
	return &ev, nil
}

func (s *Store) ListEvaluations(ctx context.Context, filter Filter) ([]Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE 1=1`
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}
	if len(filter.IDs) > 0 {
		add(" AND id = ANY($%d)", filter.IDs)
	}
	if len(filter.EmployeeIDs) > 0 {
		add(" AND employee_id = ANY($%d)", filter.EmployeeIDs)
	}
	if filter.TemplateID != "" {
		add(" AND template_id = $%d", filter.TemplateID)
	}
	if filter.PeriodCode != "" {
		add(" AND period_code = $%d", filter.PeriodCode)
	}
	if filter.Year > 0 {
		add(" AND year = $%d", filter.Year)
	}
	if len(filter.States) > 0 {
		states := make([]string, len(filter.States))
		for i, st := range filter.States {
			states[i] = string(st)
		}
		add(" AND state = ANY($%d)", states)
	}
	query += " ORDER BY employee_id, template_id, period_code"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if filter.WithTimeline && len(out) > 0 {
		ids := make([]string, len(out))
		for i := range out {
			ids[i] = out[i].ID
		}
		timelines, err := s.timelines(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Timeline = timelines[out[i].ID]
		}
	}
	return out, nil
}

func (s *Store) timelines(ctx context.Context, evaluationIDs []string) (map[string][]TimelineEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, evaluation_id, at, actor_id, action, COALESCE(from_state, ''), to_state, COALESCE(note, ''), snapshot_json
    FROM evaluation_timeline
    WHERE evaluation_id = ANY($1)
    ORDER BY at, seq
  `, evaluationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]TimelineEntry{}
	for rows.Next() {
		var entry TimelineEntry
		var evaluationID string
		var snapshot []byte
		if err := rows.Scan(&entry.ID, &evaluationID, &entry.At, &entry.ActorID, &entry.Action, &entry.FromState, &entry.ToState, &entry.Note, &snapshot); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			entry.Snapshot = snapshot
		}
		out[evaluationID] = append(out[evaluationID], entry)
	}
	return out, rows.Err()
}
