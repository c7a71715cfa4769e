package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/period"
	"scorecard/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const templateColumns = `id, year, kind, scope, target_id, name, description, weight, frequency,
    window_start, window_end, goals_json, active, created_at, updated_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	var windowStart, windowEnd *time.Time
	var goalsJSON []byte
	if err := row.Scan(&t.ID, &t.Year, &t.Kind, &t.Scope, &t.TargetID, &t.Name, &t.Description, &t.Weight, &t.Frequency,
		&windowStart, &windowEnd, &goalsJSON, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Template{}, err
	}
	if windowStart != nil && windowEnd != nil {
		t.Window = &period.Window{Start: *windowStart, End: *windowEnd}
	}
	goals, err := DecodeGoals(goalsJSON)
	if err != nil {
		return Template{}, fmt.Errorf("template %s: %w", t.ID, err)
	}
	t.Goals = goals
	return t, nil
}

func windowBounds(w *period.Window) (any, any) {
	if w == nil {
		return nil, nil
	}
	return w.Start, w.End
}

func (s *Store) CreateTemplate(ctx context.Context, t Template) error {
	goalsJSON, err := json.Marshal(t.Goals)
	if err != nil {
		return err
	}
	start, end := windowBounds(t.Window)
	_, err = s.DB.Exec(ctx, `
    INSERT INTO assignment_templates (id, year, kind, scope, target_id, name, description, weight, frequency,
      window_start, window_end, goals_json, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
  `, t.ID, t.Year, t.Kind, t.Scope, t.TargetID, t.Name, t.Description, t.Weight, t.Frequency, start, end, goalsJSON, t.Active)
	return db.MapError(err, nil)
}

func (s *Store) UpdateTemplate(ctx context.Context, t Template) error {
	goalsJSON, err := json.Marshal(t.Goals)
	if err != nil {
		return err
	}
	start, end := windowBounds(t.Window)
	cmd, err := s.DB.Exec(ctx, `
    UPDATE assignment_templates
    SET year = $2, kind = $3, scope = $4, target_id = $5, name = $6, description = $7, weight = $8,
        frequency = $9, window_start = $10, window_end = $11, goals_json = $12, active = $13, updated_at = now()
    WHERE id = $1
  `, t.ID, t.Year, t.Kind, t.Scope, t.TargetID, t.Name, t.Description, t.Weight, t.Frequency, start, end, goalsJSON, t.Active)
	if err != nil {
		return db.MapError(err, nil)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, templateID string, active bool) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE assignment_templates SET active = $2, updated_at = now() WHERE id = $1
  `, templateID, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, templateID string) (*Template, error) {
	t, err := scanTemplate(s.DB.QueryRow(ctx, `SELECT `+templateColumns+` FROM assignment_templates WHERE id = $1`, templateID))
	if err != nil {
		return nil, db.MapError(err, ErrTemplateNotFound)
	}
	return &t, nil
}

func (s *Store) ListTemplates(ctx context.Context, filter Filter) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM assignment_templates WHERE 1=1`
	var args []any
	if filter.Year > 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND active"
	}
	query += " ORDER BY kind, name, id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
