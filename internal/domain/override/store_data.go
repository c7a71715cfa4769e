package override

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const overrideColumns = `id, year, template_id, COALESCE(employee_id, ''), COALESCE(org_unit_id, ''),
    excluded, weight, COALESCE(note, ''), created_at, updated_at`

func scanOverride(row pgx.Row) (Override, error) {
	var o Override
	err := row.Scan(&o.ID, &o.Year, &o.TemplateID, &o.EmployeeID, &o.OrgUnitID, &o.Excluded, &o.Weight, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// UpsertOverride inserts or replaces the override for (year, template, scope
// key). The stored id is kept on conflict.
func (s *Store) UpsertOverride(ctx context.Context, o Override) (Override, error) {
	out, err := scanOverride(s.DB.QueryRow(ctx, `
    INSERT INTO overrides (id, year, template_id, scope_key, employee_id, org_unit_id, excluded, weight, note)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (year, template_id, scope_key) DO UPDATE SET
      excluded = EXCLUDED.excluded,
      weight = EXCLUDED.weight,
      note = EXCLUDED.note,
      updated_at = now()
    RETURNING `+overrideColumns,
		o.ID, o.Year, o.TemplateID, o.ScopeKey(), db.NullIfEmpty(o.EmployeeID), db.NullIfEmpty(o.OrgUnitID),
		o.Excluded, o.Weight, db.NullIfEmpty(o.Note)))
	if err != nil {
		return Override{}, db.MapError(err, nil)
	}
	return out, nil
}

func (s *Store) DeleteOverride(ctx context.Context, overrideID string) (Override, error) {
	out, err := scanOverride(s.DB.QueryRow(ctx, `DELETE FROM overrides WHERE id = $1 RETURNING `+overrideColumns, overrideID))
	if err != nil {
		return Override{}, db.MapError(err, ErrOverrideNotFound)
	}
	return out, nil
}

func (s *Store) ListOverrides(ctx context.Context, filter Filter) ([]Override, error) {
	query := `SELECT ` + overrideColumns + ` FROM overrides WHERE 1=1`
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	if filter.Year > 0 {
		add("year", filter.Year)
	}
	if filter.TemplateID != "" {
		add("template_id", filter.TemplateID)
	}
	if filter.EmployeeID != "" {
		add("employee_id", filter.EmployeeID)
	}
	if filter.OrgUnitID != "" {
		add("org_unit_id", filter.OrgUnitID)
	}
	query += " ORDER BY year, template_id, scope_key"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
