package bonus

import (
	"context"
	"encoding/json"
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

func (s *Store) PutConfig(ctx context.Context, cfg Config) error {
	scaleJSON, err := json.Marshal(cfg.Scale)
	if err != nil {
		return err
	}
	overrides := cfg.Overrides
	if overrides == nil {
		overrides = []ScopedOverride{}
	}
	overridesJSON, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO bonus_configs (year, scale_json, target_multiple, overrides_json, updated_by, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (year) DO UPDATE SET
      scale_json = EXCLUDED.scale_json,
      target_multiple = EXCLUDED.target_multiple,
      overrides_json = EXCLUDED.overrides_json,
      updated_by = EXCLUDED.updated_by,
      updated_at = EXCLUDED.updated_at
  `, cfg.Year, scaleJSON, cfg.TargetMultiple, overridesJSON, db.NullIfEmpty(cfg.UpdatedBy), cfg.UpdatedAt)
	return err
}

func (s *Store) GetConfig(ctx context.Context, year int) (*Config, error) {
	var cfg Config
	var scaleJSON, overridesJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT year, scale_json, target_multiple, overrides_json, COALESCE(updated_by, ''), updated_at
    FROM bonus_configs WHERE year = $1
  `, year).Scan(&cfg.Year, &scaleJSON, &cfg.TargetMultiple, &overridesJSON, &cfg.UpdatedBy, &cfg.UpdatedAt)
	if err != nil {
		return nil, db.MapError(err, ErrConfigNotFound)
	}
	if err := json.Unmarshal(scaleJSON, &cfg.Scale); err != nil {
		return nil, fmt.Errorf("decode bonus scale for %d: %w", year, err)
	}
	if len(overridesJSON) > 0 {
		if err := json.Unmarshal(overridesJSON, &cfg.Overrides); err != nil {
			return nil, fmt.Errorf("decode bonus overrides for %d: %w", year, err)
		}
	}
	return &cfg, nil
}

const upsertResultSQL = `
    INSERT INTO bonus_results (employee_id, year, score, terms_json, fraction, amount, currency, computed_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (employee_id, year) DO UPDATE SET
      score = EXCLUDED.score,
      terms_json = EXCLUDED.terms_json,
      fraction = EXCLUDED.fraction,
      amount = EXCLUDED.amount,
      currency = EXCLUDED.currency,
      computed_at = EXCLUDED.computed_at
  `

func resultArgs(r Result) ([]any, error) {
	termsJSON, err := json.Marshal(r.Terms)
	if err != nil {
		return nil, err
	}
	return []any{r.EmployeeID, r.Year, r.Score, termsJSON, r.Fraction, r.Amount, db.NullIfEmpty(r.Currency), r.ComputedAt}, nil
}

func (s *Store) UpsertResults(ctx context.Context, results []Result) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		args, err := resultArgs(r)
		if err != nil {
			return err
		}
		batch.Queue(upsertResultSQL, args...)
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range results {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) UpsertResult(ctx context.Context, r Result) error {
	args, err := resultArgs(r)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, upsertResultSQL, args...)
	return err
}

const resultColumns = `employee_id, year, score, terms_json, fraction, amount, COALESCE(currency, ''), computed_at`

func scanResult(row pgx.Row) (Result, error) {
	var r Result
	var termsJSON []byte
	if err := row.Scan(&r.EmployeeID, &r.Year, &r.Score, &termsJSON, &r.Fraction, &r.Amount, &r.Currency, &r.ComputedAt); err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal(termsJSON, &r.Terms); err != nil {
		return Result{}, fmt.Errorf("decode bonus terms for %s: %w", r.EmployeeID, err)
	}
	return r, nil
}

func (s *Store) GetResult(ctx context.Context, employeeID string, year int) (*Result, error) {
	r, err := scanResult(s.DB.QueryRow(ctx, `SELECT `+resultColumns+` FROM bonus_results WHERE employee_id = $1 AND year = $2`, employeeID, year))
	if err != nil {
		return nil, db.MapError(err, ErrResultNotFound)
	}
	return &r, nil
}

func (s *Store) ListResults(ctx context.Context, year int) ([]Result, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+resultColumns+` FROM bonus_results WHERE year = $1 ORDER BY employee_id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
