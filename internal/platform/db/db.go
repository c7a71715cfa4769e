package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/platform/apperror"
)

const uniqueViolation = "23505"

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// MapError converts driver errors into the shared taxonomy. notFound is
// returned for pgx.ErrNoRows; unique violations become apperror.ErrDuplicate.
func MapError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		if notFound != nil {
			return notFound
		}
		return err
	case IsUniqueViolation(err):
		return apperror.ErrDuplicate
	default:
		return err
	}
}

// NullIfEmpty stores empty strings as NULL.
func NullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
