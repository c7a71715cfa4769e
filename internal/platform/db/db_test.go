package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/platform/apperror"
)

func TestMapError(t *testing.T) {
	notFound := apperror.NotFound("evaluation")

	assert.NoError(t, MapError(nil, notFound))
	assert.Equal(t, notFound, MapError(pgx.ErrNoRows, notFound))
	assert.ErrorIs(t, MapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), notFound), notFound)

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(dup))
	assert.ErrorIs(t, MapError(dup, notFound), apperror.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, MapError(other, notFound))
}

func TestLoadMigrationsSortedWithChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.sql":      {Data: []byte("SELECT 2;")},
		"0001_a.sql":      {Data: []byte("SELECT 1;")},
		"notes.txt":       {Data: []byte("ignored")},
		"0003_dir.sql/x":  {Data: []byte("nested")},
		"nested/0004.sql": {Data: []byte("SELECT 4;")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_a", migrations[0].Version)
	assert.Equal(t, "SELECT 1;", migrations[0].SQL)
	assert.Equal(t, "0002_b", migrations[1].Version)
	assert.Len(t, migrations[0].Checksum, 64)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestLoadMigrationsFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_init.sql"), []byte("SELECT 1;"), 0o600))

	migrations, err := loadMigrations(os.DirFS(dir))
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, "0001_init", migrations[0].Version)
}
