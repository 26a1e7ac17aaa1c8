package db_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgarden/backend/internal/db"
	"mindgarden/backend/migrations"
)

func TestRunMigrations_Embedded(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	applied, err := db.RunMigrations(database, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.sql", "0002_breathing.sql", "0003_user_preferences.sql"}, applied)

	applied, err = db.RunMigrations(database, migrations.FS)
	require.NoError(t, err)
	assert.Empty(t, applied, "second run must be a no-op")

	var tables int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'breathing_states', 'breathing_sessions')`,
	).Scan(&tables))
	assert.Equal(t, 3, tables)
}

func TestRunMigrations_FailedMigrationIsNotRecorded(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	fsys := fstest.MapFS{
		"0001_ok.sql":     {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"0002_broken.sql": {Data: []byte(`CREATE TABLE;`)},
		"README.md":       {Data: []byte(`not a migration`)},
	}
	applied, err := db.RunMigrations(database, fsys)
	require.Error(t, err)
	assert.Equal(t, []string{"0001_ok.sql"}, applied)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}
