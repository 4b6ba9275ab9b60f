package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	db, err := New(Config{Path: path, Name: "session"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Migrate())
	// Idempotent
	require.NoError(t, db.Migrate())

	var name string
	err = db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='session'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "session", name)
}

func TestMigrate_CacheSchema(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "cache.db"), Profile: ProfileCache, Name: "cache"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())

	for _, table := range []string{"stock_detail", "stock_filters"} {
		var count int
		err := db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
}

func TestMigrate_UnknownDatabase(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db"), Name: "unknown"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "session.db"), Name: "session"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	boom := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_, execErr := tx.Exec("INSERT INTO session (id, data, expires_at, updated_at) VALUES (1, x'00', 0, 0)")
		require.NoError(t, execErr)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM session").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_NilDB(t *testing.T) {
	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}
