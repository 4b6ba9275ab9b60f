// Package testing provides testing utilities and helpers for the dashboard.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kquant/dashboard/internal/database"
)

// NewTestDB creates a migrated file database under t.TempDir and closes it
// when the test ends.
//
// Supported schema names:
//   - "session" - applies session_schema.sql with the standard profile
//   - "cache" - applies cache_schema.sql with the cache profile
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "cache" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// GetRawConnection returns the underlying *sql.DB
func GetRawConnection(db *database.DB) *sql.DB {
	return db.Conn()
}
