package database

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh file-backed SQLite database in a temp dir with
// every migration applied.
func NewTestDB(t *testing.T) (*sql.DB, Dialect) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "relique_test.sqlite3")
	db, dialect, err := Open("sqlite", SQLiteDSN(path))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(db, dialect); err != nil {
		db.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db, dialect
}
