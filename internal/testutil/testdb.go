package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/cadence/internal/db"
)

// NewTestDB returns an empty cadence schema in memory, closed at test cleanup.
// Service and CLI tests plan against it exactly as the binary does on disk.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW gives planning and fixture loads their per-call transaction on
// a test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
