package db

import (
	"context"
	"database/sql"
)

// DBTX is what the SQLite repositories query through. Conflict detection and
// the CLI read over the *sql.DB, while planning and fixture loads pass the
// *sql.Tx of their unit of work.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
