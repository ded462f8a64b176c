package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the cadence schema. Every statement is idempotent, so it
// runs on each OpenDB.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		department  TEXT NOT NULL DEFAULT '',
		-- NULL falls back to the configured max_concurrent_steps
		max_concurrent_steps INTEGER,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_department ON users(department)`,

	`CREATE TABLE IF NOT EXISTS programs (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS steps (
		id            TEXT PRIMARY KEY,
		program_id    TEXT NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		order_index   INTEGER NOT NULL DEFAULT 0,
		duration_days INTEGER NOT NULL DEFAULT 1 CHECK(duration_days > 0),
		is_required   INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_steps_program ON steps(program_id, order_index)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		program_id  TEXT NOT NULL REFERENCES programs(id) ON DELETE CASCADE,
		status      TEXT NOT NULL DEFAULT 'active'
		            CHECK(status IN ('active','completed','cancelled')),
		assigned_at TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assignments_user ON assignments(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_status ON assignments(status)`,

	`CREATE TABLE IF NOT EXISTS step_progress (
		id                  TEXT PRIMARY KEY,
		assignment_id       TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		user_id             TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		step_id             TEXT NOT NULL REFERENCES steps(id) ON DELETE CASCADE,
		status              TEXT NOT NULL DEFAULT 'not_started'
		                    CHECK(status IN ('not_started','in_progress','done','blocked')),
		planned_date_start  TEXT,
		planned_date_end    TEXT,
		planned_at          TEXT,
		actual_completed_at TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL,
		CHECK(planned_date_start IS NULL OR planned_date_end IS NULL
		      OR planned_date_end >= planned_date_start)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_step_progress_planned ON step_progress(planned_date_start, planned_date_end)`,

	`CREATE TABLE IF NOT EXISTS schedule_constraints (
		id                   TEXT PRIMARY KEY,
		constraint_type      TEXT NOT NULL
		                     CHECK(constraint_type IN ('dependency','fixed_window')),
		prerequisite_step_id TEXT REFERENCES steps(id) ON DELETE CASCADE,
		dependent_step_id    TEXT NOT NULL REFERENCES steps(id) ON DELETE CASCADE,
		window_start         TEXT,
		window_end           TEXT,
		created_at           TEXT NOT NULL,
		CHECK(constraint_type != 'dependency' OR prerequisite_step_id IS NOT NULL),
		CHECK(prerequisite_step_id IS NULL OR prerequisite_step_id != dependent_step_id)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_constraints_dependency_pair
		ON schedule_constraints(prerequisite_step_id, dependent_step_id)
		WHERE constraint_type = 'dependency'`,
	`CREATE INDEX IF NOT EXISTS idx_constraints_dependent ON schedule_constraints(dependent_step_id)`,

	// An assignment owns one progress row per step. Rows of earlier
	// assignments of the same program stay with those assignments.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_step_progress_assignment_step ON step_progress(assignment_id, step_id)`,
	`CREATE INDEX IF NOT EXISTS idx_step_progress_user_step ON step_progress(user_id, step_id)`,
}
