package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const seedProgram = `
	INSERT INTO users (id, name, created_at) VALUES ('u1', 'Ada', '2025-01-01T00:00:00Z');
	INSERT INTO programs (id, name, created_at) VALUES ('p1', 'Engineering', '2025-01-01T00:00:00Z');
	INSERT INTO steps (id, program_id, title, order_index, duration_days, created_at)
		VALUES ('s1', 'p1', 'Laptop', 1, 1, '2025-01-01T00:00:00Z');
	INSERT INTO steps (id, program_id, title, order_index, duration_days, created_at)
		VALUES ('s2', 'p1', 'Accounts', 2, 1, '2025-01-01T00:00:00Z');
	INSERT INTO assignments (id, user_id, program_id, status, assigned_at, created_at, updated_at)
		VALUES ('a1', 'u1', 'p1', 'active', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z');
`

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(seedProgram)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Second run is a no-op.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"users", "programs", "steps", "assignments", "step_progress", "schedule_constraints"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_users_department",
		"idx_steps_program",
		"idx_assignments_user",
		"idx_assignments_status",
		"idx_step_progress_planned",
		"idx_step_progress_assignment_step",
		"idx_step_progress_user_step",
		"idx_constraints_dependency_pair",
		"idx_constraints_dependent",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_UsersCapacityColumn(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(users)`)
	require.NoError(t, err)
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		if name == "max_concurrent_steps" {
			found = true
		}
	}
	assert.True(t, found, "users table should have max_concurrent_steps column")
}

func TestMigrate_StepProgressRejectsInvertedWindow(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	_, err := db.Exec(`INSERT INTO step_progress (id, assignment_id, user_id, step_id, planned_date_start, planned_date_end, created_at, updated_at)
		VALUES ('sp1', 'a1', 'u1', 's1', '2025-01-02T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "planned end before start should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO step_progress (id, assignment_id, user_id, step_id, planned_date_start, planned_date_end, created_at, updated_at)
		VALUES ('sp1', 'a1', 'u1', 's1', '2025-01-01T00:00:00Z', '2025-01-02T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_StepProgressUniquePerAssignmentAndStep(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	_, err := db.Exec(`INSERT INTO assignments (id, user_id, program_id, status, assigned_at, created_at, updated_at)
		VALUES ('a0', 'u1', 'p1', 'cancelled', '2024-06-01T00:00:00Z', '2024-06-01T00:00:00Z', '2024-06-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO step_progress (id, assignment_id, user_id, step_id, created_at, updated_at)
		VALUES ('sp0', 'a0', 'u1', 's1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO step_progress (id, assignment_id, user_id, step_id, created_at, updated_at)
		VALUES ('sp1', 'a1', 'u1', 's1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err, "a re-enrolment gets its own row for the step")

	_, err = db.Exec(`INSERT INTO step_progress (id, assignment_id, user_id, step_id, created_at, updated_at)
		VALUES ('sp2', 'a1', 'u1', 's1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "second row for the same assignment and step should be rejected")
}

func TestMigrate_ConstraintChecks(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	_, err := db.Exec(`INSERT INTO schedule_constraints (id, constraint_type, dependent_step_id, created_at)
		VALUES ('c1', 'dependency', 's2', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "dependency without prerequisite should be rejected")

	_, err = db.Exec(`INSERT INTO schedule_constraints (id, constraint_type, prerequisite_step_id, dependent_step_id, created_at)
		VALUES ('c2', 'dependency', 's2', 's2', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "self dependency should be rejected")

	_, err = db.Exec(`INSERT INTO schedule_constraints (id, constraint_type, prerequisite_step_id, dependent_step_id, created_at)
		VALUES ('c3', 'dependency', 's1', 's2', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO schedule_constraints (id, constraint_type, prerequisite_step_id, dependent_step_id, created_at)
		VALUES ('c4', 'dependency', 's1', 's2', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "duplicate dependency pair should violate unique index")

	_, err = db.Exec(`INSERT INTO schedule_constraints (id, constraint_type, dependent_step_id, window_start, created_at)
		VALUES ('c5', 'fixed_window', 's1', '2025-02-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}
