package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

const constraintColumns = `c.id, c.constraint_type, c.prerequisite_step_id, c.dependent_step_id,
		c.window_start, c.window_end, c.created_at`

// SQLiteConstraintRepo implements ConstraintRepo using a SQLite database.
type SQLiteConstraintRepo struct {
	db db.DBTX
}

// NewSQLiteConstraintRepo creates a new SQLiteConstraintRepo.
func NewSQLiteConstraintRepo(conn db.DBTX) *SQLiteConstraintRepo {
	return &SQLiteConstraintRepo{db: conn}
}

func (r *SQLiteConstraintRepo) Create(ctx context.Context, c *domain.ScheduleConstraint) error {
	query := `INSERT INTO schedule_constraints (id, constraint_type, prerequisite_step_id, dependent_step_id,
		window_start, window_end, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	var prereq interface{}
	if c.PrerequisiteStepID != "" {
		prereq = c.PrerequisiteStepID
	}
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		string(c.Type),
		prereq,
		c.DependentStepID,
		nullableTimeToString(c.WindowStart),
		nullableTimeToString(c.WindowEnd),
		formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule constraint: %w", err)
	}
	return nil
}

// ListForProgram returns every constraint whose dependent or prerequisite
// step belongs to the program.
func (r *SQLiteConstraintRepo) ListForProgram(ctx context.Context, programID string) ([]*domain.ScheduleConstraint, error) {
	query := `SELECT ` + constraintColumns + ` FROM schedule_constraints c
		WHERE c.dependent_step_id IN (SELECT id FROM steps WHERE program_id = ?)
		   OR c.prerequisite_step_id IN (SELECT id FROM steps WHERE program_id = ?)
		ORDER BY c.id`
	return r.list(ctx, query, programID, programID)
}

// ListDependenciesAmong returns dependency edges whose both ends are in stepIDs.
func (r *SQLiteConstraintRepo) ListDependenciesAmong(ctx context.Context, stepIDs []string) ([]*domain.ScheduleConstraint, error) {
	if len(stepIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(stepIDs)
	query := `SELECT ` + constraintColumns + ` FROM schedule_constraints c
		WHERE c.constraint_type = 'dependency'
		  AND c.prerequisite_step_id IN (` + in + `)
		  AND c.dependent_step_id IN (` + in + `)
		ORDER BY c.id`
	return r.list(ctx, query, append(args, args...)...)
}

func (r *SQLiteConstraintRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ScheduleConstraint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing schedule constraints: %w", err)
	}
	defer rows.Close()

	var out []*domain.ScheduleConstraint
	for rows.Next() {
		var c domain.ScheduleConstraint
		var typeStr, createdAtStr string
		var prereq, windowStart, windowEnd sql.NullString
		if err := rows.Scan(&c.ID, &typeStr, &prereq, &c.DependentStepID,
			&windowStart, &windowEnd, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning schedule constraint: %w", err)
		}
		c.Type = domain.ConstraintType(typeStr)
		c.PrerequisiteStepID = prereq.String
		c.WindowStart = parseNullableTime(windowStart)
		c.WindowEnd = parseNullableTime(windowEnd)
		if c.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing constraint created_at: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule constraints: %w", err)
	}
	return out, nil
}
