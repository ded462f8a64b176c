package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

const progressColumns = `sp.id, sp.assignment_id, sp.user_id, sp.step_id, sp.status,
		sp.planned_date_start, sp.planned_date_end, sp.planned_at, sp.actual_completed_at,
		sp.created_at, sp.updated_at`

// windowColumns selects the PlannedWindow view of a progress row.
const windowColumns = `sp.id, sp.assignment_id, sp.user_id, sp.step_id, sp.status,
		sp.planned_date_start, sp.planned_date_end, sp.actual_completed_at`

// SQLiteStepProgressRepo implements StepProgressRepo using a SQLite database.
type SQLiteStepProgressRepo struct {
	db db.DBTX
}

// NewSQLiteStepProgressRepo creates a new SQLiteStepProgressRepo.
func NewSQLiteStepProgressRepo(conn db.DBTX) *SQLiteStepProgressRepo {
	return &SQLiteStepProgressRepo{db: conn}
}

func (r *SQLiteStepProgressRepo) Create(ctx context.Context, p *domain.StepProgress) error {
	query := `INSERT INTO step_progress (id, assignment_id, user_id, step_id, status,
		planned_date_start, planned_date_end, planned_at, actual_completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.AssignmentID,
		p.UserID,
		p.StepID,
		string(p.Status),
		nullableTimeToString(p.PlannedDateStart),
		nullableTimeToString(p.PlannedDateEnd),
		nullableTimeToString(p.PlannedAt),
		nullableTimeToString(p.ActualCompletedAt),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting step progress: %w", err)
	}
	return nil
}

// LatestByUserAndStep picks one of the user's rows for a step across all of
// their assignments: a done row first, then one owned by an active
// assignment, then the most recently updated.
func (r *SQLiteStepProgressRepo) LatestByUserAndStep(ctx context.Context, userID, stepID string) (*domain.StepProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM step_progress sp
		JOIN assignments a ON a.id = sp.assignment_id
		WHERE sp.user_id = ? AND sp.step_id = ?
		ORDER BY (sp.status = 'done') DESC, (a.status = 'active') DESC, sp.updated_at DESC, sp.id
		LIMIT 1`
	p, err := r.scanProgress(r.db.QueryRowContext(ctx, query, userID, stepID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("step progress for user %s step %s: %w", userID, stepID, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLiteStepProgressRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.StepProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM step_progress sp
		WHERE sp.assignment_id = ?
		ORDER BY sp.step_id`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing step progress: %w", err)
	}
	defer rows.Close()

	var out []*domain.StepProgress
	for rows.Next() {
		p, err := r.scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating step progress: %w", err)
	}
	return out, nil
}

// UpdatePlan never writes status or actual_completed_at; those columns are
// owned by progress tracking.
func (r *SQLiteStepProgressRepo) UpdatePlan(ctx context.Context, p *domain.StepProgress) error {
	query := `UPDATE step_progress
		SET planned_date_start = ?, planned_date_end = ?, planned_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableTimeToString(p.PlannedDateStart),
		nullableTimeToString(p.PlannedDateEnd),
		nullableTimeToString(p.PlannedAt),
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating step progress plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("step progress %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteStepProgressRepo) ListPlannedWindows(ctx context.Context, f WindowFilter) ([]domain.PlannedWindow, error) {
	var where []string
	var args []any
	join := ""

	if f.UserID != "" {
		where = append(where, "sp.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Department != "" {
		join = " JOIN users u ON u.id = sp.user_id"
		where = append(where, "u.department = ?")
		args = append(args, f.Department)
	}
	if f.Start != nil {
		where = append(where, "sp.planned_date_end >= ?")
		args = append(args, formatTime(*f.Start))
	}
	if f.End != nil {
		where = append(where, "sp.planned_date_start <= ?")
		args = append(args, formatTime(*f.End))
	}

	query := `SELECT ` + windowColumns + ` FROM step_progress sp
		JOIN assignments a ON a.id = sp.assignment_id` + join + `
		WHERE a.status = 'active'
		  AND sp.planned_date_start IS NOT NULL
		  AND sp.planned_date_end IS NOT NULL`
	for _, w := range where {
		query += "\n\t\t  AND " + w
	}
	query += "\n\t\tORDER BY sp.user_id, sp.planned_date_start, sp.id"

	return r.listWindows(ctx, query, args...)
}

func (r *SQLiteStepProgressRepo) ListOtherOpenWindows(ctx context.Context, userID, excludeAssignmentID string) ([]domain.PlannedWindow, error) {
	query := `SELECT ` + windowColumns + ` FROM step_progress sp
		JOIN assignments a ON a.id = sp.assignment_id
		WHERE a.status = 'active'
		  AND sp.user_id = ?
		  AND sp.assignment_id != ?
		  AND sp.status != 'done'
		  AND sp.planned_date_start IS NOT NULL
		  AND sp.planned_date_end IS NOT NULL
		ORDER BY sp.planned_date_start, sp.id`
	return r.listWindows(ctx, query, userID, excludeAssignmentID)
}

func (r *SQLiteStepProgressRepo) listWindows(ctx context.Context, query string, args ...any) ([]domain.PlannedWindow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing planned windows: %w", err)
	}
	defer rows.Close()

	var out []domain.PlannedWindow
	for rows.Next() {
		var w domain.PlannedWindow
		var statusStr, startStr, endStr string
		var actualStr sql.NullString
		if err := rows.Scan(&w.ProgressID, &w.AssignmentID, &w.UserID, &w.StepID, &statusStr,
			&startStr, &endStr, &actualStr); err != nil {
			return nil, fmt.Errorf("scanning planned window: %w", err)
		}
		w.Status = domain.ProgressStatus(statusStr)
		if w.Start, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("parsing planned_date_start: %w", err)
		}
		if w.End, err = parseTime(endStr); err != nil {
			return nil, fmt.Errorf("parsing planned_date_end: %w", err)
		}
		w.ActualCompletedAt = parseNullableTime(actualStr)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating planned windows: %w", err)
	}
	return out, nil
}

func (r *SQLiteStepProgressRepo) scanProgress(row rowScanner) (*domain.StepProgress, error) {
	var p domain.StepProgress
	var statusStr, createdAtStr, updatedAtStr string
	var startStr, endStr, plannedAtStr, actualStr sql.NullString
	if err := row.Scan(&p.ID, &p.AssignmentID, &p.UserID, &p.StepID, &statusStr,
		&startStr, &endStr, &plannedAtStr, &actualStr, &createdAtStr, &updatedAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning step progress: %w", err)
	}
	p.Status = domain.ProgressStatus(statusStr)
	p.PlannedDateStart = parseNullableTime(startStr)
	p.PlannedDateEnd = parseNullableTime(endStr)
	p.PlannedAt = parseNullableTime(plannedAtStr)
	p.ActualCompletedAt = parseNullableTime(actualStr)

	var err error
	if p.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
