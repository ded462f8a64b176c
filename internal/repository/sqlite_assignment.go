package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

const assignmentColumns = `a.id, a.user_id, a.program_id, a.status, a.assigned_at, a.created_at, a.updated_at`

// SQLiteAssignmentRepo implements AssignmentRepo using a SQLite database.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

// NewSQLiteAssignmentRepo creates a new SQLiteAssignmentRepo.
func NewSQLiteAssignmentRepo(conn db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: conn}
}

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	query := `INSERT INTO assignments (id, user_id, program_id, status, assigned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.ProgramID,
		string(a.Status),
		formatTime(a.AssignedAt),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments a WHERE a.id = ?`
	a, err := r.scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteAssignmentRepo) ListActive(ctx context.Context) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments a
		WHERE a.status = 'active'
		ORDER BY a.assigned_at, a.id`
	return r.list(ctx, query)
}

func (r *SQLiteAssignmentRepo) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments a
		WHERE a.status = 'active' AND a.user_id = ?
		ORDER BY a.assigned_at, a.id`
	return r.list(ctx, query, userID)
}

func (r *SQLiteAssignmentRepo) ListActiveByDepartment(ctx context.Context, department string) ([]*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments a
		JOIN users u ON u.id = a.user_id
		WHERE a.status = 'active' AND u.department = ?
		ORDER BY a.assigned_at, a.id`
	return r.list(ctx, query, department)
}

func (r *SQLiteAssignmentRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Assignment
	for rows.Next() {
		a, err := r.scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return out, nil
}

func (r *SQLiteAssignmentRepo) scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var statusStr, assignedAtStr, createdAtStr, updatedAtStr string
	if err := row.Scan(&a.ID, &a.UserID, &a.ProgramID, &statusStr, &assignedAtStr, &createdAtStr, &updatedAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning assignment: %w", err)
	}
	a.Status = domain.AssignmentStatus(statusStr)

	var err error
	if a.AssignedAt, err = parseTime(assignedAtStr); err != nil {
		return nil, fmt.Errorf("parsing assigned_at: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &a, nil
}
