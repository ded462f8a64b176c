package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
)

// SQLiteProgramRepo implements ProgramRepo using a SQLite database.
// Programs and their steps are authored elsewhere; the scheduler only reads them.
type SQLiteProgramRepo struct {
	db db.DBTX
}

// NewSQLiteProgramRepo creates a new SQLiteProgramRepo.
func NewSQLiteProgramRepo(conn db.DBTX) *SQLiteProgramRepo {
	return &SQLiteProgramRepo{db: conn}
}

func (r *SQLiteProgramRepo) Create(ctx context.Context, p *domain.Program) error {
	query := `INSERT INTO programs (id, name, description, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, formatTime(p.CreatedAt)); err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	return nil
}

func (r *SQLiteProgramRepo) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	query := `SELECT id, name, description, created_at FROM programs WHERE id = ?`
	var p domain.Program
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("program %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning program: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing program created_at: %w", err)
	}
	return &p, nil
}

func (r *SQLiteProgramRepo) CreateStep(ctx context.Context, s *domain.Step) error {
	query := `INSERT INTO steps (id, program_id, title, order_index, duration_days, is_required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProgramID,
		s.Title,
		s.Order,
		s.DurationDays,
		boolToInt(s.IsRequired),
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting step: %w", err)
	}
	return nil
}

// ListSteps returns the program's steps in authoring order.
func (r *SQLiteProgramRepo) ListSteps(ctx context.Context, programID string) ([]*domain.Step, error) {
	query := `SELECT id, program_id, title, order_index, duration_days, is_required, created_at
		FROM steps WHERE program_id = ? ORDER BY order_index, id`
	rows, err := r.db.QueryContext(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	defer rows.Close()

	var steps []*domain.Step
	for rows.Next() {
		var s domain.Step
		var requiredInt int
		var createdAtStr string
		if err := rows.Scan(&s.ID, &s.ProgramID, &s.Title, &s.Order, &s.DurationDays, &requiredInt, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		s.IsRequired = intToBool(requiredInt)
		if s.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing step created_at: %w", err)
		}
		steps = append(steps, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating steps: %w", err)
	}
	return steps, nil
}
