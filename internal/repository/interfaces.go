package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
)

// WindowFilter narrows a planned-window scan. Zero values mean unbounded.
type WindowFilter struct {
	UserID     string
	Department string
	Start      *time.Time
	End        *time.Time
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByDepartment(ctx context.Context, department string) ([]*domain.User, error)
}

type ProgramRepo interface {
	Create(ctx context.Context, p *domain.Program) error
	GetByID(ctx context.Context, id string) (*domain.Program, error)
	CreateStep(ctx context.Context, s *domain.Step) error
	ListSteps(ctx context.Context, programID string) ([]*domain.Step, error)
}

type AssignmentRepo interface {
	Create(ctx context.Context, a *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	ListActive(ctx context.Context) ([]*domain.Assignment, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Assignment, error)
	ListActiveByDepartment(ctx context.Context, department string) ([]*domain.Assignment, error)
}

type StepProgressRepo interface {
	Create(ctx context.Context, p *domain.StepProgress) error
	LatestByUserAndStep(ctx context.Context, userID, stepID string) (*domain.StepProgress, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.StepProgress, error)
	// UpdatePlan writes only the planning fields of p.
	UpdatePlan(ctx context.Context, p *domain.StepProgress) error
	ListPlannedWindows(ctx context.Context, f WindowFilter) ([]domain.PlannedWindow, error)
	// ListOtherOpenWindows returns the user's planned, not-done windows that
	// belong to active assignments other than excludeAssignmentID.
	ListOtherOpenWindows(ctx context.Context, userID, excludeAssignmentID string) ([]domain.PlannedWindow, error)
}

// ConstraintRepo is the constraint store: declared dependency edges and
// fixed windows between steps.
type ConstraintRepo interface {
	Create(ctx context.Context, c *domain.ScheduleConstraint) error
	ListForProgram(ctx context.Context, programID string) ([]*domain.ScheduleConstraint, error)
	ListDependenciesAmong(ctx context.Context, stepIDs []string) ([]*domain.ScheduleConstraint, error)
}
