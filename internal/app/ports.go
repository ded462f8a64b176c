package app

import (
	"context"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/importer"
)

type PlanAssignmentUseCase interface {
	PlanAssignment(ctx context.Context, assignmentID string) (bool, error)
}

type DetectConflictsUseCase interface {
	DetectConflicts(ctx context.Context, f ConflictFilter) ([]domain.Conflict, error)
}

type AutoRescheduleUseCase interface {
	Run(ctx context.Context, req RescheduleRequest) (*RescheduleStats, error)
}

// PlanListener is notified after an assignment has been re-planned and
// committed.
type PlanListener interface {
	AssignmentPlanned(ctx context.Context, result PlanResult)
}

// PlanListenerFunc adapts a function to PlanListener.
type PlanListenerFunc func(ctx context.Context, result PlanResult)

func (f PlanListenerFunc) AssignmentPlanned(ctx context.Context, result PlanResult) {
	f(ctx, result)
}

type LoadResult struct {
	Users       int
	Programs    int
	Steps       int
	Constraints int
	Assignments int
}

type LoadFixtureUseCase interface {
	LoadFile(ctx context.Context, path string) (*LoadResult, error)
	Load(ctx context.Context, f *importer.Fixture) (*LoadResult, error)
}
