package service

import (
	"context"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/importer"
)

// SchedulerService is the scheduler engine.
type SchedulerService interface {
	// PlanAssignment plans an assignment as of the current time. It returns
	// an error only when the assignment or its program does not exist; any
	// other failure is logged and reported as false.
	PlanAssignment(ctx context.Context, assignmentID string) (bool, error)

	// PlanAssignmentAt plans as of now and returns the detailed outcome.
	// Failures other than a missing assignment or program are *PlanningError.
	PlanAssignmentAt(ctx context.Context, assignmentID string, now time.Time) (*contract.PlanResult, error)

	DetectConflicts(ctx context.Context, f contract.ConflictFilter) ([]domain.Conflict, error)
}

// RescheduleService is the auto-reschedule coordinator.
type RescheduleService interface {
	Run(ctx context.Context, req contract.RescheduleRequest) (*contract.RescheduleStats, error)
	AddListener(l contract.PlanListener)
}

type LoadService interface {
	LoadFile(ctx context.Context, path string) (*contract.LoadResult, error)
	Load(ctx context.Context, f *importer.Fixture) (*contract.LoadResult, error)
}
