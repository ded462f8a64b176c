package app

import (
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
)

// DefaultLookaheadDays is the analysis window used when a request leaves
// Days unset.
const DefaultLookaheadDays = 30

type RescheduleRequest struct {
	Days         int
	AssignmentID string
	UserID       string
	Department   string
	Force        bool
	Now          *time.Time
}

func NewRescheduleRequest() RescheduleRequest {
	return RescheduleRequest{Days: DefaultLookaheadDays}
}

// RescheduleReason explains why an assignment was or was not re-planned.
type RescheduleReason string

const (
	ReasonForced              RescheduleReason = "force"
	ReasonUnscheduled         RescheduleReason = "unscheduled"
	ReasonConflicts           RescheduleReason = "conflicts"
	ReasonDependencySatisfied RescheduleReason = "dependency_satisfied"
	ReasonUpToDate            RescheduleReason = "up_to_date"
)

type DecisionOutcome string

const (
	OutcomeRescheduled DecisionOutcome = "rescheduled"
	OutcomeSkipped     DecisionOutcome = "skipped"
	OutcomeFailed      DecisionOutcome = "failed"
)

// Decision records what the coordinator did with one assignment.
type Decision struct {
	AssignmentID string
	UserID       string
	Reason       RescheduleReason
	Outcome      DecisionOutcome
	ChangedSteps int
	Error        string
}

type RescheduleStats struct {
	StartedAt              time.Time
	WindowStart            time.Time
	WindowEnd              time.Time
	AnalyzedAssignments    int
	RescheduledAssignments int
	TotalSteps             int
	RescheduledSteps       int
	ConflictsBefore        int
	ConflictsAfter         int
	FailedReschedules      int
	Decisions              []Decision
	Warnings               []string
}

// PlanResult is the outcome of planning one assignment.
type PlanResult struct {
	AssignmentID string
	UserID       string
	Planned      bool
	// Steps holds the progress rows of every program step after planning,
	// in planning order.
	Steps []*domain.StepProgress
	// ChangedSteps counts windows that were created or moved.
	ChangedSteps int
	Warnings     []string
	// StepTitles maps step id to title for display.
	StepTitles map[string]string
}

// ConflictFilter narrows a conflict scan. Nil bounds are open.
type ConflictFilter struct {
	UserID     string
	Department string
	Start      *time.Time
	End        *time.Time
}

type RescheduleErrorCode string

const (
	RescheduleErrInvalidWindow RescheduleErrorCode = "INVALID_WINDOW"
	RescheduleErrNotFound      RescheduleErrorCode = "NOT_FOUND"
	RescheduleErrInternal      RescheduleErrorCode = "INTERNAL_ERROR"
)

type RescheduleError struct {
	Code    RescheduleErrorCode
	Message string
	Err     error
}

func (e *RescheduleError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *RescheduleError) Unwrap() error {
	return e.Err
}
