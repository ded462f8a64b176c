package contract

import "github.com/alexanderramin/cadence/internal/app"

type RescheduleRequest = app.RescheduleRequest

func NewRescheduleRequest() RescheduleRequest {
	return app.NewRescheduleRequest()
}

const DefaultLookaheadDays = app.DefaultLookaheadDays

type RescheduleReason = app.RescheduleReason

const (
	ReasonForced              RescheduleReason = app.ReasonForced
	ReasonUnscheduled         RescheduleReason = app.ReasonUnscheduled
	ReasonConflicts           RescheduleReason = app.ReasonConflicts
	ReasonDependencySatisfied RescheduleReason = app.ReasonDependencySatisfied
	ReasonUpToDate            RescheduleReason = app.ReasonUpToDate
)

type DecisionOutcome = app.DecisionOutcome

const (
	OutcomeRescheduled DecisionOutcome = app.OutcomeRescheduled
	OutcomeSkipped     DecisionOutcome = app.OutcomeSkipped
	OutcomeFailed      DecisionOutcome = app.OutcomeFailed
)

type Decision = app.Decision

type RescheduleStats = app.RescheduleStats

type PlanResult = app.PlanResult

type ConflictFilter = app.ConflictFilter

type RescheduleErrorCode = app.RescheduleErrorCode

const (
	RescheduleErrInvalidWindow RescheduleErrorCode = app.RescheduleErrInvalidWindow
	RescheduleErrNotFound      RescheduleErrorCode = app.RescheduleErrNotFound
	RescheduleErrInternal      RescheduleErrorCode = app.RescheduleErrInternal
)

type RescheduleError = app.RescheduleError

type PlanListener = app.PlanListener

type PlanListenerFunc = app.PlanListenerFunc

type LoadResult = app.LoadResult
