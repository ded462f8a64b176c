package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
)

type rescheduleService struct {
	users       repository.UserRepo
	programs    repository.ProgramRepo
	assignments repository.AssignmentRepo
	progress    repository.StepProgressRepo
	constraints repository.ConstraintRepo
	engine      SchedulerService
	settings    scheduler.Settings
	listeners   []contract.PlanListener
	observer    UseCaseObserver
}

func NewRescheduleService(
	users repository.UserRepo,
	programs repository.ProgramRepo,
	assignments repository.AssignmentRepo,
	progress repository.StepProgressRepo,
	constraints repository.ConstraintRepo,
	engine SchedulerService,
	settings scheduler.Settings,
	observers ...UseCaseObserver,
) RescheduleService {
	return &rescheduleService{
		users:       users,
		programs:    programs,
		assignments: assignments,
		progress:    progress,
		constraints: constraints,
		engine:      engine,
		settings:    settings,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// AddListener registers l to be called after every successful re-plan.
func (s *rescheduleService) AddListener(l contract.PlanListener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// selection is the set of assignments a run looks at, plus the scope used for
// the before/after conflict scans.
type selection struct {
	assignments []*domain.Assignment
	userID      string
	department  string
	warnings    []string
}

func (s *rescheduleService) Run(ctx context.Context, req contract.RescheduleRequest) (stats *contract.RescheduleStats, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"force": req.Force}
	defer func() {
		if stats != nil {
			fields["analyzed"] = stats.AnalyzedAssignments
			fields["rescheduled"] = stats.RescheduledAssignments
			fields["failed"] = stats.FailedReschedules
			fields["conflicts_before"] = stats.ConflictsBefore
			fields["conflicts_after"] = stats.ConflictsAfter
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "auto-reschedule",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	days := req.Days
	if days == 0 {
		days = contract.DefaultLookaheadDays
	}
	if days < 0 {
		return nil, &contract.RescheduleError{
			Code:    contract.RescheduleErrInvalidWindow,
			Message: fmt.Sprintf("days must be positive, got %d", req.Days),
		}
	}
	windowStart, windowEnd := now, now.AddDate(0, 0, days)
	fields["days"] = days

	sel, err := s.selectAssignments(ctx, req)
	if err != nil {
		return nil, err
	}

	filter := contract.ConflictFilter{
		UserID:     sel.userID,
		Department: sel.department,
		Start:      &windowStart,
		End:        &windowEnd,
	}
	before, err := s.engine.DetectConflicts(ctx, filter)
	if err != nil {
		return nil, internalError("scanning conflicts", err)
	}

	stats = &contract.RescheduleStats{
		StartedAt:       now,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		ConflictsBefore: len(before),
		Warnings:        sel.warnings,
	}

	conflictsByUser := make(map[string]int)
	for _, a := range sel.assignments {
		stats.AnalyzedAssignments++

		steps, err := s.programs.ListSteps(ctx, a.ProgramID)
		if err != nil {
			return nil, internalError("loading steps for assignment "+a.ID, err)
		}
		stats.TotalSteps += len(steps)

		reason, err := s.decide(ctx, a, steps, req.Force, now, filter, conflictsByUser)
		if err != nil {
			return nil, internalError("analyzing assignment "+a.ID, err)
		}

		decision := contract.Decision{AssignmentID: a.ID, UserID: a.UserID, Reason: reason}
		if reason == contract.ReasonUpToDate {
			decision.Outcome = contract.OutcomeSkipped
			stats.Decisions = append(stats.Decisions, decision)
			continue
		}

		result, err := s.engine.PlanAssignmentAt(ctx, a.ID, now)
		if err != nil {
			stats.FailedReschedules++
			decision.Outcome = contract.OutcomeFailed
			decision.Error = err.Error()
			stats.Decisions = append(stats.Decisions, decision)
			continue
		}

		stats.RescheduledAssignments++
		stats.RescheduledSteps += result.ChangedSteps
		stats.Warnings = append(stats.Warnings, result.Warnings...)
		decision.Outcome = contract.OutcomeRescheduled
		decision.ChangedSteps = result.ChangedSteps
		stats.Decisions = append(stats.Decisions, decision)

		delete(conflictsByUser, a.UserID)
		for _, l := range s.listeners {
			l.AssignmentPlanned(ctx, *result)
		}
	}

	after, err := s.engine.DetectConflicts(ctx, filter)
	if err != nil {
		return nil, internalError("scanning conflicts", err)
	}
	stats.ConflictsAfter = len(after)
	return stats, nil
}

func (s *rescheduleService) selectAssignments(ctx context.Context, req contract.RescheduleRequest) (*selection, error) {
	switch {
	case req.AssignmentID != "":
		a, err := s.assignments.GetByID(ctx, req.AssignmentID)
		if err != nil {
			return nil, lookupError("assignment", req.AssignmentID, err)
		}
		sel := &selection{userID: a.UserID}
		if !a.IsActive() {
			sel.warnings = append(sel.warnings, fmt.Sprintf("assignment %s is %s; skipped", a.ID, a.Status))
			return sel, nil
		}
		sel.assignments = []*domain.Assignment{a}
		return sel, nil

	case req.UserID != "":
		if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
			return nil, lookupError("user", req.UserID, err)
		}
		list, err := s.assignments.ListActiveByUser(ctx, req.UserID)
		if err != nil {
			return nil, internalError("listing assignments", err)
		}
		return &selection{assignments: list, userID: req.UserID}, nil

	case req.Department != "":
		members, err := s.users.ListByDepartment(ctx, req.Department)
		if err != nil {
			return nil, internalError("listing department", err)
		}
		if len(members) == 0 {
			return nil, lookupError("department", req.Department, repository.ErrNotFound)
		}
		list, err := s.assignments.ListActiveByDepartment(ctx, req.Department)
		if err != nil {
			return nil, internalError("listing assignments", err)
		}
		return &selection{assignments: list, department: req.Department}, nil

	default:
		list, err := s.assignments.ListActive(ctx)
		if err != nil {
			return nil, internalError("listing assignments", err)
		}
		return &selection{assignments: list}, nil
	}
}

// decide returns why a should be re-planned, or ReasonUpToDate.
// conflictsByUser caches conflict counts for the run; entries are dropped
// once one of the user's assignments has been re-planned.
func (s *rescheduleService) decide(
	ctx context.Context,
	a *domain.Assignment,
	steps []*domain.Step,
	force bool,
	now time.Time,
	window contract.ConflictFilter,
	conflictsByUser map[string]int,
) (contract.RescheduleReason, error) {
	if force {
		return contract.ReasonForced, nil
	}

	progress, err := loadProgress(ctx, s.progress, a)
	if err != nil {
		return "", err
	}
	for _, st := range steps {
		p := progress[st.ID]
		if p == nil || (!p.IsDone() && !p.HasPlan()) {
			return contract.ReasonUnscheduled, nil
		}
	}

	count, ok := conflictsByUser[a.UserID]
	if !ok {
		window.UserID = a.UserID
		window.Department = ""
		conflicts, err := s.engine.DetectConflicts(ctx, window)
		if err != nil {
			return "", err
		}
		count = len(conflicts)
		conflictsByUser[a.UserID] = count
	}
	if count > 0 {
		return contract.ReasonConflicts, nil
	}

	satisfied, err := s.recentlySatisfied(ctx, a, progress, now)
	if err != nil {
		return "", err
	}
	if satisfied {
		return contract.ReasonDependencySatisfied, nil
	}
	return contract.ReasonUpToDate, nil
}

// recentlySatisfied reports whether an open step has a prerequisite that was
// completed within the recent completion window before now.
func (s *rescheduleService) recentlySatisfied(ctx context.Context, a *domain.Assignment, progress map[string]*domain.StepProgress, now time.Time) (bool, error) {
	constraints, err := s.constraints.ListForProgram(ctx, a.ProgramID)
	if err != nil {
		return false, err
	}
	since := now.Add(-s.settings.RecentCompletionWindow)

	for _, c := range constraints {
		if !c.IsDependency() {
			continue
		}
		dep, ok := progress[c.DependentStepID]
		if !ok || dep.IsDone() {
			continue
		}
		pre, ok := progress[c.PrerequisiteStepID]
		if !ok {
			pre, err = s.progress.LatestByUserAndStep(ctx, a.UserID, c.PrerequisiteStepID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return false, err
			}
		}
		if !pre.IsDone() || pre.ActualCompletedAt == nil {
			continue
		}
		at := *pre.ActualCompletedAt
		if !at.Before(since) && !at.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func lookupError(kind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &contract.RescheduleError{
			Code:    contract.RescheduleErrNotFound,
			Message: fmt.Sprintf("%s %s not found", kind, id),
			Err:     err,
		}
	}
	return internalError(fmt.Sprintf("loading %s %s", kind, id), err)
}

func internalError(msg string, err error) error {
	return &contract.RescheduleError{
		Code:    contract.RescheduleErrInternal,
		Message: msg + ": " + err.Error(),
		Err:     err,
	}
}
