package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/google/uuid"
)

type schedulerService struct {
	progress    repository.StepProgressRepo
	constraints repository.ConstraintRepo
	uow         db.UnitOfWork
	settings    scheduler.Settings
	observer    UseCaseObserver
	now         func() time.Time
}

// NewSchedulerService builds the scheduler engine. Reads for conflict
// detection go through the given repositories; planning reads and writes
// happen inside one unit of work per assignment.
func NewSchedulerService(
	progress repository.StepProgressRepo,
	constraints repository.ConstraintRepo,
	uow db.UnitOfWork,
	settings scheduler.Settings,
	observers ...UseCaseObserver,
) SchedulerService {
	return &schedulerService{
		progress:    progress,
		constraints: constraints,
		uow:         uow,
		settings:    settings,
		observer:    useCaseObserverOrNoop(observers),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *schedulerService) PlanAssignment(ctx context.Context, assignmentID string) (bool, error) {
	result, err := s.PlanAssignmentAt(ctx, assignmentID, s.now())
	if err != nil {
		var pe *PlanningError
		if errors.As(err, &pe) {
			// Already reported through the observer.
			return false, nil
		}
		return false, err
	}
	return result.Planned, nil
}

func (s *schedulerService) PlanAssignmentAt(ctx context.Context, assignmentID string, now time.Time) (result *contract.PlanResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"assignment_id": assignmentID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "plan-assignment",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	now = now.UTC()
	result = &contract.PlanResult{AssignmentID: assignmentID}
	missing := false

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUsers := repository.NewSQLiteUserRepo(tx)
		txPrograms := repository.NewSQLiteProgramRepo(tx)
		txAssignments := repository.NewSQLiteAssignmentRepo(tx)
		txProgress := repository.NewSQLiteStepProgressRepo(tx)
		txConstraints := repository.NewSQLiteConstraintRepo(tx)

		a, err := txAssignments.GetByID(ctx, assignmentID)
		if err != nil {
			missing = errors.Is(err, repository.ErrNotFound)
			return fmt.Errorf("loading assignment: %w", err)
		}
		result.UserID = a.UserID
		fields["user_id"] = a.UserID
		if !a.IsActive() {
			return fmt.Errorf("%w (status %s)", ErrAssignmentInactive, a.Status)
		}

		if _, err := txPrograms.GetByID(ctx, a.ProgramID); err != nil {
			missing = errors.Is(err, repository.ErrNotFound)
			return fmt.Errorf("loading program %s: %w", a.ProgramID, err)
		}
		steps, err := txPrograms.ListSteps(ctx, a.ProgramID)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyProgram, a.ProgramID)
		}
		fields["step_count"] = len(steps)
		result.StepTitles = make(map[string]string, len(steps))
		for _, st := range steps {
			result.StepTitles[st.ID] = st.Title
		}

		constraints, err := txConstraints.ListForProgram(ctx, a.ProgramID)
		if err != nil {
			return err
		}

		user, err := txUsers.GetByID(ctx, a.UserID)
		if err != nil {
			return fmt.Errorf("loading user %s: %w", a.UserID, err)
		}

		progress, err := loadProgress(ctx, txProgress, a)
		if err != nil {
			return err
		}
		external, err := externalCompletions(ctx, txProgress, a.UserID, steps, constraints)
		if err != nil {
			return err
		}
		occupied, err := txProgress.ListOtherOpenWindows(ctx, a.UserID, a.ID)
		if err != nil {
			return err
		}

		plan, err := scheduler.BuildPlan(scheduler.PlanInput{
			Now:         now,
			AssignedAt:  a.AssignedAt,
			Steps:       steps,
			Constraints: constraints,
			Progress:    progress,
			External:    external,
			Occupied:    occupied,
			Capacity:    s.settings.CapacityFor(user.MaxConcurrentSteps),
		}, s.settings)
		if err != nil {
			return err
		}
		result.Warnings = plan.Warnings

		for _, ps := range plan.Steps {
			p := progress[ps.StepID]
			if ps.Done {
				result.Steps = append(result.Steps, p)
				continue
			}
			if p == nil {
				p = &domain.StepProgress{
					ID:           uuid.New().String(),
					AssignmentID: a.ID,
					UserID:       a.UserID,
					StepID:       ps.StepID,
					Status:       domain.ProgressNotStarted,
					CreatedAt:    now,
				}
				if err := p.ApplyPlan(ps.Start, ps.End, now); err != nil {
					return err
				}
				if err := txProgress.Create(ctx, p); err != nil {
					return fmt.Errorf("creating progress for step %s: %w", ps.StepID, err)
				}
				result.ChangedSteps++
			} else if !p.SameWindow(ps.Start, ps.End) {
				if err := p.ApplyPlan(ps.Start, ps.End, now); err != nil {
					return err
				}
				if err := txProgress.UpdatePlan(ctx, p); err != nil {
					return fmt.Errorf("updating plan for step %s: %w", ps.StepID, err)
				}
				result.ChangedSteps++
			}
			result.Steps = append(result.Steps, p)
		}
		return nil
	})
	if err != nil {
		if missing {
			return nil, err
		}
		return nil, &PlanningError{AssignmentID: assignmentID, Err: err}
	}

	result.Planned = true
	fields["changed_steps"] = result.ChangedSteps
	if len(result.Warnings) > 0 {
		fields["warnings"] = len(result.Warnings)
	}
	return result, nil
}

// loadProgress returns the assignment's own progress keyed by step. Rows
// recorded under an earlier assignment of the same program are not reused.
func loadProgress(ctx context.Context, repo repository.StepProgressRepo, a *domain.Assignment) (map[string]*domain.StepProgress, error) {
	rows, err := repo.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.StepProgress, len(rows))
	for _, p := range rows {
		out[p.StepID] = p
	}
	return out, nil
}

// externalCompletions resolves prerequisites that live outside the program
// through the same user's progress. Unknown ones are left out.
func externalCompletions(ctx context.Context, repo repository.StepProgressRepo, userID string, steps []*domain.Step, constraints []*domain.ScheduleConstraint) (map[string]time.Time, error) {
	inProgram := make(map[string]bool, len(steps))
	for _, st := range steps {
		inProgram[st.ID] = true
	}

	out := make(map[string]time.Time)
	for _, c := range constraints {
		if !c.IsDependency() || !inProgram[c.DependentStepID] || inProgram[c.PrerequisiteStepID] {
			continue
		}
		if _, done := out[c.PrerequisiteStepID]; done {
			continue
		}
		p, err := repo.LatestByUserAndStep(ctx, userID, c.PrerequisiteStepID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if at, ok := p.CompletionTime(); ok {
			out[c.PrerequisiteStepID] = at
		}
	}
	return out, nil
}

func (s *schedulerService) DetectConflicts(ctx context.Context, f contract.ConflictFilter) (conflicts []domain.Conflict, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	if f.UserID != "" {
		fields["user_id"] = f.UserID
	}
	if f.Department != "" {
		fields["department"] = f.Department
	}
	defer func() {
		fields["conflicts"] = len(conflicts)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "detect-conflicts",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return nil, &contract.RescheduleError{
			Code:    contract.RescheduleErrInvalidWindow,
			Message: "conflict window ends before it starts",
		}
	}

	windows, err := s.progress.ListPlannedWindows(ctx, repository.WindowFilter{
		UserID:     f.UserID,
		Department: f.Department,
		Start:      f.Start,
		End:        f.End,
	})
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var stepIDs []string
	for _, w := range windows {
		if !seen[w.StepID] {
			seen[w.StepID] = true
			stepIDs = append(stepIDs, w.StepID)
		}
	}
	deps, err := s.constraints.ListDependenciesAmong(ctx, stepIDs)
	if err != nil {
		return nil, err
	}

	return scheduler.FindConflicts(windows, deps), nil
}
