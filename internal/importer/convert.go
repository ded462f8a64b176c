package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/google/uuid"
)

// Converted holds the domain objects produced from a fixture, in insert order.
type Converted struct {
	Users       []*domain.User
	Programs    []*domain.Program
	Steps       []*domain.Step
	Constraints []*domain.ScheduleConstraint
	Assignments []*domain.Assignment
	Progress    []*domain.StepProgress
}

// Convert transforms a validated Fixture into domain objects ready for
// persistence. Call ValidateFixture first; Convert assumes the fixture is
// valid.
func Convert(f *Fixture, now time.Time) (*Converted, error) {
	out := &Converted{}
	userIDs := make(map[string]string)
	programIDs := make(map[string]string)
	stepIDs := make(map[string]string)

	for _, u := range f.Users {
		user := &domain.User{
			ID:                 uuid.New().String(),
			Name:               u.Name,
			Email:              u.Email,
			Department:         u.Department,
			MaxConcurrentSteps: u.MaxConcurrentSteps,
			CreatedAt:          now,
		}
		userIDs[u.Ref] = user.ID
		out.Users = append(out.Users, user)
	}

	for _, p := range f.Programs {
		program := &domain.Program{
			ID:          uuid.New().String(),
			Name:        p.Name,
			Description: p.Description,
			CreatedAt:   now,
		}
		programIDs[p.Ref] = program.ID
		out.Programs = append(out.Programs, program)

		for i, s := range p.Steps {
			step := &domain.Step{
				ID:           uuid.New().String(),
				ProgramID:    program.ID,
				Title:        s.Title,
				Order:        domain.FirstInt(i+1, s.Order),
				DurationDays: domain.FirstInt(1, s.DurationDays),
				IsRequired:   s.Required == nil || *s.Required,
				CreatedAt:    now,
			}
			stepIDs[s.Ref] = step.ID
			out.Steps = append(out.Steps, step)
		}
	}

	for _, c := range f.Constraints {
		dependentID, ok := stepIDs[c.DependentRef]
		if !ok {
			return nil, fmt.Errorf("dependent_ref %q not found", c.DependentRef)
		}
		sc := &domain.ScheduleConstraint{
			ID:              uuid.New().String(),
			Type:            domain.ConstraintType(c.Type),
			DependentStepID: dependentID,
			CreatedAt:       now,
		}
		if sc.Type == domain.ConstraintDependency {
			preID, ok := stepIDs[c.PrerequisiteRef]
			if !ok {
				return nil, fmt.Errorf("prerequisite_ref %q not found", c.PrerequisiteRef)
			}
			sc.PrerequisiteStepID = preID
		}
		var err error
		if sc.WindowStart, err = optionalInstant(c.WindowStart); err != nil {
			return nil, fmt.Errorf("parsing window_start: %w", err)
		}
		if sc.WindowEnd, err = optionalInstant(c.WindowEnd); err != nil {
			return nil, fmt.Errorf("parsing window_end: %w", err)
		}
		out.Constraints = append(out.Constraints, sc)
	}

	for _, a := range f.Assignments {
		userID, ok := userIDs[a.UserRef]
		if !ok {
			return nil, fmt.Errorf("user_ref %q not found", a.UserRef)
		}
		programID, ok := programIDs[a.ProgramRef]
		if !ok {
			return nil, fmt.Errorf("program_ref %q not found", a.ProgramRef)
		}
		assignedAt, err := parseInstant(a.AssignedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing assigned_at: %w", err)
		}
		assignment := &domain.Assignment{
			ID:         uuid.New().String(),
			UserID:     userID,
			ProgramID:  programID,
			Status:     domain.AssignmentStatus(domain.FirstNonEmpty(a.Status, string(domain.AssignmentActive))),
			AssignedAt: assignedAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		out.Assignments = append(out.Assignments, assignment)

		for _, p := range a.Progress {
			stepID, ok := stepIDs[p.StepRef]
			if !ok {
				return nil, fmt.Errorf("step_ref %q not found", p.StepRef)
			}
			completedAt, err := optionalInstant(p.CompletedAt)
			if err != nil {
				return nil, fmt.Errorf("parsing completed_at: %w", err)
			}
			out.Progress = append(out.Progress, &domain.StepProgress{
				ID:                uuid.New().String(),
				AssignmentID:      assignment.ID,
				UserID:            userID,
				StepID:            stepID,
				Status:            domain.ProgressStatus(p.Status),
				ActualCompletedAt: completedAt,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
	}

	return out, nil
}

func optionalInstant(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseInstant(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
