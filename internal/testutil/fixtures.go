package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/google/uuid"
)

var testEmailCounter atomic.Int64

// RefTime is the fixed reference instant used by scheduling fixtures.
var RefTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Date returns midnight UTC on the given day of 2025.
func Date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

// User options
type UserOption func(*domain.User)

func WithDepartment(d string) UserOption {
	return func(u *domain.User) {
		u.Department = d
	}
}

func WithMaxConcurrentSteps(n int) UserOption {
	return func(u *domain.User) {
		u.MaxConcurrentSteps = &n
	}
}

func defaultEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s%02d@example.com", local, testEmailCounter.Add(1))
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      defaultEmail(name),
		Department: "engineering",
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func NewTestProgram(name string) *domain.Program {
	return &domain.Program{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Step options
type StepOption func(*domain.Step)

func WithDurationDays(d int) StepOption {
	return func(s *domain.Step) {
		s.DurationDays = d
	}
}

func WithOptionalStep() StepOption {
	return func(s *domain.Step) {
		s.IsRequired = false
	}
}

func NewTestStep(programID, title string, order int, opts ...StepOption) *domain.Step {
	s := &domain.Step{
		ID:           uuid.New().String(),
		ProgramID:    programID,
		Title:        title,
		Order:        order,
		DurationDays: 1,
		IsRequired:   true,
		CreatedAt:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assignment options
type AssignmentOption func(*domain.Assignment)

func WithAssignedAt(t time.Time) AssignmentOption {
	return func(a *domain.Assignment) {
		a.AssignedAt = t
	}
}

func WithAssignmentStatus(s domain.AssignmentStatus) AssignmentOption {
	return func(a *domain.Assignment) {
		a.Status = s
	}
}

func NewTestAssignment(userID, programID string, opts ...AssignmentOption) *domain.Assignment {
	now := time.Now().UTC()
	a := &domain.Assignment{
		ID:         uuid.New().String(),
		UserID:     userID,
		ProgramID:  programID,
		Status:     domain.AssignmentActive,
		AssignedAt: RefTime,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StepProgress options
type ProgressOption func(*domain.StepProgress)

func WithProgressStatus(s domain.ProgressStatus) ProgressOption {
	return func(p *domain.StepProgress) {
		p.Status = s
	}
}

func WithPlannedWindow(start, end time.Time) ProgressOption {
	return func(p *domain.StepProgress) {
		p.PlannedDateStart = &start
		p.PlannedDateEnd = &end
	}
}

// WithCompletedAt marks the progress done at t.
func WithCompletedAt(t time.Time) ProgressOption {
	return func(p *domain.StepProgress) {
		p.Status = domain.ProgressDone
		p.ActualCompletedAt = &t
	}
}

func NewTestProgress(a *domain.Assignment, stepID string, opts ...ProgressOption) *domain.StepProgress {
	now := time.Now().UTC()
	p := &domain.StepProgress{
		ID:           uuid.New().String(),
		AssignmentID: a.ID,
		UserID:       a.UserID,
		StepID:       stepID,
		Status:       domain.ProgressNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestDependency(prerequisiteStepID, dependentStepID string) *domain.ScheduleConstraint {
	return &domain.ScheduleConstraint{
		ID:                 uuid.New().String(),
		Type:               domain.ConstraintDependency,
		PrerequisiteStepID: prerequisiteStepID,
		DependentStepID:    dependentStepID,
		CreatedAt:          time.Now().UTC(),
	}
}

func NewTestFixedWindow(stepID string, start time.Time, end *time.Time) *domain.ScheduleConstraint {
	return &domain.ScheduleConstraint{
		ID:              uuid.New().String(),
		Type:            domain.ConstraintFixedWindow,
		DependentStepID: stepID,
		WindowStart:     &start,
		WindowEnd:       end,
		CreatedAt:       time.Now().UTC(),
	}
}
