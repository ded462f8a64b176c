package domain

import (
	"fmt"
	"time"
)

// StepProgress tracks one user's progress on one step together with the
// scheduler's planned window. Status and ActualCompletedAt belong to progress
// tracking; the scheduler only touches the planning fields.
type StepProgress struct {
	ID           string
	AssignmentID string
	UserID       string
	StepID       string
	Status       ProgressStatus

	PlannedDateStart *time.Time
	PlannedDateEnd   *time.Time
	PlannedAt        *time.Time

	ActualCompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlan reports whether both planned fields are set.
func (p *StepProgress) HasPlan() bool {
	return p.PlannedDateStart != nil && p.PlannedDateEnd != nil
}

func (p *StepProgress) IsDone() bool {
	return p.Status == ProgressDone
}

// CompletionTime returns when the step is considered finished for
// dependency purposes: the actual completion for done steps, otherwise the
// planned end. The second result is false when neither is known.
func (p *StepProgress) CompletionTime() (time.Time, bool) {
	if p.IsDone() && p.ActualCompletedAt != nil {
		return *p.ActualCompletedAt, true
	}
	if p.PlannedDateEnd != nil {
		return *p.PlannedDateEnd, true
	}
	return time.Time{}, false
}

// ApplyPlan writes a planned window. Only the planning fields and UpdatedAt
// change.
func (p *StepProgress) ApplyPlan(start, end, now time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("planned end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	p.PlannedDateStart = &start
	p.PlannedDateEnd = &end
	p.PlannedAt = &now
	p.UpdatedAt = now
	return nil
}

// SameWindow reports whether the progress already carries exactly [start, end).
func (p *StepProgress) SameWindow(start, end time.Time) bool {
	return p.HasPlan() && p.PlannedDateStart.Equal(start) && p.PlannedDateEnd.Equal(end)
}
