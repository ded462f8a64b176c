package domain

import "time"

// PlannedWindow is the scheduling view of one StepProgress row.
type PlannedWindow struct {
	ProgressID        string
	AssignmentID      string
	UserID            string
	StepID            string
	Status            ProgressStatus
	Start             time.Time
	End               time.Time
	ActualCompletedAt *time.Time
}

// Completion is the actual completion for done steps, the planned end otherwise.
func (w PlannedWindow) Completion() time.Time {
	if w.Status == ProgressDone && w.ActualCompletedAt != nil {
		return *w.ActualCompletedAt
	}
	return w.End
}

// Overlaps uses half-open interval semantics.
func (w PlannedWindow) Overlaps(o PlannedWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Conflict is a detected scheduling problem between two windows of one user.
// For dependency conflicts First is the prerequisite and Second the dependent.
type Conflict struct {
	Kind   ConflictKind
	UserID string
	First  PlannedWindow
	Second PlannedWindow
}
