package domain

import "time"

// Assignment is a user's enrollment in a program.
type Assignment struct {
	ID         string
	UserID     string
	ProgramID  string
	Status     AssignmentStatus
	AssignedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Assignment) IsActive() bool {
	return a.Status == AssignmentActive
}
