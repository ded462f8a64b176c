package domain

import "time"

// Day is the length of one duration_days unit.
const Day = 24 * time.Hour

type Program struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Step is one authored unit of an onboarding program. Steps are immutable
// while a plan is being computed.
type Step struct {
	ID           string
	ProgramID    string
	Title        string
	Order        int
	DurationDays int
	IsRequired   bool
	CreatedAt    time.Time
}

// Duration converts the step's day estimate to a time delta. Non-positive
// estimates are treated as one day so every planned window has extent.
func (s *Step) Duration() time.Duration {
	if s.DurationDays <= 0 {
		return Day
	}
	return time.Duration(s.DurationDays) * Day
}
