package scheduler

import "time"

// Settings carries every tunable of the planner. It is passed explicitly to
// each call; the package keeps no state between plans.
type Settings struct {
	// Location is the reference timezone used for day boundaries.
	Location *time.Location

	// MaxConcurrentSteps is the default number of planned step windows a
	// user may have open at the same instant. Zero or less disables the cap.
	MaxConcurrentSteps int

	// MaxPushDays bounds how many day boundaries a step may be pushed past
	// while looking for free capacity.
	MaxPushDays int

	// RecentCompletionWindow is how far back a prerequisite completion
	// counts as freshly satisfied.
	RecentCompletionWindow time.Duration
}

// DefaultSettings returns one step at a time per user in UTC.
func DefaultSettings() Settings {
	return Settings{
		Location:               time.UTC,
		MaxConcurrentSteps:     1,
		MaxPushDays:            365,
		RecentCompletionWindow: 24 * time.Hour,
	}
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// CapacityFor resolves a user's cap: the override when set, else the default.
func (s Settings) CapacityFor(override *int) int {
	if override != nil {
		return *override
	}
	return s.MaxConcurrentSteps
}
