package domain

import "time"

type User struct {
	ID         string
	Name       string
	Email      string
	Department string

	// MaxConcurrentSteps overrides the configured per-user capacity when set.
	MaxConcurrentSteps *int

	CreatedAt time.Time
}
