package domain

import "time"

// ScheduleConstraint is a declared rule between steps. Dependency
// constraints carry both step ids; fixed window constraints pin
// DependentStepID to [WindowStart, WindowEnd].
type ScheduleConstraint struct {
	ID                 string
	Type               ConstraintType
	PrerequisiteStepID string
	DependentStepID    string
	WindowStart        *time.Time
	WindowEnd          *time.Time
	CreatedAt          time.Time
}

func (c *ScheduleConstraint) IsDependency() bool {
	return c.Type == ConstraintDependency && c.PrerequisiteStepID != ""
}
