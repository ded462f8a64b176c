package domain

type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressDone       ProgressStatus = "done"
	ProgressBlocked    ProgressStatus = "blocked"
)

type ConstraintType string

const (
	ConstraintDependency  ConstraintType = "dependency"
	ConstraintFixedWindow ConstraintType = "fixed_window"
)

type ConflictKind string

const (
	ConflictOverlap    ConflictKind = "overlap"
	ConflictDependency ConflictKind = "dependency"
)

// ValidAssignmentStatuses is the canonical set of accepted assignment status strings.
var ValidAssignmentStatuses = map[string]bool{
	"active": true, "completed": true, "cancelled": true,
}

// ValidProgressStatuses is the canonical set of accepted step progress status strings.
var ValidProgressStatuses = map[string]bool{
	"not_started": true, "in_progress": true, "done": true, "blocked": true,
}

// ValidConstraintTypes is the canonical set of accepted constraint type strings.
var ValidConstraintTypes = map[string]bool{
	"dependency": true, "fixed_window": true,
}
