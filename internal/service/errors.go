package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAssignmentInactive is returned when planning a completed or
	// cancelled assignment.
	ErrAssignmentInactive = errors.New("assignment is not active")

	// ErrEmptyProgram is returned when an assignment's program has no steps.
	ErrEmptyProgram = errors.New("program has no steps")
)

// PlanningError is a failure to produce or persist a plan for an assignment
// that exists. Nothing of the plan was written.
type PlanningError struct {
	AssignmentID string
	Err          error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning assignment %s: %v", e.AssignmentID, e.Err)
}

func (e *PlanningError) Unwrap() error {
	return e.Err
}
