package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
)

// PlanInput is everything the planner needs for one assignment.
type PlanInput struct {
	Now        time.Time
	AssignedAt time.Time

	// Steps of the assignment's program.
	Steps []*domain.Step
	// Constraints touching any of Steps.
	Constraints []*domain.ScheduleConstraint
	// Progress of this user keyed by step id. Missing entries are unplanned.
	Progress map[string]*domain.StepProgress
	// External holds completion times of prerequisites outside the program.
	External map[string]time.Time
	// Occupied are the user's open windows in other assignments.
	Occupied []domain.PlannedWindow
	// Capacity is the user's concurrent step cap.
	Capacity int
}

// PlannedStep is the outcome for one step. Done steps keep their recorded
// window and are not rewritten.
type PlannedStep struct {
	StepID string
	Start  time.Time
	End    time.Time
	Done   bool
}

type Plan struct {
	Steps    []PlannedStep
	Warnings []string
}

// Windows returns the non-done planned steps keyed by step id.
func (p *Plan) Windows() map[string]PlannedStep {
	out := make(map[string]PlannedStep, len(p.Steps))
	for _, s := range p.Steps {
		if !s.Done {
			out[s.StepID] = s
		}
	}
	return out
}

type fixedWindow struct {
	start *time.Time
	end   *time.Time
}

// BuildPlan places every step of a program on the calendar. Steps are
// serialized in dependency order with authoring order as the tie-break, each
// starting no earlier than the previous step's end, its prerequisites'
// completion, and its fixed window lower bound. A start that would exceed
// the user's capacity is pushed to the next day boundary. Placed windows
// count against the capacity of the steps after them.
// The result depends only on in and s.
func BuildPlan(in PlanInput, s Settings) (*Plan, error) {
	prereqs := make(map[string][]string)
	fixed := make(map[string]fixedWindow)
	for _, c := range in.Constraints {
		switch c.Type {
		case domain.ConstraintDependency:
			if c.PrerequisiteStepID != "" {
				prereqs[c.DependentStepID] = append(prereqs[c.DependentStepID], c.PrerequisiteStepID)
			}
		case domain.ConstraintFixedWindow:
			fw := fixed[c.DependentStepID]
			if c.WindowStart != nil && (fw.start == nil || c.WindowStart.After(*fw.start)) {
				fw.start = c.WindowStart
			}
			if c.WindowEnd != nil && (fw.end == nil || c.WindowEnd.Before(*fw.end)) {
				fw.end = c.WindowEnd
			}
			fixed[c.DependentStepID] = fw
		}
	}

	ordered, err := TopoOrder(in.Steps, prereqs)
	if err != nil {
		return nil, err
	}

	loc := s.location()
	occupancy := NewOccupancy(in.Occupied, in.Capacity)
	cursor := latest(in.Now, in.AssignedAt).Truncate(time.Second).UTC()
	completion := make(map[string]time.Time, len(ordered))
	plan := &Plan{Steps: make([]PlannedStep, 0, len(ordered))}

	for _, step := range ordered {
		if p := in.Progress[step.ID]; p != nil && p.IsDone() {
			done := PlannedStep{StepID: step.ID, Done: true}
			if p.HasPlan() {
				done.Start, done.End = *p.PlannedDateStart, *p.PlannedDateEnd
			}
			if at, ok := p.CompletionTime(); ok {
				completion[step.ID] = at
			} else {
				completion[step.ID] = cursor
			}
			plan.Steps = append(plan.Steps, done)
			continue
		}

		start := cursor
		for _, pre := range prereqs[step.ID] {
			if at, ok := completion[pre]; ok {
				start = latest(start, at)
			} else if at, ok := in.External[pre]; ok {
				start = latest(start, at)
			}
		}
		fw := fixed[step.ID]
		if fw.start != nil {
			start = latest(start, *fw.start)
		}

		d := step.Duration()
		start, err = occupancy.Place(start, d, loc, s.MaxPushDays)
		if err != nil {
			return nil, fmt.Errorf("placing step %s: %w", step.ID, err)
		}
		end := start.Add(d)

		if fw.end != nil && end.After(*fw.end) {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"step %s ends %s, after its fixed window closes at %s",
				step.ID, end.Format(time.RFC3339), fw.end.UTC().Format(time.RFC3339)))
		}

		occupancy.Add(domain.PlannedWindow{StepID: step.ID, Start: start, End: end})
		completion[step.ID] = end
		cursor = end
		plan.Steps = append(plan.Steps, PlannedStep{StepID: step.ID, Start: start, End: end})
	}

	return plan, nil
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
