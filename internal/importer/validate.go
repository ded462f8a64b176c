package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
)

// ValidateFixture checks a fixture for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateFixture(f *Fixture) []error {
	var errs []error

	userRefs := make(map[string]bool)
	errs = append(errs, validateUsers(f.Users, userRefs)...)

	programRefs := make(map[string]bool)
	stepRefs := make(map[string]string) // step ref -> program ref
	errs = append(errs, validatePrograms(f.Programs, programRefs, stepRefs)...)

	errs = append(errs, validateConstraints(f.Constraints, stepRefs)...)
	errs = append(errs, validateAssignments(f.Assignments, userRefs, programRefs, stepRefs)...)

	return errs
}

func validateUsers(users []UserImport, refs map[string]bool) []error {
	var errs []error
	emails := make(map[string]bool)

	for i, u := range users {
		prefix := fmt.Sprintf("users[%d]", i)

		if u.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[u.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, u.Ref))
		} else {
			refs[u.Ref] = true
		}

		if u.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if u.Email == "" {
			errs = append(errs, fmt.Errorf("%s.email is required", prefix))
		} else if emails[u.Email] {
			errs = append(errs, fmt.Errorf("%s.email: duplicate email %q", prefix, u.Email))
		} else {
			emails[u.Email] = true
		}

		if u.MaxConcurrentSteps != nil && *u.MaxConcurrentSteps < 0 {
			errs = append(errs, fmt.Errorf("%s.max_concurrent_steps must not be negative", prefix))
		}
	}

	return errs
}

func validatePrograms(programs []ProgramImport, refs map[string]bool, stepRefs map[string]string) []error {
	var errs []error

	for i, p := range programs {
		prefix := fmt.Sprintf("programs[%d]", i)

		if p.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[p.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, p.Ref))
		} else {
			refs[p.Ref] = true
		}
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		for j, s := range p.Steps {
			sp := fmt.Sprintf("%s.steps[%d]", prefix, j)
			if s.Ref == "" {
				errs = append(errs, fmt.Errorf("%s.ref is required", sp))
			} else if _, dup := stepRefs[s.Ref]; dup {
				errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", sp, s.Ref))
			} else {
				stepRefs[s.Ref] = p.Ref
			}
			if s.Title == "" {
				errs = append(errs, fmt.Errorf("%s.title is required", sp))
			}
			if s.DurationDays != nil && *s.DurationDays <= 0 {
				errs = append(errs, fmt.Errorf("%s.duration_days must be positive", sp))
			}
		}
	}

	return errs
}

func validateConstraints(constraints []ConstraintImport, stepRefs map[string]string) []error {
	var errs []error
	var deps []ConstraintImport

	for i, c := range constraints {
		prefix := fmt.Sprintf("constraints[%d]", i)

		if c.DependentRef == "" {
			errs = append(errs, fmt.Errorf("%s.dependent_ref is required", prefix))
		} else if _, ok := stepRefs[c.DependentRef]; !ok {
			errs = append(errs, fmt.Errorf("%s.dependent_ref: ref %q not found in steps", prefix, c.DependentRef))
		}

		switch domain.ConstraintType(c.Type) {
		case domain.ConstraintDependency:
			if c.PrerequisiteRef == "" {
				errs = append(errs, fmt.Errorf("%s.prerequisite_ref is required", prefix))
			} else if _, ok := stepRefs[c.PrerequisiteRef]; !ok {
				errs = append(errs, fmt.Errorf("%s.prerequisite_ref: ref %q not found in steps", prefix, c.PrerequisiteRef))
			} else if c.PrerequisiteRef == c.DependentRef {
				errs = append(errs, fmt.Errorf("%s: self-dependency on %q", prefix, c.DependentRef))
			} else {
				deps = append(deps, c)
			}
		case domain.ConstraintFixedWindow:
			if c.WindowStart == nil || *c.WindowStart == "" {
				errs = append(errs, fmt.Errorf("%s.window_start is required", prefix))
			}
			start, startErr := validateInstant(prefix+".window_start", c.WindowStart)
			end, endErr := validateInstant(prefix+".window_end", c.WindowEnd)
			errs = append(errs, startErr...)
			errs = append(errs, endErr...)
			if start != nil && end != nil && end.Before(*start) {
				errs = append(errs, fmt.Errorf("%s: window_end %q is before window_start %q", prefix, *c.WindowEnd, *c.WindowStart))
			}
		case "":
			errs = append(errs, fmt.Errorf("%s.type is required", prefix))
		default:
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, c.Type))
		}
	}

	if len(deps) > 1 {
		errs = append(errs, detectCycles(deps)...)
	}
	return errs
}

func detectCycles(deps []ConstraintImport) []error {
	graph := make(map[string][]string)
	var nodes []string
	seen := make(map[string]bool)
	for _, d := range deps {
		graph[d.PrerequisiteRef] = append(graph[d.PrerequisiteRef], d.DependentRef)
		for _, n := range []string{d.PrerequisiteRef, d.DependentRef} {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, next := range graph[node] {
			if color[next] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, next))
				return true
			}
			if color[next] == white && visit(next) {
				return true
			}
		}
		color[node] = black
		return false
	}

	for _, node := range nodes {
		if color[node] == white {
			visit(node)
		}
	}
	return errs
}

func validateAssignments(assignments []AssignmentImport, userRefs, programRefs map[string]bool, stepRefs map[string]string) []error {
	var errs []error
	pairs := make(map[[2]string]bool)

	for i, a := range assignments {
		prefix := fmt.Sprintf("assignments[%d]", i)

		if a.UserRef == "" {
			errs = append(errs, fmt.Errorf("%s.user_ref is required", prefix))
		} else if !userRefs[a.UserRef] {
			errs = append(errs, fmt.Errorf("%s.user_ref: ref %q not found in users", prefix, a.UserRef))
		}
		if a.ProgramRef == "" {
			errs = append(errs, fmt.Errorf("%s.program_ref is required", prefix))
		} else if !programRefs[a.ProgramRef] {
			errs = append(errs, fmt.Errorf("%s.program_ref: ref %q not found in programs", prefix, a.ProgramRef))
		}

		// Earlier enrolments may stay on record, but only one can be active.
		pair := [2]string{a.UserRef, a.ProgramRef}
		active := a.Status == "" || a.Status == string(domain.AssignmentActive)
		if a.UserRef != "" && a.ProgramRef != "" && active {
			if pairs[pair] {
				errs = append(errs, fmt.Errorf("%s: user %q is already assigned program %q", prefix, a.UserRef, a.ProgramRef))
			}
			pairs[pair] = true
		}

		if a.Status != "" && !domain.ValidAssignmentStatuses[a.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, a.Status))
		}
		if a.AssignedAt == "" {
			errs = append(errs, fmt.Errorf("%s.assigned_at is required", prefix))
		} else {
			_, e := validateInstant(prefix+".assigned_at", &a.AssignedAt)
			errs = append(errs, e...)
		}

		seenSteps := make(map[string]bool, len(a.Progress))
		for j, p := range a.Progress {
			pp := fmt.Sprintf("%s.progress[%d]", prefix, j)
			if seenSteps[p.StepRef] {
				errs = append(errs, fmt.Errorf("%s.step_ref: step %q already has progress in this assignment", pp, p.StepRef))
			}
			seenSteps[p.StepRef] = true
			if owner, ok := stepRefs[p.StepRef]; !ok {
				errs = append(errs, fmt.Errorf("%s.step_ref: ref %q not found in steps", pp, p.StepRef))
			} else if owner != a.ProgramRef {
				errs = append(errs, fmt.Errorf("%s.step_ref: step %q belongs to program %q", pp, p.StepRef, owner))
			}
			if !domain.ValidProgressStatuses[p.Status] {
				errs = append(errs, fmt.Errorf("%s.status: invalid value %q", pp, p.Status))
			}
			_, e := validateInstant(pp+".completed_at", p.CompletedAt)
			errs = append(errs, e...)
			if p.CompletedAt != nil && p.Status != string(domain.ProgressDone) {
				errs = append(errs, fmt.Errorf("%s.completed_at is only allowed on done steps", pp))
			}
		}
	}

	return errs
}

func validateInstant(field string, s *string) (*time.Time, []error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseInstant(*s)
	if err != nil {
		return nil, []error{fmt.Errorf("%s: invalid time %q (expected YYYY-MM-DD or RFC3339)", field, *s)}
	}
	return &t, nil
}

// parseInstant accepts a calendar date (midnight UTC) or an RFC3339 instant.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
