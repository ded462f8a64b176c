package scheduler

import (
	"sort"

	"github.com/alexanderramin/cadence/internal/domain"
)

type userStep struct {
	userID string
	stepID string
}

// FindConflicts scans planned windows for overlaps between a user's open
// steps and for dependents planned to start before their prerequisite
// completes. Done windows never overlap anything. The result is sorted by
// user, then first window start, then progress ids.
func FindConflicts(windows []domain.PlannedWindow, deps []*domain.ScheduleConstraint) []domain.Conflict {
	byUser := make(map[string][]domain.PlannedWindow)
	byStep := make(map[userStep]domain.PlannedWindow, len(windows))
	stepWindows := make(map[string][]domain.PlannedWindow)
	for _, w := range windows {
		byStep[userStep{w.UserID, w.StepID}] = w
		stepWindows[w.StepID] = append(stepWindows[w.StepID], w)
		if w.Status != domain.ProgressDone {
			byUser[w.UserID] = append(byUser[w.UserID], w)
		}
	}

	var conflicts []domain.Conflict
	for userID, ws := range byUser {
		conflicts = append(conflicts, findOverlaps(userID, ws)...)
	}

	for _, c := range deps {
		if !c.IsDependency() {
			continue
		}
		for _, dependent := range stepWindows[c.DependentStepID] {
			if dependent.Status == domain.ProgressDone {
				continue
			}
			pre, ok := byStep[userStep{dependent.UserID, c.PrerequisiteStepID}]
			if !ok {
				continue
			}
			if dependent.Start.Before(pre.Completion()) {
				conflicts = append(conflicts, domain.Conflict{
					Kind:   domain.ConflictDependency,
					UserID: dependent.UserID,
					First:  pre,
					Second: dependent,
				})
			}
		}
	}

	sortConflicts(conflicts)
	return conflicts
}

func findOverlaps(userID string, ws []domain.PlannedWindow) []domain.Conflict {
	sorted := make([]domain.PlannedWindow, len(ws))
	copy(sorted, ws)
	sort.Slice(sorted, func(i, j int) bool { return windowLess(sorted[i], sorted[j]) })

	var out []domain.Conflict
	var active []domain.PlannedWindow
	for _, w := range sorted {
		kept := active[:0]
		for _, a := range active {
			if a.End.After(w.Start) {
				kept = append(kept, a)
			}
		}
		active = kept
		for _, a := range active {
			if a.Overlaps(w) {
				out = append(out, domain.Conflict{
					Kind:   domain.ConflictOverlap,
					UserID: userID,
					First:  a,
					Second: w,
				})
			}
		}
		active = append(active, w)
	}
	return out
}

func windowLess(a, b domain.PlannedWindow) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if !a.End.Equal(b.End) {
		return a.End.Before(b.End)
	}
	return a.ProgressID < b.ProgressID
}

func sortConflicts(cs []domain.Conflict) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if !a.First.Start.Equal(b.First.Start) {
			return a.First.Start.Before(b.First.Start)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.First.ProgressID != b.First.ProgressID {
			return a.First.ProgressID < b.First.ProgressID
		}
		return a.Second.ProgressID < b.Second.ProgressID
	})
}

// CountByKind tallies conflicts per kind.
func CountByKind(cs []domain.Conflict) map[domain.ConflictKind]int {
	out := make(map[domain.ConflictKind]int)
	for _, c := range cs {
		out[c.Kind]++
	}
	return out
}
