package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/cadence/internal/domain"
)

// ErrDependencyCycle is returned when the dependency edges of a program
// cannot be ordered.
var ErrDependencyCycle = errors.New("dependency cycle")

// stepLess orders steps by authoring order, then id.
func stepLess(a, b *domain.Step) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.ID < b.ID
}

// TopoOrder returns steps in an order where every step follows its
// prerequisites. Among steps that are ready at the same time the smallest
// authoring order goes first, so without edges the result is the authoring
// order. Prerequisites that are not in steps are ignored here.
func TopoOrder(steps []*domain.Step, prereqs map[string][]string) ([]*domain.Step, error) {
	byID := make(map[string]*domain.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	indegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string)
	for _, s := range steps {
		seen := make(map[string]bool)
		for _, pre := range prereqs[s.ID] {
			if _, ok := byID[pre]; !ok || seen[pre] {
				continue
			}
			seen[pre] = true
			indegree[s.ID]++
			dependents[pre] = append(dependents[pre], s.ID)
		}
	}

	var ready []*domain.Step
	for _, s := range steps {
		if indegree[s.ID] == 0 {
			ready = append(ready, s)
		}
	}

	ordered := make([]*domain.Step, 0, len(steps))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return stepLess(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		for _, dep := range dependents[next.ID] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, byID[dep])
			}
		}
	}

	if len(ordered) != len(steps) {
		var stuck []string
		for _, s := range steps {
			if indegree[s.ID] > 0 {
				stuck = append(stuck, s.ID)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w among steps %s", ErrDependencyCycle, strings.Join(stuck, ", "))
	}
	return ordered, nil
}
