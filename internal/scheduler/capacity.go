package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
)

// ErrCapacityExhausted is returned when no start within the push limit
// keeps the user under their concurrent step cap.
var ErrCapacityExhausted = errors.New("capacity exhausted")

// Occupancy is the set of windows already holding a user's capacity.
type Occupancy struct {
	windows []domain.PlannedWindow
	limit   int
}

// NewOccupancy builds an occupancy over windows with the given cap.
// A limit of zero or less never blocks.
func NewOccupancy(windows []domain.PlannedWindow, limit int) *Occupancy {
	return &Occupancy{windows: windows, limit: limit}
}

// Add records a newly placed window.
func (o *Occupancy) Add(w domain.PlannedWindow) {
	o.windows = append(o.windows, w)
}

// MaxConcurrent returns the largest number of windows open at one instant
// within [start, end).
func (o *Occupancy) MaxConcurrent(start, end time.Time) int {
	type event struct {
		at    time.Time
		delta int
	}
	var events []event
	for _, w := range o.windows {
		if !w.Start.Before(end) || !start.Before(w.End) {
			continue
		}
		s, e := w.Start, w.End
		if s.Before(start) {
			s = start
		}
		if e.After(end) {
			e = end
		}
		events = append(events, event{s, 1}, event{e, -1})
	}
	// Closing events sort first at equal instants: windows are half-open.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].delta < events[j].delta
	})

	cur, peak := 0, 0
	for _, ev := range events {
		cur += ev.delta
		if cur > peak {
			peak = cur
		}
	}
	return peak
}

// Fits reports whether one more window over [start, end) stays within the cap.
func (o *Occupancy) Fits(start, end time.Time) bool {
	if o.limit <= 0 {
		return true
	}
	return o.MaxConcurrent(start, end)+1 <= o.limit
}

// Place returns the earliest start at or after start for a window of length
// d that fits. When the window does not fit the start moves to the next day
// boundary in loc, at most maxPush times.
func (o *Occupancy) Place(start time.Time, d time.Duration, loc *time.Location, maxPush int) (time.Time, error) {
	candidate := start
	for pushes := 0; ; pushes++ {
		if o.Fits(candidate, candidate.Add(d)) {
			return candidate, nil
		}
		if pushes >= maxPush {
			return time.Time{}, fmt.Errorf("%w: no free slot within %d days of %s",
				ErrCapacityExhausted, maxPush, start.Format(time.RFC3339))
		}
		candidate = NextDayBoundary(candidate, loc)
	}
}

// NextDayBoundary returns the first midnight in loc strictly after t, in UTC.
func NextDayBoundary(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).UTC()
}
