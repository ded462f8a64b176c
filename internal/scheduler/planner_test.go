package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return jan1.AddDate(0, 0, n-1)
}

func step(id string, order, days int) *domain.Step {
	return &domain.Step{ID: id, ProgramID: "prog", Title: id, Order: order, DurationDays: days, IsRequired: true}
}

func dependency(pre, dep string) *domain.ScheduleConstraint {
	return &domain.ScheduleConstraint{ID: pre + "->" + dep, Type: domain.ConstraintDependency, PrerequisiteStepID: pre, DependentStepID: dep}
}

func baseInput(steps ...*domain.Step) PlanInput {
	return PlanInput{
		Now:        jan1,
		AssignedAt: jan1,
		Steps:      steps,
		Capacity:   1,
	}
}

func windowsByStep(t *testing.T, p *Plan) map[string][2]time.Time {
	t.Helper()
	out := make(map[string][2]time.Time)
	for _, s := range p.Steps {
		out[s.StepID] = [2]time.Time{s.Start, s.End}
	}
	return out
}

func TestBuildPlan_SequentialStepsWithoutDependencies(t *testing.T) {
	in := baseInput(step("s1", 1, 1), step("s2", 2, 1), step("s3", 3, 1))

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)

	got := windowsByStep(t, plan)
	assert.Equal(t, [2]time.Time{day(1), day(2)}, got["s1"])
	assert.Equal(t, [2]time.Time{day(2), day(3)}, got["s2"])
	assert.Equal(t, [2]time.Time{day(3), day(4)}, got["s3"])
	assert.Empty(t, plan.Warnings)
}

func TestBuildPlan_DonePrerequisiteUsesActualCompletion(t *testing.T) {
	a := step("a", 1, 5)
	b := step("b", 2, 1)
	in := baseInput(a, b)
	in.Constraints = []*domain.ScheduleConstraint{dependency("a", "b")}
	completed := day(1)
	in.Progress = map[string]*domain.StepProgress{
		"a": {StepID: "a", Status: domain.ProgressDone, ActualCompletedAt: &completed},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)

	windows := plan.Windows()
	require.Contains(t, windows, "b")
	assert.False(t, windows["b"].Start.Before(completed))
	assert.True(t, windows["b"].Start.Equal(day(1)), "b should not wait for a's five day estimate")
	assert.NotContains(t, windows, "a", "done steps are not re-planned")
}

func TestBuildPlan_DependencyOverridesAuthoringOrder(t *testing.T) {
	first := step("first", 1, 2)
	second := step("second", 2, 1)
	in := baseInput(first, second)
	in.Constraints = []*domain.ScheduleConstraint{dependency("second", "first")}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "second", plan.Steps[0].StepID)
	got := windowsByStep(t, plan)
	assert.Equal(t, [2]time.Time{day(1), day(2)}, got["second"])
	assert.Equal(t, [2]time.Time{day(2), day(4)}, got["first"])
}

func TestBuildPlan_FixedWindowLowerBound(t *testing.T) {
	in := baseInput(step("s1", 1, 1), step("s2", 2, 1), step("s3", 3, 1))
	windowStart := day(10)
	in.Constraints = []*domain.ScheduleConstraint{
		{ID: "fw", Type: domain.ConstraintFixedWindow, DependentStepID: "s2", WindowStart: &windowStart},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)

	got := windowsByStep(t, plan)
	assert.Equal(t, [2]time.Time{day(1), day(2)}, got["s1"])
	assert.Equal(t, [2]time.Time{day(10), day(11)}, got["s2"])
	assert.Equal(t, [2]time.Time{day(11), day(12)}, got["s3"], "later steps serialize after the pinned step")
}

func TestBuildPlan_FixedWindowOverrunIsWarning(t *testing.T) {
	in := baseInput(step("s1", 1, 3))
	windowStart, windowEnd := day(1), day(2)
	in.Constraints = []*domain.ScheduleConstraint{
		{ID: "fw", Type: domain.ConstraintFixedWindow, DependentStepID: "s1", WindowStart: &windowStart, WindowEnd: &windowEnd},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "s1")
}

func TestBuildPlan_CursorStartsAtLaterOfNowAndAssignedAt(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Now = day(5).Add(9*time.Hour + 30*time.Minute + 500*time.Millisecond)

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	want := day(5).Add(9*time.Hour + 30*time.Minute)
	assert.True(t, plan.Steps[0].Start.Equal(want), "start truncated to the second, got %s", plan.Steps[0].Start)

	in.Now = jan1
	in.AssignedAt = day(3)
	plan, err = BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Start.Equal(day(3)))
}

func TestBuildPlan_CapacityPushesToNextDayBoundary(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Now = jan1.Add(10 * time.Hour)
	in.Occupied = []domain.PlannedWindow{
		{ProgressID: "other", UserID: "u", StepID: "x", Start: jan1.Add(12 * time.Hour), End: jan1.Add(18 * time.Hour)},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Start.Equal(day(2)), "got %s", plan.Steps[0].Start)
	assert.True(t, plan.Steps[0].End.Equal(day(3)))
}

func TestBuildPlan_CapacityAboveOneAllowsOverlap(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Capacity = 2
	in.Occupied = []domain.PlannedWindow{{ProgressID: "other", Start: day(1), End: day(3)}}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Start.Equal(day(1)))
}

func TestBuildPlan_CapacityAboveOneAcrossSteps(t *testing.T) {
	in := baseInput(step("s1", 1, 1), step("s2", 2, 2), step("s3", 3, 1))
	in.Capacity = 2
	in.Occupied = []domain.PlannedWindow{
		{ProgressID: "long", Start: day(1), End: day(6)},
		{ProgressID: "short", Start: day(2), End: day(3)},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)

	got := windowsByStep(t, plan)
	assert.Equal(t, [2]time.Time{day(1), day(2)}, got["s1"])
	// Two windows are already open on day 2.
	assert.Equal(t, [2]time.Time{day(3), day(5)}, got["s2"])
	assert.Equal(t, [2]time.Time{day(5), day(6)}, got["s3"])
	for id, w := range got {
		occ := NewOccupancy(in.Occupied, in.Capacity)
		assert.LessOrEqual(t, occ.MaxConcurrent(w[0], w[1])+1, in.Capacity, "step %s", id)
	}
}

func TestBuildPlan_CapacityExhausted(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Occupied = []domain.PlannedWindow{{ProgressID: "other", Start: day(1), End: day(400)}}
	settings := DefaultSettings()
	settings.MaxPushDays = 5

	_, err := BuildPlan(in, settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExhausted))
	assert.Contains(t, err.Error(), "s1")
}

func TestBuildPlan_CycleFailsFast(t *testing.T) {
	in := baseInput(step("a", 1, 1), step("b", 2, 1), step("c", 3, 1))
	in.Constraints = []*domain.ScheduleConstraint{
		dependency("a", "b"),
		dependency("b", "a"),
	}

	_, err := BuildPlan(in, DefaultSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDependencyCycle)
	assert.Contains(t, err.Error(), "a, b")
}

func TestBuildPlan_ExternalPrerequisite(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Constraints = []*domain.ScheduleConstraint{dependency("elsewhere", "s1")}
	in.External = map[string]time.Time{"elsewhere": day(7)}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Start.Equal(day(7)))
}

func TestBuildPlan_UnknownPrerequisiteIgnored(t *testing.T) {
	in := baseInput(step("s1", 1, 1))
	in.Constraints = []*domain.ScheduleConstraint{dependency("ghost", "s1")}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Steps[0].Start.Equal(day(1)))
}

func TestBuildPlan_DoneStepDoesNotAdvanceCursor(t *testing.T) {
	completed := day(9)
	in := baseInput(step("a", 1, 3), step("b", 2, 1))
	in.Progress = map[string]*domain.StepProgress{
		"a": {StepID: "a", Status: domain.ProgressDone, ActualCompletedAt: &completed},
	}

	plan, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, plan.Windows()["b"].Start.Equal(day(1)))
	assert.True(t, plan.Steps[0].Done)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	in := baseInput(step("s3", 3, 2), step("s1", 1, 1), step("s2", 2, 4))
	in.Constraints = []*domain.ScheduleConstraint{dependency("s3", "s2")}

	first, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	second, err := BuildPlan(in, DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNextDayBoundary_ReferenceTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 UTC on Jan 1 is already Jan 2 in Berlin.
	at := jan1.Add(23*time.Hour + 30*time.Minute)
	got := NextDayBoundary(at, berlin)
	assert.True(t, got.Equal(time.Date(2025, 1, 3, 0, 0, 0, 0, berlin)))
	assert.Equal(t, time.UTC, got.Location())

	assert.True(t, NextDayBoundary(jan1, time.UTC).Equal(day(2)))
}
