package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintRepo_CreateDependency(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	_, steps, _ := seedProgram(t, r, 2)

	dep := testutil.NewTestDependency(steps[0].ID, steps[1].ID)
	require.NoError(t, r.constraints.Create(ctx, dep))

	got, err := r.constraints.ListForProgram(ctx, steps[0].ProgramID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dep.ID, got[0].ID)
	assert.Equal(t, steps[0].ID, got[0].PrerequisiteStepID)
	assert.Equal(t, steps[1].ID, got[0].DependentStepID)
	assert.Equal(t, domain.ConstraintDependency, got[0].Type)
	assert.Nil(t, got[0].WindowStart)
}

func TestConstraintRepo_DuplicateDependencyFails(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	_, steps, _ := seedProgram(t, r, 2)

	require.NoError(t, r.constraints.Create(ctx, testutil.NewTestDependency(steps[0].ID, steps[1].ID)))
	err := r.constraints.Create(ctx, testutil.NewTestDependency(steps[0].ID, steps[1].ID))
	assert.Error(t, err, "duplicate dependency should fail due to unique index")
}

func TestConstraintRepo_ListForProgram_IncludesFixedWindowsAndCrossProgramEdges(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	_, steps, _ := seedProgram(t, r, 2)

	other := testutil.NewTestProgram("Security basics")
	require.NoError(t, r.programs.Create(ctx, other))
	foreign := testutil.NewTestStep(other.ID, "Security training", 1)
	require.NoError(t, r.programs.CreateStep(ctx, foreign))
	unrelated := testutil.NewTestStep(other.ID, "Phishing quiz", 2)
	require.NoError(t, r.programs.CreateStep(ctx, unrelated))

	windowEnd := testutil.Date(1, 20)
	fixed := testutil.NewTestFixedWindow(steps[1].ID, testutil.Date(1, 10), &windowEnd)
	require.NoError(t, r.constraints.Create(ctx, fixed))
	cross := testutil.NewTestDependency(foreign.ID, steps[0].ID)
	require.NoError(t, r.constraints.Create(ctx, cross))
	outside := testutil.NewTestDependency(foreign.ID, unrelated.ID)
	require.NoError(t, r.constraints.Create(ctx, outside))

	got, err := r.constraints.ListForProgram(ctx, steps[0].ProgramID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{fixed.ID, cross.ID}, ids)
	for _, c := range got {
		if c.ID == fixed.ID {
			assert.Equal(t, domain.ConstraintFixedWindow, c.Type)
			assert.Empty(t, c.PrerequisiteStepID)
			require.NotNil(t, c.WindowStart)
			assert.True(t, c.WindowStart.Equal(testutil.Date(1, 10)))
			require.NotNil(t, c.WindowEnd)
			assert.True(t, c.WindowEnd.Equal(windowEnd))
		}
	}
}

func TestConstraintRepo_ListDependenciesAmong(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	_, steps, _ := seedProgram(t, r, 3)

	ab := testutil.NewTestDependency(steps[0].ID, steps[1].ID)
	bc := testutil.NewTestDependency(steps[1].ID, steps[2].ID)
	require.NoError(t, r.constraints.Create(ctx, ab))
	require.NoError(t, r.constraints.Create(ctx, bc))
	require.NoError(t, r.constraints.Create(ctx, testutil.NewTestFixedWindow(steps[0].ID, testutil.Date(2, 1), nil)))

	got, err := r.constraints.ListDependenciesAmong(ctx, []string{steps[0].ID, steps[1].ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ab.ID, got[0].ID)

	got, err = r.constraints.ListDependenciesAmong(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
