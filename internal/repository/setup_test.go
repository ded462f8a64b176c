package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testRepos struct {
	db          *sql.DB
	users       *SQLiteUserRepo
	programs    *SQLiteProgramRepo
	assignments *SQLiteAssignmentRepo
	progress    *SQLiteStepProgressRepo
	constraints *SQLiteConstraintRepo
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		db:          database,
		users:       NewSQLiteUserRepo(database),
		programs:    NewSQLiteProgramRepo(database),
		assignments: NewSQLiteAssignmentRepo(database),
		progress:    NewSQLiteStepProgressRepo(database),
		constraints: NewSQLiteConstraintRepo(database),
	}
}

// seedProgram creates a user, a program with n one-day steps, and an active
// assignment of the program to the user.
func seedProgram(t *testing.T, r testRepos, n int) (*domain.User, []*domain.Step, *domain.Assignment) {
	t.Helper()
	ctx := context.Background()

	user := testutil.NewTestUser("Ada Lovelace")
	require.NoError(t, r.users.Create(ctx, user))

	program := testutil.NewTestProgram("Engineering onboarding")
	require.NoError(t, r.programs.Create(ctx, program))

	steps := make([]*domain.Step, 0, n)
	for i := 1; i <= n; i++ {
		s := testutil.NewTestStep(program.ID, "Step", i)
		require.NoError(t, r.programs.CreateStep(ctx, s))
		steps = append(steps, s)
	}

	a := testutil.NewTestAssignment(user.ID, program.ID)
	require.NoError(t, r.assignments.Create(ctx, a))
	return user, steps, a
}
