package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/alexanderramin/cadence/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db          *sql.DB
	users       *repository.SQLiteUserRepo
	programs    *repository.SQLiteProgramRepo
	assignments *repository.SQLiteAssignmentRepo
	progress    *repository.SQLiteStepProgressRepo
	constraints *repository.SQLiteConstraintRepo
	engine      SchedulerService
	coordinator RescheduleService
	logs        *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithUoW(t, nil)
}

// newTestEnvWithUoW wires the services over an in-memory database. A nil uow
// means a regular SQLite unit of work.
func newTestEnvWithUoW(t *testing.T, uowFor func(*sql.DB) db.UnitOfWork) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	var uow db.UnitOfWork = testutil.NewTestUoW(database)
	if uowFor != nil {
		uow = uowFor(database)
	}

	env := &testEnv{
		db:          database,
		users:       repository.NewSQLiteUserRepo(database),
		programs:    repository.NewSQLiteProgramRepo(database),
		assignments: repository.NewSQLiteAssignmentRepo(database),
		progress:    repository.NewSQLiteStepProgressRepo(database),
		constraints: repository.NewSQLiteConstraintRepo(database),
		logs:        &bytes.Buffer{},
	}
	observer := NewLogUseCaseObserver(env.logs)
	settings := scheduler.DefaultSettings()
	env.engine = NewSchedulerService(env.progress, env.constraints, uow, settings, observer)
	env.coordinator = NewRescheduleService(env.users, env.programs, env.assignments, env.progress,
		env.constraints, env.engine, settings, observer)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name, opts...)
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

// createProgram stores a program whose steps take the given durations in days,
// in authoring order.
func (e *testEnv) createProgram(t *testing.T, name string, durations ...int) (*domain.Program, []*domain.Step) {
	t.Helper()
	ctx := context.Background()
	p := testutil.NewTestProgram(name)
	require.NoError(t, e.programs.Create(ctx, p))

	steps := make([]*domain.Step, 0, len(durations))
	for i, d := range durations {
		s := testutil.NewTestStep(p.ID, name+" step", i+1, testutil.WithDurationDays(d))
		require.NoError(t, e.programs.CreateStep(ctx, s))
		steps = append(steps, s)
	}
	return p, steps
}

func (e *testEnv) assign(t *testing.T, u *domain.User, p *domain.Program, opts ...testutil.AssignmentOption) *domain.Assignment {
	t.Helper()
	a := testutil.NewTestAssignment(u.ID, p.ID, opts...)
	require.NoError(t, e.assignments.Create(context.Background(), a))
	return a
}

func (e *testEnv) depend(t *testing.T, pre, dep *domain.Step) {
	t.Helper()
	require.NoError(t, e.constraints.Create(context.Background(), testutil.NewTestDependency(pre.ID, dep.ID)))
}

func (e *testEnv) addProgress(t *testing.T, a *domain.Assignment, s *domain.Step, opts ...testutil.ProgressOption) *domain.StepProgress {
	t.Helper()
	p := testutil.NewTestProgress(a, s.ID, opts...)
	require.NoError(t, e.progress.Create(context.Background(), p))
	return p
}

// markDone records completion the way progress tracking does, outside the
// scheduler.
func (e *testEnv) markDone(t *testing.T, u *domain.User, s *domain.Step, at time.Time) {
	t.Helper()
	_, err := e.db.Exec(`UPDATE step_progress SET status = 'done', actual_completed_at = ?
		WHERE user_id = ? AND step_id = ?`, at.UTC().Format(time.RFC3339), u.ID, s.ID)
	require.NoError(t, err)
}

func (e *testEnv) windows(t *testing.T, a *domain.Assignment) map[string]*domain.StepProgress {
	t.Helper()
	rows, err := e.progress.ListByAssignment(context.Background(), a.ID)
	require.NoError(t, err)
	out := make(map[string]*domain.StepProgress, len(rows))
	for _, p := range rows {
		out[p.StepID] = p
	}
	return out
}

func day(n int) time.Time {
	return testutil.RefTime.AddDate(0, 0, n-1)
}
