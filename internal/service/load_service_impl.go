package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/importer"
	"github.com/alexanderramin/cadence/internal/repository"
)

type loadService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewLoadService persists program fixtures. A fixture is written in a single
// transaction.
func NewLoadService(uow db.UnitOfWork, observers ...UseCaseObserver) LoadService {
	return &loadService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *loadService) LoadFile(ctx context.Context, path string) (*contract.LoadResult, error) {
	f, err := importer.LoadFixture(path)
	if err != nil {
		return nil, fmt.Errorf("loading fixture file: %w", err)
	}
	return s.Load(ctx, f)
}

func (s *loadService) Load(ctx context.Context, f *importer.Fixture) (result *contract.LoadResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		if result != nil {
			fields["users"] = result.Users
			fields["programs"] = result.Programs
			fields["assignments"] = result.Assignments
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "load-fixture",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateFixture(f); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	converted, err := importer.Convert(f, startedAt)
	if err != nil {
		return nil, fmt.Errorf("converting fixture: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUsers := repository.NewSQLiteUserRepo(tx)
		txPrograms := repository.NewSQLiteProgramRepo(tx)
		txConstraints := repository.NewSQLiteConstraintRepo(tx)
		txAssignments := repository.NewSQLiteAssignmentRepo(tx)
		txProgress := repository.NewSQLiteStepProgressRepo(tx)

		for _, u := range converted.Users {
			if err := txUsers.Create(ctx, u); err != nil {
				return fmt.Errorf("creating user %q: %w", u.Email, err)
			}
		}
		for _, p := range converted.Programs {
			if err := txPrograms.Create(ctx, p); err != nil {
				return fmt.Errorf("creating program %q: %w", p.Name, err)
			}
		}
		for _, st := range converted.Steps {
			if err := txPrograms.CreateStep(ctx, st); err != nil {
				return fmt.Errorf("creating step %q: %w", st.Title, err)
			}
		}
		for _, c := range converted.Constraints {
			if err := txConstraints.Create(ctx, c); err != nil {
				return fmt.Errorf("creating constraint: %w", err)
			}
		}
		for _, a := range converted.Assignments {
			if err := txAssignments.Create(ctx, a); err != nil {
				return fmt.Errorf("creating assignment: %w", err)
			}
		}
		for _, p := range converted.Progress {
			if err := txProgress.Create(ctx, p); err != nil {
				return fmt.Errorf("creating step progress: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &contract.LoadResult{
		Users:       len(converted.Users),
		Programs:    len(converted.Programs),
		Steps:       len(converted.Steps),
		Constraints: len(converted.Constraints),
		Assignments: len(converted.Assignments),
	}, nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "fixture validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%s", b.String())
}
