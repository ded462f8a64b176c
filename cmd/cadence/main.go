package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/alexanderramin/cadence/internal/cli"
	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/config"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	logger := service.NewLogger(os.Stderr, service.LogOptions{Level: level, JSON: cfg.LogFormat == "json"})
	observer := service.NewSlogUseCaseObserver(logger)

	// Wire repositories
	userRepo := repository.NewSQLiteUserRepo(database)
	programRepo := repository.NewSQLiteProgramRepo(database)
	assignmentRepo := repository.NewSQLiteAssignmentRepo(database)
	progressRepo := repository.NewSQLiteStepProgressRepo(database)
	constraintRepo := repository.NewSQLiteConstraintRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	engine := service.NewSchedulerService(progressRepo, constraintRepo, uow, settings, observer)
	coordinator := service.NewRescheduleService(
		userRepo, programRepo, assignmentRepo, progressRepo, constraintRepo,
		engine, settings, observer,
	)
	coordinator.AddListener(cli.NewLogPlanListener(logger))

	app := &cli.App{
		Scheduler:     engine,
		Reschedule:    coordinator,
		Loader:        service.NewLoadService(uow, observer),
		Location:      settings.Location,
		LookaheadDays: cfg.LookaheadDays,
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	return cli.NewRootCmd(app).Execute()
}
