package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Scheduler  service.SchedulerService
	Reschedule service.RescheduleService
	Loader     service.LoadService

	// Location is the reference timezone for rendering dates and parsing
	// date-only flags.
	Location *time.Location
	// LookaheadDays is the --days default of auto-reschedule.
	LookaheadDays int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now().UTC()
	}
	return time.Now().UTC()
}

func (a *App) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.UTC
}

func (a *App) lookaheadDays() int {
	if a.LookaheadDays > 0 {
		return a.LookaheadDays
	}
	return contract.DefaultLookaheadDays
}

// NewRootCmd creates the top-level "cadence" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cadence",
		Short:         "Onboarding step scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAutoRescheduleCmd(app),
		newPlanCmd(app),
		newConflictsCmd(app),
		newLoadCmd(app),
	)

	return root
}

// parseInstant accepts a date (midnight in loc) or an RFC3339 timestamp.
func parseInstant(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DD or RFC3339", value)
	}
	return t.UTC(), nil
}
