package cli

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	var now *instantFlag

	cmd := &cobra.Command{
		Use:   "plan <assignment-id>",
		Short: "Plan one assignment and print its step windows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := now.or(app.now())

			res, err := app.Scheduler.PlanAssignmentAt(cmd.Context(), args[0], at)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanResult(res, app.location(), at))
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "  WARNING: %s\n", w)
			}
			return nil
		},
	}

	now = addInstantFlag(cmd.Flags(), "now", "Reference time", app.location())

	return cmd
}
