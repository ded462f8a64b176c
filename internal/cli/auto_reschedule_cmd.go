package cli

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/spf13/cobra"
)

func newAutoRescheduleCmd(app *App) *cobra.Command {
	var (
		days         int
		assignmentID string
		userID       string
		department   string
		force        bool
		now          *instantFlag
	)

	cmd := &cobra.Command{
		Use:     "auto-reschedule",
		Aliases: []string{"auto_reschedule"},
		Short:   "Re-plan assignments that are unscheduled, conflicting, or newly unblocked",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.NewRescheduleRequest()
			req.Days = days
			req.AssignmentID = assignmentID
			req.UserID = userID
			req.Department = department
			req.Force = force

			at := now.or(app.now())
			req.Now = &at

			stats, err := app.Reschedule.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRescheduleStats(stats, app.location()))

			for _, w := range stats.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "  WARNING: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", app.lookaheadDays(), "Analysis window in days")
	cmd.Flags().StringVar(&assignmentID, "assignment", "", "Only this assignment")
	cmd.Flags().StringVar(&userID, "user", "", "Only this user's active assignments")
	cmd.Flags().StringVar(&department, "department", "", "Only active assignments of users in this department")
	cmd.Flags().BoolVar(&force, "force", false, "Re-plan every selected assignment")
	now = addInstantFlag(cmd.Flags(), "now", "Reference time", app.location())

	return cmd
}
