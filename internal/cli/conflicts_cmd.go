package cli

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/spf13/cobra"
)

func newConflictsCmd(app *App) *cobra.Command {
	var (
		userID     string
		department string
		from       *instantFlag
		to         *instantFlag
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List overlapping and out-of-order step windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := contract.ConflictFilter{
				UserID:     userID,
				Department: department,
				Start:      from.t,
				End:        to.t,
			}

			conflicts, err := app.Scheduler.DetectConflicts(cmd.Context(), filter)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatConflicts(conflicts, app.location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Only this user")
	cmd.Flags().StringVar(&department, "department", "", "Only users in this department")
	from = addInstantFlag(cmd.Flags(), "from", "Range start", app.location())
	to = addInstantFlag(cmd.Flags(), "to", "Range end", app.location())

	return cmd
}
