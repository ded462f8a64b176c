package cli

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newLoadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.yaml|file.json>",
		Short: "Import users, programs, constraints, and assignments from a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Loader.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatLoadResult(res))
			return nil
		},
	}
}
