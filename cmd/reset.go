package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard saved progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			a.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset")
			return nil
		})
	},
}
