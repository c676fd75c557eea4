package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Walk the quest in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay opens the quest and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	return withApp(cmd, app.Run)
}
