package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
)

var goCmd = &cobra.Command{
	Use:   "go <page>",
	Short: "Jump to a page (1-based)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("page must be a number, got %q", args[0])
		}
		return navigate(cmd, func(a *app.App) {
			a.Router().Go(cmd.Context(), n-1)
		})
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Move to the next page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return navigate(cmd, func(a *app.App) {
			a.Router().Next(cmd.Context())
		})
	},
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Move to the previous page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return navigate(cmd, func(a *app.App) {
			a.Router().Prev(cmd.Context())
		})
	},
}

// navigate runs a page move and prints where the learner ended up.
func navigate(cmd *cobra.Command, move func(a *app.App)) error {
	return withApp(cmd, func(a *app.App) error {
		move(a)
		i := a.Router().Current()
		p, _ := a.Manifest().Page(i)
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d: %s\n", i+1, a.Manifest().Len(), p.Title)
		return nil
	})
}
