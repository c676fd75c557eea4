package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
	"github.com/abhisek/reflectquest/internal/ui/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress and the page map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			printStatus(cmd.OutOrStdout(), a)
			return nil
		})
	},
}

func printStatus(w io.Writer, a *app.App) {
	sum := a.Summary()

	host := "none (local only)"
	if a.Session().Active() {
		host = a.Session().Dialect().Name()
	}

	lipgloss.Fprintln(w, theme.Title.Render(a.Manifest().Title))
	lipgloss.Fprintf(w, "Page %d of %d   Overall %d%%   Activities %d/%d   LMS %s\n",
		sum.Page+1, sum.TotalPages, int(sum.Overall*100),
		sum.Activities.Done, sum.Activities.Total, host)
	if sum.Finished {
		lipgloss.Fprintln(w, theme.Done.Render("Finished"))
	}
	lipgloss.Fprintln(w)

	for _, p := range a.Pages() {
		marker := " "
		switch {
		case p.Current:
			marker = ">"
		case p.Visited:
			marker = "*"
		}
		flags := ""
		if p.Completed {
			flags += " [done]"
		}
		if p.HasNote {
			flags += " [note]"
		}
		item := ""
		if p.Page.ItemID != "" {
			item = " (" + p.Page.ItemID + ")"
		}
		line := fmt.Sprintf("%s %2d  %s%s", marker, p.Index+1, p.Page.Title, item)
		lipgloss.Fprintln(w, lipgloss.NewStyle().Foreground(theme.AccentColor(p.Accent)).Render(line)+flags)
	}
}
