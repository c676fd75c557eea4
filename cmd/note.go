package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
	"github.com/abhisek/reflectquest/internal/store"
)

var noteCmd = &cobra.Command{
	Use:   "note <item> <text>...",
	Short: "Save a reflection for an item",
	Long: `Save a reflection for an item. The text is stored as a plain note unless
--json is given, in which case it must be a JSON value such as
{"bullets":["one","two"]}.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		itemID, text := args[0], strings.Join(args[1:], " ")

		value := store.TextNote(text)
		if asJSON {
			if !json.Valid([]byte(text)) {
				return fmt.Errorf("note is not valid JSON")
			}
			value = json.RawMessage(text)
		}

		return withApp(cmd, func(a *app.App) error {
			if _, err := a.ItemPage(itemID); err != nil {
				return err
			}
			a.Quest().SetNote(cmd.Context(), itemID, value)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved note for %s\n", itemID)
			return nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <item>",
	Short: "Flip the done flag of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID := args[0]
		return withApp(cmd, func(a *app.App) error {
			if _, err := a.ItemPage(itemID); err != nil {
				return err
			}
			a.Quest().ToggleComplete(cmd.Context(), itemID)
			state := "not done"
			if a.Quest().Snapshot().IsCompleted(itemID) {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", itemID, state)
			return nil
		})
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Mark the quest finished",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			a.Quest().Finish(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Quest finished")
			return nil
		})
	},
}

func init() {
	noteCmd.Flags().Bool("json", false, "Treat the note text as a JSON value")
}
