package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the saved progress snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			raw, err := a.Export()
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, raw, "", "  "); err != nil {
				return fmt.Errorf("format snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.String())
			return nil
		})
	},
}
