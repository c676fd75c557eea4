package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/app"
	"github.com/abhisek/reflectquest/internal/manifest"
	"github.com/abhisek/reflectquest/internal/store"
)

// withApp opens the store and the quest, runs fn, then ends the host
// session and closes the store.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m := manifest.Default()
	if cfg.Manifest != "" {
		if m, err = manifest.Load(cfg.Manifest); err != nil {
			return err
		}
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	a, err := app.Open(cmd.Context(), app.Options{
		Config:   cfg,
		Manifest: m,
		KV:       st,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
