package cmd

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/reflectquest/internal/config"
	"github.com/abhisek/reflectquest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Team reflection quest",
	Long:  "quest walks a learner through a reflection course and keeps their progress in the LMS and on disk.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		slog.SetDefault(newLogger(verbose))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides QUEST_DB env var)")
	flags.String("host", "", "JavaScript file defining the LMS frame tree (overrides QUEST_HOST_SCRIPT)")
	flags.String("simulate-lms", "", "Run inside a built-in simulated LMS: legacy or current")
	flags.String("url", "", "Launch URL; a fresh query flag discards saved progress")
	flags.Bool("fresh", false, "Ignore saved progress for this run")
	flags.String("manifest", "", "Course manifest YAML (defaults to the bundled course)")
	flags.BoolP("verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(goCmd, nextCmd, prevCmd)
	rootCmd.AddCommand(noteCmd, toggleCmd, finishCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the stderr logger. Every record carries the run id so
// lines from one invocation can be grouped.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", uuid.NewString())
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("host"); v != "" {
		cfg.HostScript = v
	}
	if v, _ := flags.GetString("simulate-lms"); v != "" {
		cfg.SimulateLMS = v
	}
	if v, _ := flags.GetString("url"); v != "" {
		cfg.LaunchURL = v
	}
	if v, _ := flags.GetString("manifest"); v != "" {
		cfg.Manifest = v
	}
	if flags.Changed("fresh") {
		cfg.Fresh, _ = flags.GetBool("fresh")
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
