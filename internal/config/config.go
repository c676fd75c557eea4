// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/reflectquest/internal/host"
	"github.com/abhisek/reflectquest/internal/store"
)

// FreshParam is the launch-URL query flag that discards saved progress.
const FreshParam = "fresh"

// Config holds everything a quest run needs besides the manifest contents.
type Config struct {
	DB            string `env:"QUEST_DB"`
	BuildID       string `env:"QUEST_BUILD_ID"       envDefault:"dev"`
	SchemaVersion int    `env:"QUEST_SCHEMA_VERSION" envDefault:"3"`
	StorageKey    string `env:"QUEST_STORAGE_KEY"    envDefault:"reflectquest.progress"`
	Fresh         bool   `env:"QUEST_FRESH"`
	LaunchURL     string `env:"QUEST_LAUNCH_URL"`

	// HostScript is a JavaScript file that defines the frame tree the
	// course runs in. SimulateLMS, when HostScript is empty, selects the
	// built-in simulated LMS by dialect name.
	HostScript  string `env:"QUEST_HOST_SCRIPT"`
	SimulateLMS string `env:"QUEST_SIMULATE_LMS"`
	FrameDepth  int    `env:"QUEST_FRAME_DEPTH" envDefault:"10"`

	Manifest string `env:"QUEST_MANIFEST"`
}

// DefaultConfig returns the settings used when the environment is empty.
func DefaultConfig() Config {
	return Config{
		BuildID:       "dev",
		SchemaVersion: 3,
		StorageKey:    store.DefaultKey,
		FrameDepth:    host.DefaultMaxDepth,
	}
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates a Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.SchemaVersion < 1 {
		return fmt.Errorf("schema version must be positive, got %d", c.SchemaVersion)
	}
	if c.FrameDepth < 1 {
		return fmt.Errorf("frame depth must be positive, got %d", c.FrameDepth)
	}
	if c.BuildID == "" {
		return fmt.Errorf("build id is required")
	}
	if c.SimulateLMS != "" && host.DialectByName(c.SimulateLMS) == nil {
		return fmt.Errorf("unknown lms dialect %q (want legacy or current)", c.SimulateLMS)
	}
	return nil
}

// ForceFresh reports whether saved progress must be ignored, either because
// QUEST_FRESH is set or because the launch URL carries the fresh flag.
func (c Config) ForceFresh() bool {
	return c.Fresh || ForceFreshFromURL(c.LaunchURL)
}

// ForceFreshFromURL reports whether rawURL carries the fresh query flag.
// Any value counts, including none. Unparseable URLs never force a fresh
// start.
func ForceFreshFromURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := u.Query()[FreshParam]
	return ok
}
