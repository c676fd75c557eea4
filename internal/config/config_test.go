package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.BuildID, cfg.BuildID)
	assert.Equal(t, want.SchemaVersion, cfg.SchemaVersion)
	assert.Equal(t, want.StorageKey, cfg.StorageKey)
	assert.Equal(t, want.FrameDepth, cfg.FrameDepth)
	assert.False(t, cfg.ForceFresh())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUEST_BUILD_ID", "2024.06.1")
	t.Setenv("QUEST_SCHEMA_VERSION", "7")
	t.Setenv("QUEST_FRAME_DEPTH", "3")
	t.Setenv("QUEST_SIMULATE_LMS", "legacy")
	t.Setenv("QUEST_FRESH", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2024.06.1", cfg.BuildID)
	assert.Equal(t, 7, cfg.SchemaVersion)
	assert.Equal(t, 3, cfg.FrameDepth)
	assert.Equal(t, "legacy", cfg.SimulateLMS)
	assert.True(t, cfg.ForceFresh())
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("QUEST_SCHEMA_VERSION", "three")

	var cfg Config
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero version", func(c *Config) { c.SchemaVersion = 0 }, "schema version"},
		{"zero depth", func(c *Config) { c.FrameDepth = 0 }, "frame depth"},
		{"empty build", func(c *Config) { c.BuildID = "" }, "build id"},
		{"bad dialect", func(c *Config) { c.SimulateLMS = "tincan" }, "unknown lms dialect"},
		{"current dialect", func(c *Config) { c.SimulateLMS = "current" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForceFreshFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"https://lms.example.com/course/index.html", false},
		{"https://lms.example.com/course/index.html?fresh", true},
		{"https://lms.example.com/course/index.html?fresh=0", true},
		{"https://lms.example.com/course/index.html?lang=en&fresh=1#/page/3", true},
		{"https://lms.example.com/course/index.html?refresh=1", false},
		{"?fresh", true},
		{"://bad url?fresh", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForceFreshFromURL(tt.url), tt.url)
	}

	cfg := DefaultConfig()
	cfg.LaunchURL = "index.html?fresh"
	assert.True(t, cfg.ForceFresh())
}
