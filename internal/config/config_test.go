package config

// Test Plan for Config:
// - Default() passes validation
// - Load() without a config file returns defaults
// - Load() reads .refscope.yaml and keeps defaults for unset keys
// - REFSCOPE_* environment variables override file values
// - an explicit config file path is honoured
// - Validate() rejects out-of-range and out-of-order confidence constants
// - Validate() rejects non-positive limits, unknown languages and bad globs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(Default()))
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Confidence, cfg.Confidence)
	assert.Equal(t, d.Position, cfg.Position)
	assert.Equal(t, d.Limits, cfg.Limits)
	assert.Equal(t, []string{"java", "python"}, cfg.Workspace.Languages)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := `
limits:
  max_overrides: 5
confidence:
  partial: 0.25
workspace:
  languages: [java]
  exclude: ["build/**"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".refscope.yaml"), []byte(content), 0o644))

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Limits.MaxOverrides)
	assert.Equal(t, 20, cfg.Limits.MaxInheritors)
	assert.InDelta(t, 0.25, cfg.Confidence.Partial, 1e-9)
	assert.InDelta(t, 1.0, cfg.Confidence.ExactPrimary, 1e-9)
	assert.Equal(t, []string{"java"}, cfg.Workspace.Languages)
	assert.Equal(t, []string{"build/**"}, cfg.Workspace.Exclude)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".refscope.yaml"), []byte("limits:\n  max_inheritors: 7\n"), 0o644))
	t.Setenv("REFSCOPE_LIMITS_MAX_INHERITORS", "3")
	t.Setenv("REFSCOPE_LOGGING_LEVEL", "debug")

	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Limits.MaxInheritors)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: json\n"), 0o644))

	cfg, err := NewLoader(t.TempDir(), path).Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".refscope.yaml"), []byte("limits:\n  max_overrides: 0\n"), 0o644))

	_, err := LoadFromDir(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"confidence above one", func(c *Config) { c.Confidence.ExactPrimary = 1.5 }, ErrInvalidConfidence},
		{"negative confidence", func(c *Config) { c.Position.Enclosing = -0.1 }, ErrInvalidConfidence},
		{"partial above case-insensitive", func(c *Config) { c.Confidence.Partial = 0.8 }, ErrConfidenceOrder},
		{"window decay of one", func(c *Config) { c.Position.WindowDecay = 1 }, ErrConfidenceOrder},
		{"wide smaller than near", func(c *Config) { c.Position.WideWindow = 2 }, ErrInvalidWindow},
		{"zero cap", func(c *Config) { c.Limits.MaxOccurrences = 0 }, ErrInvalidLimit},
		{"coverage ratio", func(c *Config) { c.Insights.TestCoverageRatio = 2 }, ErrInvalidThreshold},
		{"unknown language", func(c *Config) { c.Workspace.Languages = []string{"cobol"} }, ErrInvalidLanguage},
		{"no languages", func(c *Config) { c.Workspace.Languages = nil }, ErrInvalidLanguage},
		{"bad test glob", func(c *Config) { c.Conventions.TestPaths = []string{"[oops"} }, ErrInvalidPattern},
		{"bad exclude glob", func(c *Config) { c.Workspace.Exclude = []string{"[oops"} }, ErrInvalidPattern},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogging},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m, err := Default().Matcher()
	require.NoError(t, err)
	assert.True(t, m.IsTestPath("src/test/java/FooTest.java"))
}
