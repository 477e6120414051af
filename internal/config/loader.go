package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the workspace root.
const FileName = ".refscope"

// EnvPrefix prefixes environment overrides, e.g. REFSCOPE_LIMITS_MAX_OVERRIDES.
const EnvPrefix = "REFSCOPE"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that looks for .refscope.yaml in rootDir.
// A non-empty configFile is read instead of searching.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{rootDir: rootDir, configFile: configFile}
}

func (l *loader) Load() (*Config, error) {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load(filepath.Join(l.rootDir, ".env"))

	v := viper.New()
	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("confidence.exact_primary", d.Confidence.ExactPrimary)
	v.SetDefault("confidence.exact_secondary", d.Confidence.ExactSecondary)
	v.SetDefault("confidence.exact_ambiguous", d.Confidence.ExactAmbiguous)
	v.SetDefault("confidence.library", d.Confidence.Library)
	v.SetDefault("confidence.case_insensitive", d.Confidence.CaseInsensitive)
	v.SetDefault("confidence.partial", d.Confidence.Partial)
	v.SetDefault("confidence.fallback", d.Confidence.Fallback)

	v.SetDefault("position.direct", d.Position.Direct)
	v.SetDefault("position.enclosing", d.Position.Enclosing)
	v.SetDefault("position.window_decay", d.Position.WindowDecay)
	v.SetDefault("position.nearest_declaration", d.Position.NearestDeclaration)
	v.SetDefault("position.near_window", d.Position.NearWindow)
	v.SetDefault("position.wide_window", d.Position.WideWindow)

	v.SetDefault("limits.max_overrides", d.Limits.MaxOverrides)
	v.SetDefault("limits.max_implementations", d.Limits.MaxImplementations)
	v.SetDefault("limits.max_inheritors", d.Limits.MaxInheritors)
	v.SetDefault("limits.max_instantiations", d.Limits.MaxInstantiations)
	v.SetDefault("limits.max_occurrences", d.Limits.MaxOccurrences)

	v.SetDefault("conventions.test_paths", d.Conventions.TestPaths)
	v.SetDefault("conventions.test_markers", d.Conventions.TestMarkers)
	v.SetDefault("conventions.library_paths", d.Conventions.LibraryPaths)

	v.SetDefault("insights.test_coverage_ratio", d.Insights.TestCoverageRatio)
	v.SetDefault("insights.min_refs_for_coverage", d.Insights.MinRefsForCoverage)
	v.SetDefault("insights.coupling_min_refs", d.Insights.CouplingMinRefs)
	v.SetDefault("insights.coupling_share", d.Insights.CouplingShare)

	v.SetDefault("workspace.languages", d.Workspace.Languages)
	v.SetDefault("workspace.max_file_size", d.Workspace.MaxFileSize)
	v.SetDefault("workspace.cache_size", d.Workspace.CacheSize)
	v.SetDefault("workspace.exclude", d.Workspace.Exclude)
	v.SetDefault("workspace.workers", d.Workspace.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// LoadFromDir loads configuration for the workspace rooted at rootDir.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, "").Load()
}

// LoadFromWorkingDir loads configuration for the current directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromDir(wd)
}
