// Package config loads refscope configuration.
package config

import (
	"github.com/phobologic/refscope/internal/testpath"
)

// Config represents the complete refscope configuration.
// It can be loaded from .refscope.yaml with environment variable overrides.
type Config struct {
	Confidence  ConfidenceConfig  `yaml:"confidence" mapstructure:"confidence"`
	Position    PositionConfig    `yaml:"position" mapstructure:"position"`
	Limits      LimitsConfig      `yaml:"limits" mapstructure:"limits"`
	Conventions ConventionsConfig `yaml:"conventions" mapstructure:"conventions"`
	Insights    InsightsConfig    `yaml:"insights" mapstructure:"insights"`
	Workspace   WorkspaceConfig   `yaml:"workspace" mapstructure:"workspace"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ConfidenceConfig holds the by-name scoring table.
type ConfidenceConfig struct {
	ExactPrimary    float64 `yaml:"exact_primary" mapstructure:"exact_primary"`       // exact name, expected kind
	ExactSecondary  float64 `yaml:"exact_secondary" mapstructure:"exact_secondary"`   // exact name, plausible secondary kind
	ExactAmbiguous  float64 `yaml:"exact_ambiguous" mapstructure:"exact_ambiguous"`   // exact name, any other kind
	Library         float64 `yaml:"library" mapstructure:"library"`                   // exact name in dependency code
	CaseInsensitive float64 `yaml:"case_insensitive" mapstructure:"case_insensitive"` // matches ignoring case only
	Partial         float64 `yaml:"partial" mapstructure:"partial"`                   // substring match only
	Fallback        float64 `yaml:"fallback" mapstructure:"fallback"`                 // cannot evaluate
}

// PositionConfig holds the by-position tiers.
type PositionConfig struct {
	Direct             float64 `yaml:"direct" mapstructure:"direct"`
	Enclosing          float64 `yaml:"enclosing" mapstructure:"enclosing"`
	WindowDecay        float64 `yaml:"window_decay" mapstructure:"window_decay"`
	NearestDeclaration float64 `yaml:"nearest_declaration" mapstructure:"nearest_declaration"`
	NearWindow         int     `yaml:"near_window" mapstructure:"near_window"`
	WideWindow         int     `yaml:"wide_window" mapstructure:"wide_window"`
}

// LimitsConfig caps host enumerations per request.
type LimitsConfig struct {
	MaxOverrides       int `yaml:"max_overrides" mapstructure:"max_overrides"`
	MaxImplementations int `yaml:"max_implementations" mapstructure:"max_implementations"`
	MaxInheritors      int `yaml:"max_inheritors" mapstructure:"max_inheritors"`
	MaxInstantiations  int `yaml:"max_instantiations" mapstructure:"max_instantiations"`
	MaxOccurrences     int `yaml:"max_occurrences" mapstructure:"max_occurrences"`
}

// ConventionsConfig defines what counts as test and library code.
type ConventionsConfig struct {
	TestPaths    []string `yaml:"test_paths" mapstructure:"test_paths"`       // globs, '/' separated
	TestMarkers  []string `yaml:"test_markers" mapstructure:"test_markers"`   // annotation / decorator names
	LibraryPaths []string `yaml:"library_paths" mapstructure:"library_paths"` // globs, '/' separated
}

// InsightsConfig holds insight thresholds.
type InsightsConfig struct {
	TestCoverageRatio  float64 `yaml:"test_coverage_ratio" mapstructure:"test_coverage_ratio"`
	MinRefsForCoverage int     `yaml:"min_refs_for_coverage" mapstructure:"min_refs_for_coverage"`
	CouplingMinRefs    int     `yaml:"coupling_min_refs" mapstructure:"coupling_min_refs"`
	CouplingShare      float64 `yaml:"coupling_share" mapstructure:"coupling_share"`
}

// WorkspaceConfig controls the tree-sitter host.
type WorkspaceConfig struct {
	Languages   []string `yaml:"languages" mapstructure:"languages"`
	MaxFileSize int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes; larger files are skipped
	CacheSize   int      `yaml:"cache_size" mapstructure:"cache_size"`       // parsed trees kept in memory
	Exclude     []string `yaml:"exclude" mapstructure:"exclude"`             // globs, '/' separated
	Workers     int      `yaml:"workers" mapstructure:"workers"`             // 0 means NumCPU
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with the built-in values.
func Default() *Config {
	return &Config{
		Confidence: ConfidenceConfig{
			ExactPrimary:    1.0,
			ExactSecondary:  0.95,
			ExactAmbiguous:  0.9,
			Library:         0.5,
			CaseInsensitive: 0.7,
			Partial:         0.3,
			Fallback:        0.1,
		},
		Position: PositionConfig{
			Direct:             1.0,
			Enclosing:          0.9,
			WindowDecay:        0.8,
			NearestDeclaration: 0.6,
			NearWindow:         5,
			WideWindow:         20,
		},
		Limits: LimitsConfig{
			MaxOverrides:       20,
			MaxImplementations: 20,
			MaxInheritors:      20,
			MaxInstantiations:  100,
			MaxOccurrences:     1000,
		},
		Conventions: ConventionsConfig{
			TestPaths:    append([]string(nil), testpath.DefaultTestPatterns...),
			TestMarkers:  append([]string(nil), testpath.DefaultTestMarkers...),
			LibraryPaths: append([]string(nil), testpath.DefaultLibraryPatterns...),
		},
		Insights: InsightsConfig{
			TestCoverageRatio:  0.2,
			MinRefsForCoverage: 5,
			CouplingMinRefs:    10,
			CouplingShare:      0.5,
		},
		Workspace: WorkspaceConfig{
			Languages:   []string{"java", "python"},
			MaxFileSize: 1 << 20,
			CacheSize:   256,
			Exclude:     []string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Matcher compiles the test and library conventions.
func (c *Config) Matcher() (*testpath.Matcher, error) {
	return testpath.New(c.Conventions.TestPaths, c.Conventions.LibraryPaths, c.Conventions.TestMarkers)
}
