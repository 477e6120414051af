package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/phobologic/refscope/internal/testpath"
)

var (
	// ErrInvalidConfidence indicates a confidence constant outside [0, 1].
	ErrInvalidConfidence = errors.New("invalid confidence")

	// ErrConfidenceOrder indicates the scoring table is not ordered.
	ErrConfidenceOrder = errors.New("confidence constants out of order")

	// ErrInvalidWindow indicates bad position window sizes.
	ErrInvalidWindow = errors.New("invalid position window")

	// ErrInvalidLimit indicates a non-positive cap.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidThreshold indicates an insight threshold out of range.
	ErrInvalidThreshold = errors.New("invalid insight threshold")

	// ErrInvalidLanguage indicates an unsupported workspace language.
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidPattern indicates a glob that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidLogging indicates an unknown log format.
	ErrInvalidLogging = errors.New("invalid logging settings")
)

// SupportedLanguages lists the languages the workspace host can parse.
var SupportedLanguages = []string{"java", "python"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateConfidence(&cfg.Confidence, &cfg.Position); err != nil {
		errs = append(errs, err)
	}
	if err := validateLimits(&cfg.Limits); err != nil {
		errs = append(errs, err)
	}
	if err := validateInsights(&cfg.Insights); err != nil {
		errs = append(errs, err)
	}
	if err := validateWorkspace(&cfg.Workspace); err != nil {
		errs = append(errs, err)
	}
	if _, err := testpath.New(cfg.Conventions.TestPaths, cfg.Conventions.LibraryPaths, cfg.Conventions.TestMarkers); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateConfidence(c *ConfidenceConfig, p *PositionConfig) error {
	values := []struct {
		name string
		v    float64
	}{
		{"confidence.exact_primary", c.ExactPrimary},
		{"confidence.exact_secondary", c.ExactSecondary},
		{"confidence.exact_ambiguous", c.ExactAmbiguous},
		{"confidence.library", c.Library},
		{"confidence.case_insensitive", c.CaseInsensitive},
		{"confidence.partial", c.Partial},
		{"confidence.fallback", c.Fallback},
		{"position.direct", p.Direct},
		{"position.enclosing", p.Enclosing},
		{"position.window_decay", p.WindowDecay},
		{"position.nearest_declaration", p.NearestDeclaration},
	}
	for _, v := range values {
		if v.v < 0 || v.v > 1 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidConfidence, v.name, v.v)
		}
	}

	// Exact matches outrank fuzzy ones and fuzzy ones outrank the fallback.
	if !(c.ExactPrimary >= c.ExactSecondary && c.ExactSecondary >= c.ExactAmbiguous &&
		c.ExactAmbiguous >= c.CaseInsensitive && c.CaseInsensitive >= c.Partial &&
		c.Library >= c.Partial && c.Partial >= c.Fallback) {
		return ErrConfidenceOrder
	}
	if !(p.Direct >= p.Enclosing && p.Enclosing >= p.NearestDeclaration && p.WindowDecay < 1) {
		return fmt.Errorf("%w: position tiers", ErrConfidenceOrder)
	}

	if p.NearWindow < 0 || p.WideWindow < p.NearWindow {
		return fmt.Errorf("%w: near=%d wide=%d", ErrInvalidWindow, p.NearWindow, p.WideWindow)
	}
	return nil
}

func validateLimits(l *LimitsConfig) error {
	limits := map[string]int{
		"max_overrides":       l.MaxOverrides,
		"max_implementations": l.MaxImplementations,
		"max_inheritors":      l.MaxInheritors,
		"max_instantiations":  l.MaxInstantiations,
		"max_occurrences":     l.MaxOccurrences,
	}
	var bad []string
	for name, v := range limits {
		if v <= 0 {
			bad = append(bad, name)
		}
	}
	sort.Strings(bad)
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidLimit, strings.Join(bad, ", "))
	}
	return nil
}

func validateInsights(i *InsightsConfig) error {
	if i.TestCoverageRatio < 0 || i.TestCoverageRatio > 1 {
		return fmt.Errorf("%w: test_coverage_ratio = %v", ErrInvalidThreshold, i.TestCoverageRatio)
	}
	if i.CouplingShare < 0 || i.CouplingShare > 1 {
		return fmt.Errorf("%w: coupling_share = %v", ErrInvalidThreshold, i.CouplingShare)
	}
	if i.MinRefsForCoverage < 0 || i.CouplingMinRefs < 0 {
		return fmt.Errorf("%w: reference minimums must not be negative", ErrInvalidThreshold)
	}
	return nil
}

func validateWorkspace(w *WorkspaceConfig) error {
	if len(w.Languages) == 0 {
		return fmt.Errorf("%w: at least one language is required", ErrInvalidLanguage)
	}
	for _, l := range w.Languages {
		if !contains(SupportedLanguages, l) {
			return fmt.Errorf("%w: %q (supported: %s)", ErrInvalidLanguage, l, strings.Join(SupportedLanguages, ", "))
		}
	}
	if w.MaxFileSize < 0 || w.CacheSize < 0 || w.Workers < 0 {
		return fmt.Errorf("%w: workspace sizes must not be negative", ErrInvalidLimit)
	}
	if _, err := testpath.New(w.Exclude, nil, nil); err != nil {
		return fmt.Errorf("%w: workspace.exclude: %v", ErrInvalidPattern, err)
	}
	return nil
}

func validateLogging(l *LoggingConfig) error {
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidLogging, l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error", "off", "none", "quiet":
	default:
		return fmt.Errorf("%w: level %q", ErrInvalidLogging, l.Level)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
