// Package testpath decides whether code is test code or dependency code from
// path conventions and declaration markers.
package testpath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/phobologic/refscope/internal/model"
)

// DefaultTestPatterns match Maven/Gradle and pytest layouts.
var DefaultTestPatterns = []string{
	"src/test/**",
	"**/src/test/**",
	"test/**",
	"**/test/**",
	"tests/**",
	"**/tests/**",
	"**Test.java",
	"**Tests.java",
	"**IT.java",
	"test_*.py",
	"**/test_*.py",
	"**_test.py",
	"**conftest.py",
}

// DefaultLibraryPatterns match vendored and virtualenv dependency trees.
var DefaultLibraryPatterns = []string{
	"**/site-packages/**",
	"**/dist-packages/**",
	"lib/**",
	"**/vendor/**",
	"vendor/**",
}

// DefaultTestMarkers are annotation and decorator names that mark test callables.
var DefaultTestMarkers = []string{
	"Test",
	"ParameterizedTest",
	"RepeatedTest",
	"TestFactory",
	"TestTemplate",
	"pytest.mark.parametrize",
}

// Matcher applies compiled test and library conventions.
type Matcher struct {
	tests   []glob.Glob
	library []glob.Glob
	markers []string
}

// New compiles the given patterns. Patterns use '/' as the separator.
func New(testPatterns, libraryPatterns, markers []string) (*Matcher, error) {
	tests, err := compile(testPatterns)
	if err != nil {
		return nil, fmt.Errorf("test patterns: %w", err)
	}
	library, err := compile(libraryPatterns)
	if err != nil {
		return nil, fmt.Errorf("library patterns: %w", err)
	}
	return &Matcher{tests: tests, library: library, markers: markers}, nil
}

// Default returns a Matcher with the default conventions.
func Default() *Matcher {
	m, err := New(DefaultTestPatterns, DefaultLibraryPatterns, DefaultTestMarkers)
	if err != nil {
		panic(err)
	}
	return m
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	path = filepath.ToSlash(path)
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// IsTestPath reports whether a repo-relative path follows a test-source convention.
func (m *Matcher) IsTestPath(path string) bool {
	return matchAny(m.tests, path)
}

// IsLibraryPath reports whether a repo-relative path is dependency code.
func (m *Matcher) IsLibraryPath(path string) bool {
	return matchAny(m.library, path)
}

// IsTestCallable reports whether a callable carries a test marker or a
// test-prefixed name.
func (m *Matcher) IsTestCallable(sym *model.Symbol) bool {
	if sym == nil {
		return false
	}
	for _, marker := range m.markers {
		if sym.HasMarker(marker) {
			return true
		}
	}
	return strings.HasPrefix(sym.Name, "test")
}

// InTestCode combines the path convention with the enclosing callable's markers.
func (m *Matcher) InTestCode(path string, callable *model.Symbol) bool {
	return m.IsTestPath(path) || m.IsTestCallable(callable)
}

// IsTestSymbol reports whether a declaration lives in test code.
func (m *Matcher) IsTestSymbol(sym *model.Symbol) bool {
	if sym == nil {
		return false
	}
	if m.IsTestPath(sym.Location.File) {
		return true
	}
	return sym.Kind.IsCallable() && m.IsTestCallable(sym)
}
