// Package classify annotates raw occurrences of a symbol with their usage
// type and surrounding context.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/testpath"
)

// contextLines is how many lines of context surround an occurrence.
const contextLines = 2

// Structure is the part of the host the classifier needs.
type Structure interface {
	host.Adapter
	host.Hierarchy
}

// Classifier turns occurrences into ClassifiedReferences.
type Classifier struct {
	host   Structure
	tests  *testpath.Matcher
	logger *slog.Logger
}

// New creates a Classifier.
func New(h Structure, tests *testpath.Matcher, logger *slog.Logger) *Classifier {
	return &Classifier{host: h, tests: tests, logger: logger}
}

// Classify annotates one occurrence of target. Host failures degrade the
// record (missing context, fallback usage type) rather than failing it.
func (c *Classifier) Classify(ctx context.Context, target *model.Symbol, occ model.Occurrence) model.ClassifiedReference {
	loc := occ.Location

	site, err := c.host.Site(ctx, loc)
	if err != nil || site == nil {
		c.logger.Debug("structural facts unavailable", "file", loc.File, "offset", loc.Start, "error", err)
		site = &host.Site{}
	}

	facts := Facts{
		InTest:         c.tests.InTestCode(loc.File, site.Callable),
		InTestCallable: c.tests.IsTestCallable(site.Callable),
	}
	if occ.Fixed == "" {
		facts.Overrides = c.overrides(ctx, target, site)
	}

	usage := occ.Fixed
	switch {
	case loc.SameSite(target.Location):
		usage = model.UsageDeclaration
	case usage == "":
		usage = UsageOf(target, site, facts)
	}

	ref := model.ClassifiedReference{
		FilePath:           loc.File,
		StartOffset:        loc.Start,
		EndOffset:          loc.End,
		LineNumber:         loc.Line,
		UsageType:          usage,
		ElementText:        site.Text,
		IsInTestCode:       facts.InTest,
		IsInComment:        site.InComment(),
		IsInDeprecatedCode: site.Deprecated(),
		AccessModifier:     site.AccessModifier(),
		DataFlowContext:    DataFlowOf(site),
	}
	if ref.ElementText == "" {
		ref.ElementText = target.Name
	}
	if site.Callable != nil {
		ref.ContainingMethod = site.Callable.Name
	}
	if site.Owner != nil {
		ref.ContainingClass = site.Owner.Name
	}
	if line, ok := c.host.LineText(ctx, loc.File, loc.Line); ok {
		ref.Preview = strings.TrimSpace(line)
	}
	ref.SurroundingContext = c.surrounding(ctx, loc.File, loc.Line)
	return ref
}

// overrides reports whether the occurrence declares a callable that
// overrides target from a strict subtype of target's owner.
func (c *Classifier) overrides(ctx context.Context, target *model.Symbol, site *host.Site) bool {
	d := site.Declared
	if d == nil || !target.Kind.IsCallable() || !d.Kind.IsCallable() {
		return false
	}
	if d.Kind == model.Constructor || target.Kind == model.Constructor {
		return false
	}
	if d.Name != target.Name || len(d.Parameters) != len(target.Parameters) {
		return false
	}
	if d.Container == "" || target.Container == "" {
		return false
	}
	ok, err := c.host.IsStrictSubtype(ctx, d.Container, target.Container)
	if err != nil {
		c.logger.Warn("host query failed", "op", "is strict subtype", "sub", d.Container, "super", target.Container, "error", err)
		return false
	}
	return ok
}

// surrounding renders the occurrence line with two lines either side. The
// occurrence line is marked with '>'.
func (c *Classifier) surrounding(ctx context.Context, file string, line int) string {
	if line < 1 {
		return ""
	}
	var b strings.Builder
	for n := max(line-contextLines, 1); n <= line+contextLines; n++ {
		text, ok := c.host.LineText(ctx, file, n)
		if !ok {
			if n > line {
				break
			}
			continue
		}
		marker := " "
		if n == line {
			marker = ">"
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %4d | %s", marker, n, text)
	}
	return b.String()
}
