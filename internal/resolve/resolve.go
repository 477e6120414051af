// Package resolve finds the declarations a name or source position refers to
// and scores them by confidence.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/refscope/internal/config"
	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/ranking"
	"github.com/phobologic/refscope/internal/testpath"
)

// Category is a symbol category searched by name.
type Category int

const (
	NoCategory Category = iota
	Types
	Callables
	Fields
)

func (c Category) String() string {
	switch c {
	case Types:
		return "types"
	case Callables:
		return "callables"
	case Fields:
		return "fields"
	}
	return "none"
}

// CategoryOf returns the category a kind is searched under.
func CategoryOf(k model.SymbolKind) Category {
	switch {
	case k.IsType():
		return Types
	case k.IsCallable():
		return Callables
	case k.IsFieldLike():
		return Fields
	}
	return NoCategory
}

// Resolver turns names and positions into ranked definition candidates.
type Resolver struct {
	host       host.Host
	confidence config.ConfidenceConfig
	position   config.PositionConfig
	tests      *testpath.Matcher
	logger     *slog.Logger
}

// New creates a Resolver over h.
func New(h host.Host, cfg *config.Config, tests *testpath.Matcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		host:       h,
		confidence: cfg.Confidence,
		position:   cfg.Position,
		tests:      tests,
		logger:     logger,
	}
}

// ByPosition resolves the symbol at offset in file. It tries a direct
// reference, then the enclosing declaration, then a window around offset.
// Nothing found, or an offset outside the file, yields an empty list.
func (r *Resolver) ByPosition(ctx context.Context, file string, offset int) []model.DefinitionCandidate {
	if offset < 0 {
		return nil
	}

	sym, err := r.host.Resolve(ctx, file, offset)
	if err != nil {
		r.logQueryError("resolve", err, "file", file, "offset", offset)
		if rerrors.Is(err, rerrors.InvalidInput) {
			return nil
		}
	}
	if sym != nil {
		return r.finish(ctx, []scored{{sym, r.position.Direct}})
	}

	sym, err = r.host.EnclosingDeclaration(ctx, file, offset)
	if err != nil {
		r.logQueryError("enclosing declaration", err, "file", file, "offset", offset)
	}
	if sym != nil {
		return r.finish(ctx, []scored{{sym, r.position.Enclosing}})
	}

	if sym := r.nearReference(ctx, file, offset); sym != nil {
		return r.finish(ctx, []scored{{sym, r.position.WindowDecay * r.position.Direct}})
	}

	if sym := r.nearestDeclaration(ctx, file, offset); sym != nil {
		return r.finish(ctx, []scored{{sym, r.position.NearestDeclaration}})
	}
	return nil
}

// nearReference tries offsets within the near window, closest first.
func (r *Resolver) nearReference(ctx context.Context, file string, offset int) *model.Symbol {
	for d := 1; d <= r.position.NearWindow; d++ {
		for _, at := range []int{offset - d, offset + d} {
			if at < 0 {
				continue
			}
			sym, err := r.host.Resolve(ctx, file, at)
			if err != nil {
				if rerrors.Is(err, rerrors.InvalidInput) {
					continue
				}
				r.logQueryError("resolve", err, "file", file, "offset", at)
				continue
			}
			if sym != nil {
				return sym
			}
		}
	}
	return nil
}

// nearestDeclaration returns the declaration in the wide window whose name
// starts closest to offset. Ties keep the first found.
func (r *Resolver) nearestDeclaration(ctx context.Context, file string, offset int) *model.Symbol {
	start := max(offset-r.position.WideWindow, 0)
	decls, err := r.host.Declarations(ctx, file, start, offset+r.position.WideWindow+1)
	if err != nil {
		r.logQueryError("declarations", err, "file", file, "offset", offset)
		return nil
	}
	var best *model.Symbol
	bestDist := math.MaxInt
	for _, d := range decls {
		dist := abs(d.Location.Start - offset)
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// Query is a by-name lookup.
type Query struct {
	Name string
	// Kind optionally names the expected kind ("class", "method", "field", ...).
	Kind string
}

// ByName resolves a symbol name. "Container.Member" searches members of the
// named container; a plain name searches types, callables and fields.
func (r *Resolver) ByName(ctx context.Context, q Query) []model.DefinitionCandidate {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return nil
	}

	if container, member, ok := strings.Cut(name, "."); ok {
		found := r.qualified(ctx, container, member)
		if len(found) == 0 {
			// Fully qualified containers such as com.example.User.getName.
			if dot := strings.LastIndex(name, "."); dot > len(container) {
				found = r.qualified(ctx, name[:dot], name[dot+1:])
			}
		}
		if len(found) == 0 {
			found = r.packageQualified(ctx, name)
		}
		return r.finish(ctx, found)
	}

	return r.finish(ctx, r.unqualified(ctx, name, q.Kind))
}

type scored struct {
	sym        *model.Symbol
	confidence float64
}

func (r *Resolver) qualified(ctx context.Context, container, member string) []scored {
	if container == "" || member == "" {
		return nil
	}

	types, err := r.host.SearchTypes(ctx, lastSegment(container))
	if err != nil {
		r.logQueryError("search types", err, "name", container)
		return nil
	}

	var out []scored
	for _, t := range types {
		if t.Name != container && t.QualifiedName != container {
			continue
		}
		members, err := r.host.Members(ctx, t.QualifiedName)
		if err != nil {
			r.logQueryError("members", err, "container", t.QualifiedName)
			continue
		}
		for _, m := range members {
			if m.Name == member {
				out = append(out, scored{m, r.confidence.ExactPrimary})
			}
		}
	}
	return out
}

// packageQualified finds types by their full qualified name, such as
// com.example.User or a Python module path.
func (r *Resolver) packageQualified(ctx context.Context, name string) []scored {
	types, err := r.host.SearchTypes(ctx, lastSegment(name))
	if err != nil {
		r.logQueryError("search types", err, "name", name)
		return nil
	}
	var out []scored
	for _, t := range types {
		if t.QualifiedName == name {
			out = append(out, scored{t, r.confidence.ExactPrimary})
		}
	}
	return out
}

type searchFunc func(context.Context, string) ([]*model.Symbol, error)

func (r *Resolver) unqualified(ctx context.Context, name, kind string) []scored {
	primary, secondary := ExpectedCategories(name, kind)

	categories := []struct {
		cat    Category
		search searchFunc
	}{
		{Types, r.host.SearchTypes},
		{Callables, r.host.SearchCallables},
		{Fields, r.host.SearchFields},
	}

	results := make([][]*model.Symbol, len(categories))
	g := new(errgroup.Group)
	for i, c := range categories {
		g.Go(func() error {
			syms, err := c.search(ctx, name)
			if err != nil {
				// A failed category contributes nothing; the others continue.
				r.logQueryError("search "+c.cat.String(), err, "name", name)
				return nil
			}
			results[i] = syms
			return nil
		})
	}
	_ = g.Wait()

	var out []scored
	for i, c := range categories {
		for _, sym := range results[i] {
			out = append(out, scored{sym, r.score(sym, name, c.cat, primary, secondary)})
		}
	}
	return out
}

// score applies the by-name confidence table.
func (r *Resolver) score(sym *model.Symbol, name string, cat, primary, secondary Category) float64 {
	c := r.confidence
	switch {
	case sym.Name == "":
		return c.Fallback
	case sym.Name == name:
		if r.isLibrary(sym) {
			return c.Library
		}
		switch cat {
		case primary:
			return c.ExactPrimary
		case secondary:
			return c.ExactSecondary
		}
		return c.ExactAmbiguous
	case strings.EqualFold(sym.Name, name):
		return c.CaseInsensitive
	case strings.Contains(strings.ToLower(sym.Name), strings.ToLower(name)):
		return c.Partial
	}
	return c.Fallback
}

// ExpectedCategories returns the primary and secondary categories for a
// query. An explicit kind wins for the primary; otherwise the name's shape
// decides: UPPER_SNAKE reads as a constant, UpperCamel as a type,
// lowerCamel or snake_case as a callable.
func ExpectedCategories(name, kind string) (primary, secondary Category) {
	switch {
	case isUpperSnake(name):
		primary, secondary = Fields, Types
	case startsUpper(name):
		primary, secondary = Types, Callables
	default:
		primary, secondary = Callables, Fields
	}

	if kind == "" {
		return primary, secondary
	}
	explicit := CategoryOf(kindFromString(kind))
	if explicit == NoCategory {
		return primary, secondary
	}
	if explicit != primary {
		return explicit, primary
	}
	return primary, secondary
}

func kindFromString(s string) model.SymbolKind {
	k := model.SymbolKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case "type":
		return model.Class
	case "callable", "func":
		return model.Function
	}
	return k
}

func isUpperSnake(name string) bool {
	letters := 0
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			letters++
		case r == '_' || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return letters > 1 || (letters == 1 && strings.Contains(name, "_"))
}

func startsUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (r *Resolver) isLibrary(sym *model.Symbol) bool {
	return sym.Library || (r.tests != nil && r.tests.IsLibraryPath(sym.Location.File))
}

// finish enriches and orders candidates.
func (r *Resolver) finish(ctx context.Context, found []scored) []model.DefinitionCandidate {
	if len(found) == 0 {
		return nil
	}
	cands := make([]model.DefinitionCandidate, 0, len(found))
	for _, f := range found {
		cands = append(cands, r.candidate(ctx, f.sym, f.confidence))
	}
	return ranking.SortCandidates(cands)
}

func (r *Resolver) candidate(ctx context.Context, sym *model.Symbol, confidence float64) model.DefinitionCandidate {
	c := model.DefinitionCandidate{
		Symbol:        *sym,
		Confidence:    clamp(confidence),
		IsLibraryCode: r.isLibrary(sym),
	}
	if r.tests != nil {
		c.IsTestCode = r.tests.IsTestSymbol(sym)
	}

	if hint, err := r.enrich("disambiguation hint", sym, func() (string, error) { return r.Hint(ctx, sym) }); err == nil {
		c.DisambiguationHint = hint
	}
	if warning, err := r.enrich("accessibility warning", sym, func() (string, error) { return AccessibilityWarning(sym), nil }); err == nil {
		c.AccessibilityWarning = warning
	}
	return c
}

// enrich runs one secondary computation. Failures and panics leave the field
// empty and are logged; the candidate is still emitted.
func (r *Resolver) enrich(what string, sym *model.Symbol, fn func() (string, error)) (s string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = rerrors.New(rerrors.PartialEnrichmentFailure, what, fmt.Sprint(p))
		}
		if err != nil {
			r.logger.Debug("candidate enrichment failed",
				"field", what, "symbol", sym.Name, "error", err)
		}
	}()
	s, err = fn()
	if err != nil {
		err = rerrors.Wrap(rerrors.PartialEnrichmentFailure, what, err)
	}
	return s, err
}

func (r *Resolver) logQueryError(op string, err error, args ...any) {
	if rerrors.Is(err, rerrors.InvalidInput) {
		r.logger.Debug("invalid position", append([]any{"op", op, "error", err}, args...)...)
		return
	}
	r.logger.Warn("host query failed", append([]any{"op", op, "code", rerrors.HostQueryFailure, "error", err}, args...)...)
}

func lastSegment(s string) string {
	if dot := strings.LastIndex(s, "."); dot >= 0 {
		return s[dot+1:]
	}
	return s
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
