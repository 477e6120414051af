// Package hosttest provides an in-memory host for tests.
package hosttest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

// Ref marks a resolvable reference range.
type Ref struct {
	Loc    model.Location
	Target *model.Symbol
}

// Fake is a host.Host backed by plain data. Zero values answer "nothing".
type Fake struct {
	Symbols []*model.Symbol
	Refs    []Ref

	// Sites keyed by Key(file, start).
	Sites map[string]*host.Site

	// Lines per file, 1-based line n at index n-1.
	Lines map[string][]string

	// Occurrences keyed by symbol qualified name.
	Occs map[string][]model.Occurrence

	// Supers maps a type's qualified name to its direct supertypes.
	Supers map[string][]string

	// Fail makes the named method return an error.
	Fail map[string]error

	// Calls counts method invocations by name.
	Calls map[string]int

	mu sync.Mutex
}

var _ host.Host = (*Fake)(nil)

// CallCount returns how often the named method was invoked.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

// Key builds the Sites map key.
func Key(file string, start int) string {
	return fmt.Sprintf("%s:%d", file, start)
}

func (f *Fake) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[name]++
	if err, ok := f.Fail[name]; ok {
		return err
	}
	return nil
}

func (f *Fake) Site(_ context.Context, loc model.Location) (*host.Site, error) {
	if err := f.call("Site"); err != nil {
		return nil, err
	}
	if s, ok := f.Sites[Key(loc.File, loc.Start)]; ok {
		return s, nil
	}
	return &host.Site{}, nil
}

func (f *Fake) Resolve(_ context.Context, file string, offset int) (*model.Symbol, error) {
	if err := f.call("Resolve"); err != nil {
		return nil, err
	}
	for _, r := range f.Refs {
		if r.Loc.File == file && r.Loc.Contains(offset) {
			return r.Target, nil
		}
	}
	return nil, nil
}

// EnclosingDeclaration returns the innermost callable whose extent contains
// offset, else the innermost such type.
func (f *Fake) EnclosingDeclaration(_ context.Context, file string, offset int) (*model.Symbol, error) {
	if err := f.call("EnclosingDeclaration"); err != nil {
		return nil, err
	}
	innermost := func(keep func(model.SymbolKind) bool) *model.Symbol {
		var best *model.Symbol
		for _, s := range f.Symbols {
			if s.Location.File != file || !keep(s.Kind) || !s.Extent.Contains(offset) {
				continue
			}
			if best == nil || s.Extent.Start > best.Extent.Start {
				best = s
			}
		}
		return best
	}
	if s := innermost(model.SymbolKind.IsCallable); s != nil {
		return s, nil
	}
	return innermost(model.SymbolKind.IsType), nil
}

func (f *Fake) Declarations(_ context.Context, file string, start, end int) ([]*model.Symbol, error) {
	if err := f.call("Declarations"); err != nil {
		return nil, err
	}
	var out []*model.Symbol
	for _, s := range f.Symbols {
		if s.Location.File == file && s.Location.Start >= start && s.Location.Start < end {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) LineText(_ context.Context, file string, line int) (string, bool) {
	lines := f.Lines[file]
	if line < 1 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func (f *Fake) Offset(_ context.Context, file string, line, col int) (int, error) {
	lines, ok := f.Lines[file]
	if !ok || line < 1 || line > len(lines) {
		return 0, fmt.Errorf("line %d out of range", line)
	}
	off := 0
	for i := 0; i < line-1; i++ {
		off += len(lines[i]) + 1
	}
	return off + col - 1, nil
}

func (f *Fake) search(name string, keep func(model.SymbolKind) bool) []*model.Symbol {
	lower := strings.ToLower(name)
	var out []*model.Symbol
	for _, s := range f.Symbols {
		if keep(s.Kind) && strings.Contains(strings.ToLower(s.Name), lower) {
			out = append(out, s)
		}
	}
	return out
}

func (f *Fake) SearchTypes(_ context.Context, name string) ([]*model.Symbol, error) {
	if err := f.call("SearchTypes"); err != nil {
		return nil, err
	}
	return f.search(name, model.SymbolKind.IsType), nil
}

func (f *Fake) SearchCallables(_ context.Context, name string) ([]*model.Symbol, error) {
	if err := f.call("SearchCallables"); err != nil {
		return nil, err
	}
	return f.search(name, model.SymbolKind.IsCallable), nil
}

func (f *Fake) SearchFields(_ context.Context, name string) ([]*model.Symbol, error) {
	if err := f.call("SearchFields"); err != nil {
		return nil, err
	}
	return f.search(name, model.SymbolKind.IsFieldLike), nil
}

func (f *Fake) Members(_ context.Context, container string) ([]*model.Symbol, error) {
	if err := f.call("Members"); err != nil {
		return nil, err
	}
	var out []*model.Symbol
	for _, s := range f.Symbols {
		if s.Container == container {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) Occurrences(_ context.Context, sym *model.Symbol, limit int) ([]model.Occurrence, error) {
	if err := f.call("Occurrences"); err != nil {
		return nil, err
	}
	occs := f.Occs[sym.QualifiedName]
	if limit > 0 && len(occs) > limit {
		occs = occs[:limit]
	}
	return append([]model.Occurrence(nil), occs...), nil
}

func (f *Fake) FileSymbols(_ context.Context, file string) ([]*model.Symbol, error) {
	if err := f.call("FileSymbols"); err != nil {
		return nil, err
	}
	var out []*model.Symbol
	for _, s := range f.Symbols {
		if s.Location.File == file {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) byQualifiedName(q string) *model.Symbol {
	for _, s := range f.Symbols {
		if s.Kind.IsType() && s.QualifiedName == q {
			return s
		}
	}
	return nil
}

func (f *Fake) Subtypes(_ context.Context, t *model.Symbol, limit int) ([]*model.Symbol, error) {
	if err := f.call("Subtypes"); err != nil {
		return nil, err
	}
	children := map[string][]string{}
	for sub, supers := range f.Supers {
		for _, s := range supers {
			children[s] = append(children[s], sub)
		}
	}
	for k := range children {
		sort.Strings(children[k])
	}

	var out []*model.Symbol
	seen := map[string]bool{t.QualifiedName: true}
	queue := []string{t.QualifiedName}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range children[cur] {
			if seen[c] {
				continue
			}
			seen[c] = true
			queue = append(queue, c)
			if s := f.byQualifiedName(c); s != nil {
				out = append(out, s)
				if limit > 0 && len(out) >= limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func (f *Fake) Supertypes(_ context.Context, t *model.Symbol) ([]*model.Symbol, error) {
	if err := f.call("Supertypes"); err != nil {
		return nil, err
	}
	var out []*model.Symbol
	seen := map[string]bool{t.QualifiedName: true}
	queue := []string{t.QualifiedName}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range f.Supers[cur] {
			if seen[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
			if s := f.byQualifiedName(p); s != nil {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *Fake) IsStrictSubtype(_ context.Context, sub, super string) (bool, error) {
	if err := f.call("IsStrictSubtype"); err != nil {
		return false, err
	}
	if sub == super {
		return false, nil
	}
	seen := map[string]bool{sub: true}
	queue := []string{sub}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range f.Supers[cur] {
			if p == super {
				return true, nil
			}
			if !seen[p] {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false, nil
}
