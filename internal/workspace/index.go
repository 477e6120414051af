package workspace

import (
	"context"
	"strings"

	"github.com/phobologic/refscope/internal/model"
)

func (w *Workspace) search(name string, keep func(model.SymbolKind) bool) []*model.Symbol {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}
	var out []*model.Symbol
	for _, s := range w.all {
		if keep(s.Kind) && strings.Contains(strings.ToLower(s.Name), lower) {
			out = append(out, s)
		}
	}
	return out
}

// SearchTypes returns types whose name equals, case-insensitively equals or
// contains name. Local variables and parameters are never returned by the
// search methods.
func (w *Workspace) SearchTypes(_ context.Context, name string) ([]*model.Symbol, error) {
	return w.search(name, model.SymbolKind.IsType), nil
}

// SearchCallables is SearchTypes for methods, functions and constructors.
func (w *Workspace) SearchCallables(_ context.Context, name string) ([]*model.Symbol, error) {
	return w.search(name, model.SymbolKind.IsCallable), nil
}

// SearchFields is SearchTypes for fields, constants and module variables.
func (w *Workspace) SearchFields(_ context.Context, name string) ([]*model.Symbol, error) {
	return w.search(name, model.SymbolKind.IsFieldLike), nil
}

// Members returns the declarations directly owned by container.
func (w *Workspace) Members(_ context.Context, container string) ([]*model.Symbol, error) {
	return append([]*model.Symbol(nil), w.members[container]...), nil
}

// FileSymbols returns the declarations of file in source order.
func (w *Workspace) FileSymbols(_ context.Context, file string) ([]*model.Symbol, error) {
	rel := w.rel(file)
	if _, ok := w.files[rel]; !ok {
		return nil, unknownFile("file symbols", file)
	}
	return append([]*model.Symbol(nil), w.decls[rel]...), nil
}

// Declarations returns the declarations of file whose name starts in
// [start, end).
func (w *Workspace) Declarations(_ context.Context, file string, start, end int) ([]*model.Symbol, error) {
	rel := w.rel(file)
	if _, ok := w.files[rel]; !ok {
		return nil, unknownFile("declarations", file)
	}
	var out []*model.Symbol
	for _, s := range w.decls[rel] {
		if s.Location.Start >= start && s.Location.Start < end {
			out = append(out, s)
		}
	}
	return out, nil
}

// EnclosingDeclaration returns the innermost callable whose extent contains
// offset, or the innermost type when no callable does.
func (w *Workspace) EnclosingDeclaration(_ context.Context, file string, offset int) (*model.Symbol, error) {
	rel := w.rel(file)
	if _, ok := w.files[rel]; !ok {
		return nil, unknownFile("enclosing declaration", file)
	}
	if sym := w.enclosing(rel, offset, isCallable); sym != nil {
		return sym, nil
	}
	return w.enclosing(rel, offset, isType), nil
}

// declaredAt returns the declaration whose name starts at offset.
func (w *Workspace) declaredAt(file string, offset int) *model.Symbol {
	return w.declStart[file][offset]
}

// enclosing returns the innermost declaration in file whose extent contains
// offset and that satisfies keep.
func (w *Workspace) enclosing(file string, offset int, keep func(*model.Symbol) bool) *model.Symbol {
	var best *model.Symbol
	for _, s := range w.decls[file] {
		if !s.Extent.Contains(offset) || !keep(s) {
			continue
		}
		if best == nil || s.Extent.Start > best.Extent.Start ||
			(s.Extent.Start == best.Extent.Start && s.Extent.End < best.Extent.End) {
			best = s
		}
	}
	return best
}

func isType(s *model.Symbol) bool     { return s.Kind.IsType() }
func isCallable(s *model.Symbol) bool { return s.Kind.IsCallable() }

// enclosingCallables returns the callables containing offset, innermost first.
func (w *Workspace) enclosingCallables(file string, offset int) []*model.Symbol {
	var out []*model.Symbol
	for _, s := range w.decls[file] {
		if s.Kind.IsCallable() && s.Extent.Contains(offset) {
			out = append(out, s)
		}
	}
	// decls are sorted by name start, so later entries are nested deeper.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// typeNamed returns the first type with the given qualified name.
func (w *Workspace) typeNamed(qname string) *model.Symbol {
	for _, s := range w.byQName[qname] {
		if s.Kind.IsType() {
			return s
		}
	}
	return nil
}

func (w *Workspace) typesOf(qnames []string) []*model.Symbol {
	out := make([]*model.Symbol, 0, len(qnames))
	for _, q := range qnames {
		if t := w.typeNamed(q); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Subtypes returns the transitive descendants of t, nearest first.
func (w *Workspace) Subtypes(_ context.Context, t *model.Symbol, limit int) ([]*model.Symbol, error) {
	return w.typesOf(w.hier.Subtypes(t.QualifiedName, limit)), nil
}

// Supertypes returns the transitive project ancestors of t, nearest first.
func (w *Workspace) Supertypes(_ context.Context, t *model.Symbol) ([]*model.Symbol, error) {
	return w.typesOf(w.hier.Supertypes(t.QualifiedName)), nil
}

// IsStrictSubtype reports whether sub descends from super.
func (w *Workspace) IsStrictSubtype(_ context.Context, sub, super string) (bool, error) {
	return w.hier.IsStrictSubtype(sub, super), nil
}

// typeChain is t followed by its project supertypes.
func (w *Workspace) typeChain(t *model.Symbol) []*model.Symbol {
	return append([]*model.Symbol{t}, w.typesOf(w.hier.Supertypes(t.QualifiedName))...)
}
