package workspace

import (
	"bytes"
	"context"
	"fmt"

	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/lang"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/parse"
)

// Site returns the structural facts of the occurrence starting at loc.
func (w *Workspace) Site(ctx context.Context, loc model.Location) (*host.Site, error) {
	u, err := w.unit(ctx, loc.File)
	if err != nil {
		return nil, err
	}
	if loc.Start < 0 || loc.Start > len(u.Source) {
		return nil, rerrors.New(rerrors.InvalidInput, "site", fmt.Sprintf("offset %d outside %s", loc.Start, loc.File))
	}

	leaf := u.LeafAt(loc.Start)
	f, ok := lang.Facts{QualifierAt: -1}, false
	if leaf != nil {
		f, ok = u.Lang.Analyze(leaf, u.Source)
	}
	site := f.Site
	if !ok {
		site = host.Site{}
	}
	if site.Text == "" && loc.End > loc.Start && loc.End <= len(u.Source) {
		site.Text = string(u.Source[loc.Start:loc.End])
	}

	site.Declared = w.declaredAt(u.Path, loc.Start)
	notSelf := func(keep func(*model.Symbol) bool) func(*model.Symbol) bool {
		return func(s *model.Symbol) bool { return keep(s) && s != site.Declared }
	}
	site.Callable = w.enclosing(u.Path, loc.Start, notSelf(isCallable))
	site.Owner = w.enclosing(u.Path, loc.Start, notSelf(isType))

	if ok && site.Declared == nil && site.Comment == host.NoComment {
		w.refine(&site, w.bindFacts(u, loc.Start, f, 0))
	}
	return &site, nil
}

// refine corrects grammar-only facts with what the name binds to.
func (w *Workspace) refine(site *host.Site, target *model.Symbol) {
	if target == nil {
		return
	}
	switch {
	case site.Access && target.Kind.IsType():
		site.Access = false
		site.Qualifier = host.Unqualified
		if site.Type == host.NoTypePosition {
			site.Type = host.OtherType
		}
	case site.Invocation && target.Kind.IsType():
		site.Invocation = false
		site.Construction = host.ObjectCreation
	case site.Qualifier == host.Unqualified && (site.Access || site.Invocation) && w.ownerOf(target) != nil:
		site.Qualifier = host.QualifiedImplicit
	}
}

// Resolve returns the declaration referenced at offset. When the leaf at
// offset is punctuation, the name child of its parent is tried.
func (w *Workspace) Resolve(ctx context.Context, file string, offset int) (*model.Symbol, error) {
	u, err := w.unit(ctx, file)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(u.Source) {
		return nil, rerrors.New(rerrors.InvalidInput, "resolve", fmt.Sprintf("offset %d outside %s", offset, file))
	}

	leaf := u.LeafAt(offset)
	if leaf == nil {
		return nil, nil
	}
	if sym := w.bind(u, leaf, 0); sym != nil || leaf.IsNamed() {
		return sym, nil
	}
	parent := leaf.Parent()
	if parent == nil {
		return nil, nil
	}
	for _, field := range []string{"name", "field", "attribute"} {
		if c := parent.ChildByFieldName(field); c != nil {
			return w.bind(u, u.LeafAt(int(c.StartByte())), 0), nil
		}
	}
	return nil, nil
}

// Occurrences returns the word-boundary matches of sym's name in code and
// comments that refer to sym. Matches in string literals and in other
// declarations' names are dropped, as is sym's own declaration.
func (w *Workspace) Occurrences(ctx context.Context, sym *model.Symbol, limit int) ([]model.Occurrence, error) {
	if sym == nil || sym.Name == "" {
		return nil, rerrors.New(rerrors.InvalidInput, "occurrences", "symbol has no name")
	}
	name := []byte(sym.Name)

	var out []model.Occurrence
	for _, path := range w.paths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		skel := w.files[path]
		hits := wordMatches(skel.Source, name)
		if len(hits) == 0 {
			continue
		}
		u, err := w.unit(ctx, path)
		if err != nil {
			return out, rerrors.Wrap(rerrors.HostQueryFailure, "occurrences", err)
		}
		for _, off := range hits {
			if path == sym.Location.File && off == sym.Location.Start {
				continue
			}
			if !w.refersTo(u, off, sym) {
				continue
			}
			out = append(out, model.Occurrence{Location: model.Location{
				File:  path,
				Start: off,
				End:   off + len(name),
				Line:  u.LineOf(off),
			}})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// refersTo reports whether the name match at off is a reference to sym.
// Comment mentions always count.
func (w *Workspace) refersTo(u *parse.Unit, off int, sym *model.Symbol) bool {
	leaf := u.LeafAt(off)
	if leaf == nil {
		return false
	}
	f, ok := u.Lang.Analyze(leaf, u.Source)
	if !ok {
		return false
	}
	if f.Comment != host.NoComment {
		return true
	}
	if int(leaf.StartByte()) != off || lang.NodeText(leaf, u.Source) != sym.Name {
		return false
	}
	if w.declaredAt(u.Path, off) != nil {
		return false
	}
	return w.bind(u, leaf, 0).Same(sym)
}

// wordMatches returns the offsets where name occurs as a whole identifier.
func wordMatches(src, name []byte) []int {
	var out []int
	for i := 0; ; {
		j := bytes.Index(src[i:], name)
		if j < 0 {
			return out
		}
		start := i + j
		end := start + len(name)
		if (start == 0 || !identByte(src[start-1])) && (end == len(src) || !identByte(src[end])) {
			out = append(out, start)
		}
		i = start + 1
	}
}

func identByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
