package workspace

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/lang"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/parse"
)

// maxBindDepth bounds qualifier chains such as a.b().c.d().
const maxBindDepth = 8

// bind returns the declaration the identifier leaf refers to, or nil.
// Declaration names, comments and literals bind to nothing.
func (w *Workspace) bind(u *parse.Unit, leaf *sitter.Node, depth int) *model.Symbol {
	if leaf == nil || depth > maxBindDepth {
		return nil
	}
	f, ok := u.Lang.Analyze(leaf, u.Source)
	if !ok || f.Comment != host.NoComment || f.Text == "" {
		return nil
	}
	offset := int(leaf.StartByte())
	if w.declaredAt(u.Path, offset) != nil {
		return nil
	}
	return w.bindFacts(u, offset, f, depth)
}

func (w *Workspace) bindFacts(u *parse.Unit, offset int, f lang.Facts, depth int) *model.Symbol {
	switch {
	case f.Import != host.NotImport:
		return w.lookup(f.ImportPath)
	case f.InAnnotation, f.Type != host.NoTypePosition, f.Construction != host.NotConstructed:
		return w.resolveType(u.Path, offset, f.Text)
	case f.Qualifier == host.QualifiedThis, f.Qualifier == host.QualifiedSuper, f.Qualifier == host.QualifiedExpr:
		return w.bindMember(u, offset, f, depth)
	case f.Invocation:
		return w.bindCall(u.Path, offset, f.Text)
	}
	return w.bindValue(u.Path, offset, f.Text)
}

// lookup finds a declaration by qualified path, falling back to the unique
// declaration whose qualified name ends with the path. Leading dots of
// relative Python imports are ignored.
func (w *Workspace) lookup(path string) *model.Symbol {
	path = strings.TrimLeft(path, ".")
	if path == "" {
		return nil
	}
	if syms := w.byQName[path]; len(syms) > 0 {
		return preferType(syms)
	}
	var found []*model.Symbol
	for _, s := range w.byName[lastSegment(path)] {
		if !w.local[s] && strings.HasSuffix(s.QualifiedName, "."+path) {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return preferType(found)
}

func preferType(syms []*model.Symbol) *model.Symbol {
	for _, s := range syms {
		if s.Kind.IsType() {
			return s
		}
	}
	return syms[0]
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// packageOf returns the Java package or Python module of file.
func (w *Workspace) packageOf(file string) string {
	if u, ok := w.files[file]; ok {
		return u.Info.Package
	}
	return ""
}

func (w *Workspace) language(file string) string {
	if u, ok := w.files[file]; ok {
		return u.Lang.Name
	}
	return ""
}

// resolveType resolves a written type name in the scope of offset in file:
// nested types of the enclosing types, the same file, single imports, the
// same package, wildcard imports, then a project-wide search that prefers a
// unique match and otherwise the first by qualified name.
func (w *Workspace) resolveType(file string, offset int, written string) *model.Symbol {
	written = lang.BaseType(written)
	if written == "" {
		return nil
	}
	if strings.Contains(written, ".") {
		if t := w.lookup(written); t != nil && t.Kind.IsType() {
			return t
		}
		// Outer.Inner or module.Class: resolve the head, then walk down.
		head, rest, _ := strings.Cut(written, ".")
		if base := w.resolveType(file, offset, head); base != nil {
			if t := w.typeNamed(base.QualifiedName + "." + rest); t != nil {
				return t
			}
		}
		for _, imp := range w.imports[file] {
			if imp.Name == head {
				if t := w.typeNamed(strings.TrimLeft(imp.QualifiedName, ".") + "." + rest); t != nil {
					return t
				}
			}
		}
		written = lastSegment(written)
	}
	name := written

	for t := w.enclosing(file, offset, isType); t != nil; t = w.outerType(t) {
		if t.Name == name {
			return t
		}
		for _, m := range w.members[t.QualifiedName] {
			if m.Kind.IsType() && m.Name == name {
				return m
			}
		}
		for _, st := range w.typesOf(w.hier.Supertypes(t.QualifiedName)) {
			for _, m := range w.members[st.QualifiedName] {
				if m.Kind.IsType() && m.Name == name {
					return m
				}
			}
		}
	}

	for _, s := range w.decls[file] {
		if s.Kind.IsType() && s.Name == name {
			return s
		}
	}

	for _, imp := range w.imports[file] {
		if imp.Name == name && !imp.Modifiers.Has(model.Static) {
			if t := w.lookup(imp.QualifiedName); t != nil && t.Kind.IsType() {
				return t
			}
		}
	}

	pkg := w.packageOf(file)
	for _, s := range w.byName[name] {
		if s.Kind.IsType() && s.Package == pkg && s.Container == pkg {
			return s
		}
	}

	for _, imp := range w.imports[file] {
		if imp.Name == "*" {
			if t := w.typeNamed(strings.TrimLeft(imp.QualifiedName, ".") + "." + name); t != nil {
				return t
			}
		}
	}

	var first *model.Symbol
	for _, s := range w.byName[name] {
		if s.Kind.IsType() {
			if first == nil {
				first = s
			}
		}
	}
	return first
}

// outerType returns the type that declares t, or nil for top-level types.
func (w *Workspace) outerType(t *model.Symbol) *model.Symbol {
	for _, s := range w.byQName[t.Container] {
		if s.Kind.IsType() && s.Location.File == t.Location.File {
			return s
		}
	}
	return nil
}

// typeOf returns the type a declaration evaluates to: a type itself, the
// declared type of a variable, or the return type of a callable.
func (w *Workspace) typeOf(sym *model.Symbol) *model.Symbol {
	switch {
	case sym == nil:
		return nil
	case sym.Kind.IsType():
		return sym
	case sym.Kind == model.Constructor:
		return w.ownerOf(sym)
	case sym.Kind == model.Import:
		if t := w.lookup(sym.QualifiedName); t != nil && t.Kind.IsType() {
			return t
		}
		return nil
	}
	if sym.Type == "" {
		return nil
	}
	return w.resolveType(sym.Location.File, sym.Location.Start, sym.Type)
}

// ownerOf returns the type that directly declares member.
func (w *Workspace) ownerOf(member *model.Symbol) *model.Symbol {
	return w.typeNamed(member.Container)
}

// memberKind reports whether m can satisfy an occurrence with facts f.
func memberKind(m *model.Symbol, f lang.Facts) bool {
	if f.Invocation {
		return m.Kind == model.Method || m.Kind == model.Function || m.Kind == lang.AnnotationElement
	}
	switch m.Kind {
	case model.Field, model.Constant, model.EnumConstant, model.Variable:
		return true
	}
	return m.Kind.IsType() || m.Kind == model.Method || m.Kind == model.Function
}

func (w *Workspace) findMember(owners []*model.Symbol, name string, f lang.Facts) *model.Symbol {
	for _, o := range owners {
		for _, m := range w.members[o.QualifiedName] {
			if m.Name == name && !w.local[m] && memberKind(m, f) {
				return m
			}
		}
	}
	return nil
}

// bindMember resolves a name qualified by this, super or an expression.
func (w *Workspace) bindMember(u *parse.Unit, offset int, f lang.Facts, depth int) *model.Symbol {
	var owners []*model.Symbol
	external := false

	switch f.Qualifier {
	case host.QualifiedThis, host.QualifiedSuper:
		if t := w.enclosing(u.Path, offset, isType); t != nil {
			owners = w.typeChain(t)
			if f.Qualifier == host.QualifiedSuper {
				owners = owners[1:]
			}
		}
	case host.QualifiedExpr:
		if f.QualifierAt < 0 {
			break
		}
		qn := u.LeafAt(f.QualifierAt)
		q := w.bind(u, qn, depth+1)
		switch {
		case q == nil:
			external = literalAt(qn, f.QualifierAt)
		case q.Kind == model.Import:
			mod := strings.TrimLeft(q.QualifiedName, ".")
			if w.modules[mod] {
				if m := w.findMember([]*model.Symbol{{QualifiedName: mod}}, f.Text, f); m != nil {
					return m
				}
			}
			if t := w.typeOf(q); t != nil {
				owners = w.typeChain(t)
			} else {
				external = true
			}
		default:
			if t := w.typeOf(q); t != nil {
				owners = w.typeChain(t)
			} else if q.Type != "" {
				// Declared with a type from outside the project.
				external = true
			}
		}
	}

	if m := w.findMember(owners, f.Text, f); m != nil {
		return m
	}
	if external {
		return nil
	}
	return w.unique(f.Text, func(s *model.Symbol) bool {
		return w.ownerOf(s) != nil && memberKind(s, f) && !s.Kind.IsType()
	})
}

var literalKinds = map[string]bool{
	// Java
	"string_literal": true, "character_literal": true, "text_block": true,
	"decimal_integer_literal": true, "hex_integer_literal": true,
	"octal_integer_literal": true, "binary_integer_literal": true,
	"decimal_floating_point_literal": true, "hex_floating_point_literal": true,
	"null_literal": true, "class_literal": true,
	// Python
	"string": true, "concatenated_string": true, "integer": true, "float": true,
	"list": true, "dictionary": true, "set": true, "tuple": true,
	"list_comprehension": true, "dictionary_comprehension": true,
	"set_comprehension": true,
	// both
	"true": true, "false": true, "none": true,
}

// literalAt reports whether the expression starting at offset, found by
// walking up from n, is a literal.
func literalAt(n *sitter.Node, offset int) bool {
	for ; n != nil && int(n.StartByte()) == offset; n = n.Parent() {
		if literalKinds[n.Type()] {
			return true
		}
	}
	return false
}

// unique returns the only non-local declaration named name that satisfies
// keep, or nil.
func (w *Workspace) unique(name string, keep func(*model.Symbol) bool) *model.Symbol {
	var found *model.Symbol
	for _, s := range w.byName[name] {
		if w.local[s] || !keep(s) {
			continue
		}
		if found != nil {
			return nil
		}
		found = s
	}
	return found
}

// moduleLevel returns the declaration named name directly in file's package
// or module.
func (w *Workspace) moduleLevel(file, name string, keep func(*model.Symbol) bool) *model.Symbol {
	pkg := w.packageOf(file)
	for _, s := range w.decls[file] {
		if s.Name == name && s.Container == pkg && keep(s) {
			return s
		}
	}
	return nil
}

// bindImported resolves name through the file's imports. Static imports
// are only consulted when static is set.
func (w *Workspace) bindImported(file, name string, static bool) *model.Symbol {
	for _, imp := range w.imports[file] {
		if imp.Modifiers.Has(model.Static) != static {
			continue
		}
		if imp.Name == name {
			if s := w.lookup(imp.QualifiedName); s != nil {
				return s
			}
			return imp
		}
	}
	for _, imp := range w.imports[file] {
		if imp.Name != "*" || imp.Modifiers.Has(model.Static) != static {
			continue
		}
		container := strings.TrimLeft(imp.QualifiedName, ".")
		for _, m := range w.members[container] {
			if m.Name == name && !w.local[m] {
				return m
			}
		}
	}
	return nil
}

// bindCall resolves an unqualified invocation.
func (w *Workspace) bindCall(file string, offset int, name string) *model.Symbol {
	callable := func(s *model.Symbol) bool {
		return s.Kind == model.Method || s.Kind == model.Function
	}

	for _, c := range w.enclosingCallables(file, offset) {
		for _, m := range w.members[c.QualifiedName] {
			if m.Name == name && callable(m) {
				return m
			}
		}
	}
	if w.language(file) != "python" || w.enclosing(file, offset, isCallable) == nil {
		if t := w.enclosing(file, offset, isType); t != nil {
			f := lang.Facts{Site: host.Site{Invocation: true}}
			if m := w.findMember(w.typeChain(t), name, f); m != nil {
				return m
			}
		}
	}
	if s := w.moduleLevel(file, name, func(s *model.Symbol) bool { return callable(s) || s.Kind.IsType() }); s != nil {
		return s
	}
	if s := w.bindImported(file, name, false); s != nil {
		return s
	}
	if s := w.bindImported(file, name, true); s != nil {
		return s
	}
	if t := w.resolveType(file, offset, name); t != nil {
		return t
	}
	return w.unique(name, callable)
}

// bindValue resolves an unqualified name in value position.
func (w *Workspace) bindValue(file string, offset int, name string) *model.Symbol {
	callables := w.enclosingCallables(file, offset)
	for _, c := range callables {
		for _, m := range w.members[c.QualifiedName] {
			if m.Name == name && (m.Kind == model.Variable || m.Kind == model.Parameter) && m.Location.Start <= offset {
				return m
			}
		}
	}

	// Python methods see class attributes only through self or cls.
	if w.language(file) != "python" || len(callables) == 0 {
		for t := w.enclosing(file, offset, isType); t != nil; t = w.outerType(t) {
			f := lang.Facts{Site: host.Site{Access: true}}
			if m := w.findMember(w.typeChain(t), name, f); m != nil && !m.Kind.IsCallable() {
				return m
			}
		}
	}

	if s := w.moduleLevel(file, name, func(*model.Symbol) bool { return true }); s != nil {
		return s
	}
	if s := w.bindImported(file, name, false); s != nil {
		return s
	}
	if s := w.bindImported(file, name, true); s != nil {
		return s
	}
	if t := w.resolveType(file, offset, name); t != nil {
		return t
	}
	return w.unique(name, func(s *model.Symbol) bool {
		switch s.Kind {
		case model.Field, model.Constant, model.EnumConstant, model.Variable:
			return true
		}
		return false
	})
}
