package lang

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		Extract:    pythonExtract,
		Analyze:    pythonAnalyze,
	}
}

// PythonModule derives the dotted module name of a repo-relative file path.
// Package initialisers name their directory.
func PythonModule(file string) string {
	file = strings.TrimSuffix(file, ".py")
	file = strings.TrimSuffix(file, "/__init__")
	if file == "__init__" {
		return ""
	}
	return strings.ReplaceAll(file, "/", ".")
}

type pyScope struct {
	owner    *model.Symbol // innermost class
	callable *model.Symbol // innermost function
}

type pyWalker struct {
	src      []byte
	path     string
	isInit   bool
	info     *FileInfo
	declared map[string]bool // container + "." + name of assigned names
}

func pythonExtract(root *sitter.Node, source []byte, file string) *FileInfo {
	w := &pyWalker{
		src:      source,
		path:     file,
		isInit:   path.Base(file) == "__init__.py",
		info:     &FileInfo{Package: PythonModule(file)},
		declared: make(map[string]bool),
	}
	w.walkChildren(root, pyScope{})
	return w.info
}

func (w *pyWalker) walkChildren(n *sitter.Node, sc pyScope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), sc)
	}
}

func (w *pyWalker) walk(n *sitter.Node, sc pyScope) {
	switch n.Type() {
	case "decorated_definition":
		def := n.ChildByFieldName("definition")
		if def == nil {
			return
		}
		var markers []string
		for _, c := range namedChildren(n) {
			if c.Type() == "decorator" {
				markers = append(markers, w.decoratorName(c))
			}
		}
		w.definition(def, n, markers, sc)
		return
	case "class_definition", "function_definition":
		w.definition(n, n, nil, sc)
		return
	case "import_statement", "import_from_statement":
		w.imports(n)
		return
	case "expression_statement":
		for _, c := range namedChildren(n) {
			if c.Type() == "assignment" {
				w.assignment(c, n, sc)
			}
		}
		return
	case "for_statement":
		if left := n.ChildByFieldName("left"); left != nil {
			w.targets(left, n, sc, "")
		}
	case "lambda":
		return
	}
	w.walkChildren(n, sc)
}

func (w *pyWalker) definition(def, extent *sitter.Node, markers []string, sc pyScope) {
	if def.Type() == "class_definition" {
		w.class(def, extent, markers, sc)
		return
	}
	if def.Type() == "function_definition" {
		w.function(def, extent, markers, sc)
	}
}

// decoratorName returns the dotted name a decorator applies, without
// call arguments.
func (w *pyWalker) decoratorName(d *sitter.Node) string {
	expr := d.NamedChild(0)
	if expr == nil {
		return ""
	}
	if expr.Type() == "call" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			expr = fn
		}
	}
	return NodeText(expr, w.src)
}

func (w *pyWalker) add(sym *model.Symbol, container string) *model.Symbol {
	sym.Language = "python"
	sym.Package = w.info.Package
	sym.Container = container
	if container != "" {
		sym.QualifiedName = container + "." + sym.Name
	} else {
		sym.QualifiedName = sym.Name
	}
	w.info.Symbols = append(w.info.Symbols, sym)
	return sym
}

func (w *pyWalker) container(sc pyScope) string {
	switch {
	case sc.callable != nil:
		return sc.callable.QualifiedName
	case sc.owner != nil:
		return sc.owner.QualifiedName
	}
	return w.info.Package
}

func pyVisibility(name string) model.Modifier {
	if strings.HasPrefix(name, "_") && !strings.HasSuffix(name, "__") {
		return model.Private
	}
	return model.Public
}

func (w *pyWalker) class(n, extent *sitter.Node, markers []string, sc pyScope) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	sym := &model.Symbol{
		Name:     NodeText(name, w.src),
		Kind:     model.Class,
		Location: Location(name, w.path),
		Extent:   Location(extent, w.path),
		Markers:  markers,
	}
	sym.Modifiers = model.Modifiers{pyVisibility(sym.Name)}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, s := range namedChildren(supers) {
			switch s.Type() {
			case "identifier", "attribute":
				sym.Supertypes = append(sym.Supertypes, NodeText(s, w.src))
			case "subscript":
				if v := s.ChildByFieldName("value"); v != nil {
					sym.Supertypes = append(sym.Supertypes, NodeText(v, w.src))
				}
			}
		}
	}
	for _, s := range sym.Supertypes {
		switch lastSegment(s) {
		case "ABC", "Protocol":
			sym.Modifiers = append(sym.Modifiers, model.Abstract)
		case "Enum", "IntEnum", "StrEnum":
			sym.Kind = model.Enum
		}
	}
	body := n.ChildByFieldName("body")
	w.documentation(sym, body)
	w.add(sym, w.container(sc))

	if body != nil {
		w.walkChildren(body, pyScope{owner: sym})
	}
}

func (w *pyWalker) function(n, extent *sitter.Node, markers []string, sc pyScope) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	sym := &model.Symbol{
		Name:     NodeText(name, w.src),
		Kind:     model.Function,
		Location: Location(name, w.path),
		Extent:   Location(extent, w.path),
		Markers:  markers,
	}
	method := sc.owner != nil && sc.callable == nil
	if method {
		sym.Kind = model.Method
		if sym.Name == "__init__" {
			sym.Kind = model.Constructor
		}
	}
	sym.Modifiers = model.Modifiers{pyVisibility(sym.Name)}
	for _, m := range markers {
		switch lastSegment(m) {
		case "staticmethod", "classmethod":
			sym.Modifiers = append(sym.Modifiers, model.Static)
		case "abstractmethod":
			sym.Modifiers = append(sym.Modifiers, model.Abstract)
		}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		sym.Type = CollapseWhitespace(NodeText(rt, w.src))
	}
	body := n.ChildByFieldName("body")
	w.documentation(sym, body)
	w.add(sym, w.container(sc))

	if params := n.ChildByFieldName("parameters"); params != nil {
		skipFirst := method && !sym.Modifiers.Has(model.Static)
		for _, p := range namedChildren(params) {
			id := pyParamName(p)
			if id == nil {
				continue
			}
			if skipFirst {
				skipFirst = false
				if t := NodeText(id, w.src); t == "self" || t == "cls" {
					continue
				}
			}
			sym.Parameters = append(sym.Parameters, CollapseWhitespace(NodeText(p, w.src)))
			param := &model.Symbol{
				Name:      NodeText(id, w.src),
				Kind:      model.Parameter,
				Location:  Location(id, w.path),
				Extent:    Location(p, w.path),
				Modifiers: model.Modifiers{model.Public},
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = CollapseWhitespace(NodeText(t, w.src))
			}
			w.declared[sym.QualifiedName+"."+param.Name] = true
			w.add(param, sym.QualifiedName)
		}
	}

	if body != nil {
		w.walkChildren(body, pyScope{owner: sc.owner, callable: sym})
	}
}

// pyParamName returns the identifier a parameter binds.
func pyParamName(p *sitter.Node) *sitter.Node {
	switch p.Type() {
	case "identifier":
		return p
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		for _, c := range namedChildren(p) {
			if c.Type() == "identifier" {
				return c
			}
			if c.Type() == "list_splat_pattern" || c.Type() == "dictionary_splat_pattern" {
				return pyParamName(c)
			}
		}
	case "default_parameter", "typed_default_parameter":
		if name := p.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			return name
		}
	}
	return nil
}

func (w *pyWalker) assignment(a, stmt *sitter.Node, sc pyScope) {
	left := a.ChildByFieldName("left")
	if left == nil {
		return
	}
	var typ string
	if t := a.ChildByFieldName("type"); t != nil {
		typ = CollapseWhitespace(NodeText(t, w.src))
	}
	w.targets(left, stmt, sc, typ)
}

// targets declares the names bound by an assignment or loop target. The
// first binding of a name in a container declares it.
func (w *pyWalker) targets(left, stmt *sitter.Node, sc pyScope, typ string) {
	switch left.Type() {
	case "identifier":
		w.bind(left, stmt, sc, typ)
	case "attribute":
		// self.x = ... inside a constructor declares an instance field.
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj == nil || attr == nil || NodeText(obj, w.src) != "self" {
			return
		}
		if sc.owner == nil || sc.callable == nil || sc.callable.Kind != model.Constructor {
			return
		}
		w.bind(attr, stmt, pyScope{owner: sc.owner}, typ)
	case "pattern_list", "tuple_pattern", "list_pattern", "expression_list", "tuple":
		for _, c := range namedChildren(left) {
			w.targets(c, stmt, sc, "")
		}
	}
}

func (w *pyWalker) bind(id, stmt *sitter.Node, sc pyScope, typ string) {
	container := w.container(sc)
	name := NodeText(id, w.src)
	if w.declared[container+"."+name] {
		return
	}
	w.declared[container+"."+name] = true

	sym := &model.Symbol{
		Name:      name,
		Kind:      model.Variable,
		Location:  Location(id, w.path),
		Extent:    Location(stmt, w.path),
		Type:      typ,
		Modifiers: model.Modifiers{pyVisibility(name)},
	}
	switch {
	case sc.callable != nil:
	case sc.owner != nil && sc.owner.Kind == model.Enum:
		sym.Kind = model.EnumConstant
		sym.Type = sc.owner.Name
		sym.Modifiers = append(sym.Modifiers, model.Static, model.Final)
	case sc.owner != nil:
		sym.Kind = model.Field
		if isUpperSnake(name) {
			sym.Kind = model.Constant
			sym.Modifiers = append(sym.Modifiers, model.Static, model.Final)
		}
	case isUpperSnake(name):
		sym.Kind = model.Constant
		sym.Modifiers = append(sym.Modifiers, model.Final)
	}
	if isFinalAnnotation(typ) && !sym.Modifiers.Has(model.Final) {
		sym.Modifiers = append(sym.Modifiers, model.Final)
	}
	if sc.callable == nil {
		w.attributeDoc(sym, stmt)
	}
	w.add(sym, container)
}

// attributeDoc reads the string literal that follows an assignment, the
// conventional place for attribute documentation.
func (w *pyWalker) attributeDoc(sym *model.Symbol, stmt *sitter.Node) {
	next := stmt.NextNamedSibling()
	if next == nil || next.Type() != "expression_statement" {
		return
	}
	s := next.NamedChild(0)
	if s == nil || s.Type() != "string" {
		return
	}
	text := NodeText(s, w.src)
	sym.Doc = firstLine(text)
	if strings.Contains(text, "@deprecated") {
		sym.Deprecated = true
	}
}

func (w *pyWalker) documentation(sym *model.Symbol, body *sitter.Node) {
	if sym.HasMarker("deprecated") {
		sym.Deprecated = true
	}
	if body == nil {
		return
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return
	}
	s := first.NamedChild(0)
	if s == nil || s.Type() != "string" {
		return
	}
	text := NodeText(s, w.src)
	sym.Doc = firstLine(strings.Trim(text, "\"'"))
	if strings.Contains(text, "@deprecated") {
		sym.Deprecated = true
	}
}

func (w *pyWalker) imports(n *sitter.Node) {
	var module string
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode != nil {
		module = w.absoluteModule(NodeText(moduleNode, w.src))
	}
	for _, c := range namedChildren(n) {
		if same(c, moduleNode) {
			continue
		}
		var nameNode, alias *sitter.Node
		switch c.Type() {
		case "wildcard_import":
			w.addImport(c, n, "*", module)
			continue
		case "dotted_name":
			nameNode = c
		case "aliased_import":
			nameNode = c.ChildByFieldName("name")
			alias = c.ChildByFieldName("alias")
		default:
			continue
		}
		if nameNode == nil {
			continue
		}
		dotted := NodeText(nameNode, w.src)
		full := dotted
		if module != "" {
			full = module + "." + dotted
		}
		local := dotted
		switch {
		case alias != nil:
			local = NodeText(alias, w.src)
		case module != "":
			local = lastSegment(dotted)
		default:
			// import a.b binds a
			local = strings.SplitN(dotted, ".", 2)[0]
		}
		w.addImport(nameNode, n, local, full)
	}
}

func (w *pyWalker) addImport(at, stmt *sitter.Node, local, full string) {
	w.info.Imports = append(w.info.Imports, &model.Symbol{
		Name:          local,
		QualifiedName: full,
		Kind:          model.Import,
		Location:      Location(at, w.path),
		Extent:        Location(stmt, w.path),
		Package:       w.info.Package,
		Language:      "python",
	})
}

// absoluteModule resolves a relative module reference against the
// importing file's package.
func (w *pyWalker) absoluteModule(mod string) string {
	if !strings.HasPrefix(mod, ".") {
		return mod
	}
	base := w.info.Package
	if !w.isInit {
		base = parentModule(base)
	}
	rest := strings.TrimLeft(mod, ".")
	for i := 1; i < len(mod)-len(rest); i++ {
		base = parentModule(base)
	}
	switch {
	case base == "":
		return rest
	case rest == "":
		return base
	}
	return base + "." + rest
}

func parentModule(mod string) string {
	if i := strings.LastIndex(mod, "."); i >= 0 {
		return mod[:i]
	}
	return ""
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// pyStops end upward searches for conditions and argument lists.
var pyStops = map[string]bool{
	"block":                true,
	"module":               true,
	"expression_statement": true,
	"return_statement":     true,
	"function_definition":  true,
	"class_definition":     true,
	"lambda":               true,
}

// pyTypeParts are the nodes a name may sit in within a type annotation.
var pyTypeParts = map[string]bool{
	"attribute":       true,
	"subscript":       true,
	"generic_type":    true,
	"type_parameter":  true,
	"union_type":      true,
	"binary_operator": true,
	"tuple":           true,
	"list":            true,
	"expression_list": true,
}

func pythonAnalyze(leaf *sitter.Node, src []byte) (Facts, bool) {
	f := Facts{QualifierAt: -1}
	switch leaf.Type() {
	case "comment":
		f.Comment = host.LineComment
		return f, true
	case "identifier":
	default:
		if s := enclosingString(leaf); s != nil && isDocstring(s) {
			f.Comment = host.DocComment
			return f, true
		}
		return f, false
	}
	f.Text = NodeText(leaf, src)

	p := leaf.Parent()
	if p == nil {
		return f, true
	}

	if pythonImportFacts(leaf, src, &f) {
		return f, true
	}

	// Decorators: @name, @pkg.name and @name(args).
	d := leaf
	for d.Parent() != nil {
		dp := d.Parent()
		if (dp.Type() == "attribute" && isField(dp, "attribute", d)) || (dp.Type() == "call" && isField(dp, "function", d)) {
			d = dp
			continue
		}
		break
	}
	if d.Parent() != nil && d.Parent().Type() == "decorator" {
		f.InAnnotation = true
		return f, true
	}

	switch p.Type() {
	case "class_definition", "function_definition":
		if isField(p, "name", leaf) {
			return f, true
		}
	case "parameters", "typed_parameter", "default_parameter", "typed_default_parameter",
		"list_splat_pattern", "dictionary_splat_pattern":
		if p.Type() == "parameters" || same(pyParamName(p), leaf) {
			f.Role = host.RoleParameterDeclaration
			return f, true
		}
	case "keyword_argument":
		if isField(p, "name", leaf) {
			return f, true
		}
	}

	if pythonTypePosition(leaf, src, &f) {
		return f, true
	}

	unit := leaf
	switch {
	case p.Type() == "call" && isField(p, "function", leaf):
		f.Invocation = true
		f.ArgCount = pyArgCount(p)
		unit = p
	case p.Type() == "attribute" && isField(p, "attribute", leaf):
		if gp := p.Parent(); gp != nil && gp.Type() == "call" && isField(gp, "function", p) {
			f.Invocation = true
			f.ArgCount = pyArgCount(gp)
			unit = gp
		} else {
			f.Access = true
			unit = p
		}
		pyQualifier(p.ChildByFieldName("object"), src, &f)
	default:
		f.Access = true
	}

	pyExpressionFacts(unit, &f)
	return f, true
}

// pythonImportFacts fills import facts when leaf is part of an import
// statement and reports whether it was.
func pythonImportFacts(leaf *sitter.Node, src []byte, f *Facts) bool {
	top := leaf
	if top.Parent() != nil && top.Parent().Type() == "dotted_name" {
		top = top.Parent()
	}
	tp := top.Parent()
	if tp != nil && tp.Type() == "relative_import" {
		top = tp
		tp = tp.Parent()
	}
	if tp != nil && tp.Type() == "aliased_import" {
		if isField(tp, "alias", top) {
			f.Import = host.SingleImport
			return true
		}
		tp = tp.Parent()
	}
	if tp == nil || (tp.Type() != "import_statement" && tp.Type() != "import_from_statement") {
		return false
	}

	f.Import = host.SingleImport
	if childOfType(tp, "wildcard_import") != nil {
		f.Import = host.WildcardImport
	}
	path := string(src[top.StartByte():leaf.EndByte()])
	if mod := tp.ChildByFieldName("module_name"); mod != nil && !same(mod, top) && mod.EndByte() <= top.StartByte() {
		path = NodeText(mod, src) + "." + path
	}
	f.ImportPath = path
	return true
}

func enclosingString(n *sitter.Node) *sitter.Node {
	for a := n; a != nil; a = a.Parent() {
		switch a.Type() {
		case "string":
			return a
		case "interpolation", "block", "module":
			return nil
		}
	}
	return nil
}

// isDocstring reports whether s is the first statement of a module, class
// or function body, or documents the assignment before it.
func isDocstring(s *sitter.Node) bool {
	stmt := s.Parent()
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	prev := stmt.PrevNamedSibling()
	for prev != nil && prev.Type() == "comment" {
		prev = prev.PrevNamedSibling()
	}
	if prev == nil {
		return true
	}
	return prev.Type() == "expression_statement" && prev.NamedChild(0) != nil && prev.NamedChild(0).Type() == "assignment"
}

func pyArgCount(call *sitter.Node) int {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return 0
	}
	if args.Type() == "generator_expression" {
		return 1
	}
	return len(namedChildren(args))
}

func pyQualifier(obj *sitter.Node, src []byte, f *Facts) {
	if obj == nil {
		f.Qualifier = host.QualifiedImplicit
		return
	}
	if obj.Type() == "identifier" {
		switch NodeText(obj, src) {
		case "self", "cls":
			f.Qualifier = host.QualifiedThis
			return
		}
	}
	if obj.Type() == "call" {
		if fn := obj.ChildByFieldName("function"); fn != nil && NodeText(fn, src) == "super" {
			f.Qualifier = host.QualifiedSuper
			return
		}
	}
	f.Qualifier = host.QualifiedExpr
	if at := pyQualifierName(obj); at != nil {
		f.QualifierAt = int(at.StartByte())
	}
}

func pyQualifierName(obj *sitter.Node) *sitter.Node {
	switch obj.Type() {
	case "identifier":
		return obj
	case "attribute":
		return obj.ChildByFieldName("attribute")
	case "call":
		if fn := obj.ChildByFieldName("function"); fn != nil {
			return pyQualifierName(fn)
		}
	}
	return nil
}

// pythonTypePosition fills type facts for names inside annotations, except
// clauses and isinstance checks, and reports whether leaf is in one.
func pythonTypePosition(leaf *sitter.Node, src []byte, f *Facts) bool {
	t := leaf
	for t.Parent() != nil && pyTypeParts[t.Parent().Type()] {
		t = t.Parent()
	}
	p := t.Parent()
	if p == nil {
		return false
	}

	switch p.Type() {
	case "type":
		f.Type = host.OtherType
		gp := p.Parent()
		if gp == nil {
			return true
		}
		switch gp.Type() {
		case "typed_parameter", "typed_default_parameter":
			f.Type = host.ParameterType
			f.Role = host.RoleParameterDeclaration
		case "function_definition":
			f.Type = host.ReturnType
			f.Role = host.RoleReturnTypeDeclaration
		case "assignment":
			f.Type = host.LocalVariableType
			if inClassBody(gp) {
				f.Type = host.FieldType
			}
			f.Role = host.RoleVariableDeclaration
		}
		return true
	case "except_clause":
		if same(p.NamedChild(0), t) {
			f.Type = host.CatchType
			return true
		}
	case "as_pattern":
		if gp := p.Parent(); gp != nil && gp.Type() == "except_clause" && same(p.NamedChild(0), t) {
			f.Type = host.CatchType
			return true
		}
	case "argument_list":
		gp := p.Parent()
		if gp == nil {
			return false
		}
		if gp.Type() == "class_definition" {
			f.Type = host.OtherType
			return true
		}
		if gp.Type() == "call" {
			fn := gp.ChildByFieldName("function")
			args := namedChildren(p)
			if fn == nil || len(args) != 2 {
				return false
			}
			switch name := NodeText(fn, src); {
			case name == "isinstance" && same(args[1], t):
				f.Type = host.InstanceofType
				f.Role = host.RoleArgument
				return true
			case (name == "cast" || name == "typing.cast") && same(args[0], t):
				f.Type = host.CastType
				f.Role = host.RoleArgument
				return true
			}
		}
	}
	return false
}

func inClassBody(n *sitter.Node) bool {
	stmt := n.Parent()
	if stmt == nil || stmt.Type() != "expression_statement" {
		return false
	}
	blk := stmt.Parent()
	return blk != nil && blk.Type() == "block" && blk.Parent() != nil && blk.Parent().Type() == "class_definition"
}

func pyExpressionFacts(unit *sitter.Node, f *Facts) {
	p := unit.Parent()
	if p == nil {
		return
	}
	target := unit
	for p.Type() == "pattern_list" || p.Type() == "tuple_pattern" {
		target = p
		if p = p.Parent(); p == nil {
			return
		}
	}
	switch p.Type() {
	case "assignment":
		switch {
		case isField(p, "left", target):
			f.Assign = host.AssignLeft
		case isField(p, "right", target):
			f.Assign = host.AssignRight
		}
	case "augmented_assignment":
		if isField(p, "left", target) {
			f.Increment = host.PostfixIncrement
		}
	}

	for a, pa := unit, unit.Parent(); pa != nil && !pyStops[pa.Type()]; a, pa = pa, pa.Parent() {
		switch pa.Type() {
		case "if_statement", "elif_clause", "while_statement":
			if isField(pa, "condition", a) {
				f.InCondition = true
			}
		case "conditional_expression":
			if same(pa.NamedChild(1), a) {
				f.InCondition = true
			}
		case "argument_list":
			if gp := pa.Parent(); gp == nil || gp.Type() != "class_definition" {
				f.InArguments = true
			}
		}
	}

	f.Role = pyRole(target, p)
}

func pyRole(unit, p *sitter.Node) host.ParentRole {
	switch p.Type() {
	case "assignment":
		switch {
		case isField(p, "left", unit):
			return host.RoleAssignTarget
		case isField(p, "right", unit) && inClassBody(p):
			return host.RoleFieldInitializer
		}
		return host.RoleAssignValue
	case "augmented_assignment":
		if isField(p, "left", unit) {
			return host.RoleAssignTarget
		}
		return host.RoleAssignValue
	case "return_statement":
		return host.RoleReturn
	case "keyword_argument":
		if gp := p.Parent(); gp != nil && gp.Type() == "argument_list" {
			return host.RoleArgument
		}
	case "argument_list":
		return host.RoleArgument
	case "if_statement", "elif_clause":
		if isField(p, "condition", unit) {
			return host.RoleCondition
		}
	case "while_statement":
		if isField(p, "condition", unit) {
			return host.RoleLoopCondition
		}
	case "conditional_expression":
		if same(p.NamedChild(1), unit) {
			return host.RoleCondition
		}
	case "for_statement":
		if isField(p, "right", unit) {
			return host.RoleLoopInit
		}
		return host.RoleVariableDeclaration
	case "not_operator", "unary_operator":
		return host.RolePrefixOp
	case "binary_operator", "comparison_operator", "boolean_operator":
		return host.RoleBinaryOp
	}
	return host.RoleNone
}

// isFinalAnnotation reports whether typ is typing.Final or Final[...].
func isFinalAnnotation(typ string) bool {
	typ = strings.TrimPrefix(typ, "typing.")
	return typ == "Final" || strings.HasPrefix(typ, "Final[")
}
