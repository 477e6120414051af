package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

func init() {
	Languages["java"] = &Language{
		Name:       "java",
		Extensions: []string{".java"},
		lang:       java.GetLanguage(),
		Extract:    javaExtract,
		Analyze:    javaAnalyze,
	}
}

var javaTypeKinds = map[string]model.SymbolKind{
	"class_declaration":           model.Class,
	"interface_declaration":       model.Interface,
	"enum_declaration":            model.Enum,
	"record_declaration":          model.Record,
	"annotation_type_declaration": model.Annotation,
}

// AnnotationElement is the kind of an element declared in an annotation type.
var AnnotationElement = model.CustomKind("annotation_element")

// javaScope is the declaration context while walking a file.
type javaScope struct {
	owner    *model.Symbol // innermost type
	callable *model.Symbol // innermost method or constructor
	iface    bool          // owner is an interface or annotation type
}

type javaWalker struct {
	src  []byte
	path string
	info *FileInfo
}

func javaExtract(root *sitter.Node, source []byte, path string) *FileInfo {
	w := &javaWalker{src: source, path: path, info: &FileInfo{}}
	if pkg := childOfType(root, "package_declaration"); pkg != nil {
		for _, c := range namedChildren(pkg) {
			if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
				w.info.Package = NodeText(c, source)
				break
			}
		}
	}
	w.walkChildren(root, javaScope{})
	return w.info
}

func (w *javaWalker) walkChildren(n *sitter.Node, sc javaScope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), sc)
	}
}

func (w *javaWalker) walk(n *sitter.Node, sc javaScope) {
	typ := n.Type()
	if kind, ok := javaTypeKinds[typ]; ok {
		sym := w.typeDecl(n, kind, sc)
		if sym == nil {
			return
		}
		inner := javaScope{owner: sym, iface: kind == model.Interface || kind == model.Annotation}
		if params := n.ChildByFieldName("parameters"); params != nil && kind == model.Record {
			w.recordComponents(params, inner)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			w.walkChildren(body, inner)
		}
		return
	}

	switch typ {
	case "import_declaration":
		w.importDecl(n)
		return
	case "method_declaration", "constructor_declaration":
		sym := w.callable(n, sc)
		if sym == nil {
			return
		}
		inner := javaScope{owner: sc.owner, callable: sym}
		if body := n.ChildByFieldName("body"); body != nil {
			w.walkChildren(body, inner)
		}
		return
	case "field_declaration", "constant_declaration":
		w.fields(n, sc)
		return
	case "annotation_type_element_declaration":
		w.annotationElement(n, sc)
		return
	case "enum_constant":
		w.enumConstant(n, sc)
		return
	case "local_variable_declaration":
		w.locals(n, sc)
	case "enhanced_for_statement":
		w.forVariable(n, sc)
	case "catch_formal_parameter":
		w.catchParameter(n, sc)
	case "object_creation_expression":
		// Anonymous class bodies are not indexed.
		if args := n.ChildByFieldName("arguments"); args != nil {
			w.walkChildren(args, sc)
		}
		return
	}
	w.walkChildren(n, sc)
}

func (w *javaWalker) add(sym *model.Symbol) *model.Symbol {
	sym.Language = "java"
	sym.Package = w.info.Package
	if sym.Container != "" {
		sym.QualifiedName = sym.Container + "." + sym.Name
	} else {
		sym.QualifiedName = sym.Name
	}
	w.info.Symbols = append(w.info.Symbols, sym)
	return sym
}

func (w *javaWalker) newSymbol(decl, name *sitter.Node, kind model.SymbolKind) *model.Symbol {
	return &model.Symbol{
		Name:     NodeText(name, w.src),
		Kind:     kind,
		Location: Location(name, w.path),
		Extent:   Location(decl, w.path),
	}
}

func (w *javaWalker) typeDecl(n *sitter.Node, kind model.SymbolKind, sc javaScope) *model.Symbol {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	sym := w.newSymbol(n, name, kind)
	sym.Modifiers, sym.Markers = w.modifiers(n)
	if sc.iface {
		sym.Modifiers = withDefaults(sym.Modifiers, model.Public, model.Static)
	}
	if sc.owner != nil {
		sym.Container = sc.owner.QualifiedName
	} else {
		sym.Container = w.info.Package
	}
	w.documentation(n, sym)

	switch kind {
	case model.Class:
		if ext := n.ChildByFieldName("superclass"); ext != nil {
			sym.Supertypes = append(sym.Supertypes, w.typeNames(ext)...)
		}
		if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
			sym.Supertypes = append(sym.Supertypes, w.typeNames(ifs)...)
		}
	case model.Interface:
		if ext := childOfType(n, "extends_interfaces"); ext != nil {
			sym.Supertypes = append(sym.Supertypes, w.typeNames(ext)...)
		}
	case model.Enum, model.Record:
		if ifs := n.ChildByFieldName("interfaces"); ifs != nil {
			sym.Supertypes = append(sym.Supertypes, w.typeNames(ifs)...)
		}
	}
	return w.add(sym)
}

// typeNames collects the base names of the types listed under n.
func (w *javaWalker) typeNames(n *sitter.Node) []string {
	var out []string
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "type_identifier", "scoped_type_identifier":
			out = append(out, NodeText(c, w.src))
		case "generic_type":
			if base := c.NamedChild(0); base != nil {
				out = append(out, NodeText(base, w.src))
			}
		case "type_list":
			out = append(out, w.typeNames(c)...)
		}
	}
	return out
}

func (w *javaWalker) callable(n *sitter.Node, sc javaScope) *model.Symbol {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	kind := model.Method
	if n.Type() == "constructor_declaration" {
		kind = model.Constructor
	}
	sym := w.newSymbol(n, name, kind)
	sym.Modifiers, sym.Markers = w.modifiers(n)
	if sc.iface {
		sym.Modifiers = withDefaults(sym.Modifiers, model.Public)
		m := sym.Modifiers
		if n.ChildByFieldName("body") == nil && !m.Has(model.Static) && !m.Has(model.Default) && !m.Has(model.Abstract) {
			sym.Modifiers = append(sym.Modifiers, model.Abstract)
		}
	}
	if t := n.ChildByFieldName("type"); t != nil {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	}
	if sc.owner != nil {
		sym.Container = sc.owner.QualifiedName
	}
	w.documentation(n, sym)
	w.add(sym)

	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range namedChildren(params) {
			switch p.Type() {
			case "formal_parameter", "spread_parameter":
			default:
				continue
			}
			sym.Parameters = append(sym.Parameters, CollapseWhitespace(NodeText(p, w.src)))
			w.parameter(p, sym)
		}
	}
	return sym
}

// annotationElement indexes an element such as "String value() default """.
func (w *javaWalker) annotationElement(n *sitter.Node, sc javaScope) {
	name := n.ChildByFieldName("name")
	if name == nil || sc.owner == nil {
		return
	}
	sym := w.newSymbol(n, name, AnnotationElement)
	sym.Modifiers, sym.Markers = w.modifiers(n)
	sym.Modifiers = withDefaults(sym.Modifiers, model.Public, model.Abstract)
	if t := n.ChildByFieldName("type"); t != nil {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	}
	sym.Container = sc.owner.QualifiedName
	w.documentation(n, sym)
	w.add(sym)
}

func (w *javaWalker) parameter(p *sitter.Node, callable *model.Symbol) {
	name := p.ChildByFieldName("name")
	if name == nil {
		if d := childOfType(p, "variable_declarator"); d != nil {
			name = d.ChildByFieldName("name")
		}
	}
	if name == nil {
		return
	}
	sym := w.newSymbol(p, name, model.Parameter)
	sym.Modifiers, sym.Markers = w.modifiers(p)
	if t := p.ChildByFieldName("type"); t != nil {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	} else if t := p.NamedChild(0); t != nil && p.Type() == "spread_parameter" {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	}
	sym.Container = callable.QualifiedName
	w.add(sym)
}

func (w *javaWalker) recordComponents(params *sitter.Node, sc javaScope) {
	for _, p := range namedChildren(params) {
		if p.Type() != "formal_parameter" {
			continue
		}
		name := p.ChildByFieldName("name")
		if name == nil {
			continue
		}
		sym := w.newSymbol(p, name, model.Field)
		sym.Modifiers = model.Modifiers{model.Private, model.Final}
		if t := p.ChildByFieldName("type"); t != nil {
			sym.Type = CollapseWhitespace(NodeText(t, w.src))
		}
		sym.Container = sc.owner.QualifiedName
		w.add(sym)
	}
}

func (w *javaWalker) fields(n *sitter.Node, sc javaScope) {
	mods, markers := w.modifiers(n)
	if sc.iface || n.Type() == "constant_declaration" {
		mods = withDefaults(mods, model.Public, model.Static, model.Final)
	}
	var typ string
	if t := n.ChildByFieldName("type"); t != nil {
		typ = CollapseWhitespace(NodeText(t, w.src))
	}
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		if name == nil {
			continue
		}
		sym := w.newSymbol(n, name, model.Field)
		sym.Modifiers = append(model.Modifiers(nil), mods...)
		sym.Markers = markers
		sym.Type = typ
		if sc.owner != nil {
			sym.Container = sc.owner.QualifiedName
		}
		w.documentation(n, sym)
		w.add(sym)
	}
}

func (w *javaWalker) enumConstant(n *sitter.Node, sc javaScope) {
	name := n.ChildByFieldName("name")
	if name == nil || sc.owner == nil {
		return
	}
	sym := w.newSymbol(n, name, model.EnumConstant)
	mods, markers := w.modifiers(n)
	sym.Modifiers = withDefaults(mods, model.Public, model.Static, model.Final)
	sym.Markers = markers
	sym.Type = sc.owner.Name
	sym.Container = sc.owner.QualifiedName
	w.documentation(n, sym)
	w.add(sym)
}

// localContainer is the qualified name locals declared in sc belong to.
func localContainer(sc javaScope) string {
	switch {
	case sc.callable != nil:
		return sc.callable.QualifiedName
	case sc.owner != nil:
		return sc.owner.QualifiedName
	}
	return ""
}

func (w *javaWalker) locals(n *sitter.Node, sc javaScope) {
	mods, markers := w.modifiers(n)
	var typ string
	if t := n.ChildByFieldName("type"); t != nil {
		typ = CollapseWhitespace(NodeText(t, w.src))
	}
	for _, d := range namedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		if name == nil {
			continue
		}
		sym := w.newSymbol(d, name, model.Variable)
		sym.Modifiers = append(model.Modifiers(nil), mods...)
		sym.Markers = markers
		sym.Type = typ
		sym.Container = localContainer(sc)
		w.add(sym)
	}
}

func (w *javaWalker) forVariable(n *sitter.Node, sc javaScope) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	sym := w.newSymbol(n, name, model.Variable)
	if t := n.ChildByFieldName("type"); t != nil {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	}
	sym.Container = localContainer(sc)
	w.add(sym)
}

func (w *javaWalker) catchParameter(n *sitter.Node, sc javaScope) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	sym := w.newSymbol(n, name, model.Parameter)
	if t := childOfType(n, "catch_type"); t != nil {
		sym.Type = CollapseWhitespace(NodeText(t, w.src))
	}
	sym.Container = localContainer(sc)
	w.add(sym)
}

func (w *javaWalker) importDecl(n *sitter.Node) {
	var path *sitter.Node
	for _, c := range namedChildren(n) {
		if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
			path = c
			break
		}
	}
	if path == nil {
		return
	}
	full := NodeText(path, w.src)
	sym := &model.Symbol{
		Kind:          model.Import,
		QualifiedName: full,
		Location:      Location(path, w.path),
		Extent:        Location(n, w.path),
		Package:       w.info.Package,
		Language:      "java",
	}
	if childOfType(n, "static") != nil {
		sym.Modifiers = model.Modifiers{model.Static}
	}
	if childOfType(n, "asterisk") != nil {
		sym.Name = "*"
	} else {
		sym.Name = full[strings.LastIndex(full, ".")+1:]
	}
	w.info.Imports = append(w.info.Imports, sym)
}

// modifiers reads the modifier keywords and annotation names of a
// declaration.
func (w *javaWalker) modifiers(n *sitter.Node) (model.Modifiers, []string) {
	mn := childOfType(n, "modifiers")
	if mn == nil {
		return nil, nil
	}
	var mods model.Modifiers
	var markers []string
	for i := 0; i < int(mn.ChildCount()); i++ {
		c := mn.Child(i)
		switch c.Type() {
		case "marker_annotation", "annotation":
			if name := c.ChildByFieldName("name"); name != nil {
				markers = append(markers, NodeText(name, w.src))
			}
		default:
			switch m := model.Modifier(NodeText(c, w.src)); m {
			case model.Public, model.Protected, model.Private, model.Static,
				model.Final, model.Abstract, model.Default:
				mods = append(mods, m)
			}
		}
	}
	return mods, markers
}

// documentation attaches the Javadoc immediately preceding n and derives
// deprecation from it and from the annotation.
func (w *javaWalker) documentation(n *sitter.Node, sym *model.Symbol) {
	if prev := n.PrevSibling(); prev != nil && prev.Type() == "block_comment" {
		text := NodeText(prev, w.src)
		if strings.HasPrefix(text, "/**") {
			sym.Doc = firstLine(text)
			if strings.Contains(text, "@deprecated") {
				sym.Deprecated = true
			}
		}
	}
	if sym.HasMarker("Deprecated") {
		sym.Deprecated = true
	}
}

// withDefaults adds implicit modifiers. An implicit Public is only added
// when no access keyword is present.
func withDefaults(mods model.Modifiers, implicit ...model.Modifier) model.Modifiers {
	out := append(model.Modifiers(nil), mods...)
	for _, m := range implicit {
		if out.Has(m) {
			continue
		}
		if m == model.Public && (out.Has(model.Private) || out.Has(model.Protected)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// javaStops end upward searches for conditions and argument lists.
var javaStops = map[string]bool{
	"block":                      true,
	"expression_statement":       true,
	"local_variable_declaration": true,
	"return_statement":           true,
	"class_body":                 true,
	"lambda_expression":          true,
	"method_declaration":         true,
	"constructor_declaration":    true,
	"field_declaration":          true,
}

func javaAnalyze(leaf *sitter.Node, src []byte) (Facts, bool) {
	f := Facts{QualifierAt: -1}
	switch leaf.Type() {
	case "line_comment":
		f.Comment = host.LineComment
		return f, true
	case "block_comment":
		f.Comment = host.BlockComment
		if strings.HasPrefix(NodeText(leaf, src), "/**") {
			f.Comment = host.DocComment
		}
		return f, true
	case "identifier", "type_identifier":
	default:
		return f, false
	}
	f.Text = NodeText(leaf, src)

	p := leaf.Parent()
	if p == nil {
		return f, true
	}

	// Dotted names: imports, packages and annotation names.
	top := leaf
	for top.Parent() != nil && top.Parent().Type() == "scoped_identifier" {
		top = top.Parent()
	}
	if tp := top.Parent(); tp != nil {
		switch tp.Type() {
		case "import_declaration":
			f.ImportPath = string(src[top.StartByte():leaf.EndByte()])
			switch {
			case childOfType(tp, "static") != nil:
				f.Import = host.StaticImport
			case childOfType(tp, "asterisk") != nil:
				f.Import = host.WildcardImport
			default:
				f.Import = host.SingleImport
			}
			return f, true
		case "package_declaration":
			return f, false
		case "marker_annotation", "annotation":
			if isField(tp, "name", top) {
				f.InAnnotation = true
				return f, true
			}
		}
	}

	if leaf.Type() == "type_identifier" {
		javaTypePosition(leaf, src, &f)
		return f, true
	}

	unit := leaf
	switch {
	case p.Type() == "method_invocation" && isField(p, "name", leaf):
		f.Invocation = true
		f.ArgCount = argCount(p)
		javaQualifier(p.ChildByFieldName("object"), &f)
		unit = p
	case p.Type() == "field_access" && isField(p, "field", leaf):
		f.Access = true
		javaQualifier(p.ChildByFieldName("object"), &f)
		unit = p
	case p.Type() == "method_reference":
		return f, true
	case isDeclarationName(p, leaf):
		f.Role = javaRole(leaf, p)
		return f, true
	default:
		f.Access = true
	}

	javaExpressionFacts(unit, &f)
	return f, true
}

func isDeclarationName(p, leaf *sitter.Node) bool {
	switch p.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration",
		"annotation_type_declaration", "method_declaration", "constructor_declaration",
		"variable_declarator", "formal_parameter", "catch_formal_parameter", "enum_constant",
		"enhanced_for_statement":
		return isField(p, "name", leaf)
	}
	return false
}

func argCount(call *sitter.Node) int {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return 0
	}
	return len(namedChildren(args))
}

// javaQualifier records how a member access is qualified.
func javaQualifier(obj *sitter.Node, f *Facts) {
	if obj == nil {
		f.Qualifier = host.QualifiedImplicit
		return
	}
	switch obj.Type() {
	case "this":
		f.Qualifier = host.QualifiedThis
		return
	case "super":
		f.Qualifier = host.QualifiedSuper
		return
	}
	f.Qualifier = host.QualifiedExpr
	if at := qualifierName(obj); at != nil {
		f.QualifierAt = int(at.StartByte())
	}
}

// qualifierName finds the identifier whose declaration types obj.
func qualifierName(obj *sitter.Node) *sitter.Node {
	switch obj.Type() {
	case "identifier", "type_identifier":
		return obj
	case "field_access":
		if field := obj.ChildByFieldName("field"); field != nil && field.Type() == "identifier" {
			return field
		}
	case "method_invocation":
		return obj.ChildByFieldName("name")
	case "object_creation_expression":
		if t := obj.ChildByFieldName("type"); t != nil {
			return lastTypeIdentifier(t)
		}
	case "parenthesized_expression":
		if inner := obj.NamedChild(0); inner != nil && inner.Type() == "cast_expression" {
			if t := inner.ChildByFieldName("type"); t != nil {
				return lastTypeIdentifier(t)
			}
		}
	}
	return nil
}

func lastTypeIdentifier(t *sitter.Node) *sitter.Node {
	switch t.Type() {
	case "type_identifier":
		return t
	case "generic_type":
		if base := t.NamedChild(0); base != nil {
			return lastTypeIdentifier(base)
		}
	case "scoped_type_identifier":
		var last *sitter.Node
		for _, c := range namedChildren(t) {
			if c.Type() == "type_identifier" {
				last = c
			}
		}
		return last
	}
	return nil
}

func javaTypePosition(leaf *sitter.Node, src []byte, f *Facts) {
	t := leaf
	for {
		p := t.Parent()
		if p == nil {
			break
		}
		if p.Type() == "scoped_type_identifier" || p.Type() == "array_type" ||
			(p.Type() == "generic_type" && t.Type() != "type_arguments") {
			t = p
			continue
		}
		break
	}

	p := t.Parent()
	if p == nil {
		f.Type = host.OtherType
		return
	}
	switch p.Type() {
	case "object_creation_expression":
		if isField(p, "type", t) {
			f.Construction = host.ObjectCreation
			f.ArgCount = argCount(p)
			javaExpressionFacts(p, f)
			return
		}
	case "array_creation_expression":
		if isField(p, "type", t) {
			f.Construction = host.ArrayCreation
			f.ArrayInitializer = p.ChildByFieldName("value") != nil
			javaExpressionFacts(p, f)
			return
		}
	case "local_variable_declaration":
		f.Type = host.LocalVariableType
	case "formal_parameter", "spread_parameter":
		f.Type = host.ParameterType
	case "catch_type":
		f.Type = host.CatchType
	case "method_declaration":
		if isField(p, "type", t) {
			f.Type = host.ReturnType
		}
	case "field_declaration", "constant_declaration":
		f.Type = host.FieldType
	case "instanceof_expression":
		f.Type = host.InstanceofType
	case "cast_expression":
		f.Type = host.CastType
	}
	if f.Type == host.NoTypePosition {
		f.Type = host.OtherType
	}
	f.Role = javaRole(t, p)
}

// javaExpressionFacts fills assignment, increment, condition, argument and
// data-flow facts for the expression unit the occurrence belongs to.
func javaExpressionFacts(unit *sitter.Node, f *Facts) {
	p := unit.Parent()
	if p == nil {
		return
	}
	switch p.Type() {
	case "assignment_expression":
		switch {
		case isField(p, "left", unit):
			f.Assign = host.AssignLeft
		case isField(p, "right", unit):
			f.Assign = host.AssignRight
		}
	case "update_expression":
		f.Increment = host.PostfixIncrement
		if first := p.Child(0); first != nil && !first.IsNamed() {
			f.Increment = host.PrefixIncrement
		}
	}

	for a, pa := unit, p; pa != nil && !javaStops[pa.Type()]; a, pa = pa, pa.Parent() {
		switch pa.Type() {
		case "if_statement", "while_statement", "do_statement", "for_statement",
			"ternary_expression", "switch_expression":
			if isField(pa, "condition", a) {
				f.InCondition = true
			}
		case "argument_list":
			f.InArguments = true
		}
	}

	f.Role = javaRole(unit, p)
}

func javaRole(unit, p *sitter.Node) host.ParentRole {
	switch p.Type() {
	case "assignment_expression":
		if isField(p, "left", unit) {
			return host.RoleAssignTarget
		}
		return host.RoleAssignValue
	case "return_statement":
		return host.RoleReturn
	case "argument_list":
		if gp := p.Parent(); gp != nil && (gp.Type() == "object_creation_expression" || gp.Type() == "explicit_constructor_invocation") {
			return host.RoleConstructorArgument
		}
		return host.RoleArgument
	case "parenthesized_expression":
		if gp := p.Parent(); gp != nil && isField(gp, "condition", p) {
			switch gp.Type() {
			case "if_statement":
				return host.RoleCondition
			case "while_statement", "do_statement":
				return host.RoleLoopCondition
			}
		}
	case "for_statement":
		switch {
		case isField(p, "condition", unit):
			return host.RoleLoopCondition
		case isField(p, "init", unit), isField(p, "update", unit):
			return host.RoleLoopInit
		}
	case "enhanced_for_statement":
		if isField(p, "value", unit) {
			return host.RoleLoopInit
		}
		return host.RoleVariableDeclaration
	case "ternary_expression":
		if isField(p, "condition", unit) {
			return host.RoleCondition
		}
	case "variable_declarator":
		decl := p.Parent()
		switch {
		case decl == nil:
		case decl.Type() == "field_declaration" || decl.Type() == "constant_declaration":
			if isField(p, "value", unit) {
				return host.RoleFieldInitializer
			}
		case decl.Parent() != nil && decl.Parent().Type() == "for_statement":
			return host.RoleLoopInit
		}
		return host.RoleVariableDeclaration
	case "local_variable_declaration", "field_declaration":
		return host.RoleVariableDeclaration
	case "formal_parameter", "spread_parameter", "catch_formal_parameter", "catch_type":
		return host.RoleParameterDeclaration
	case "method_declaration":
		if isField(p, "type", unit) {
			return host.RoleReturnTypeDeclaration
		}
	case "update_expression":
		if first := p.Child(0); first != nil && !first.IsNamed() {
			return host.RolePrefixOp
		}
		return host.RolePostfixOp
	case "unary_expression":
		return host.RolePrefixOp
	case "binary_expression", "instanceof_expression":
		return host.RoleBinaryOp
	}
	return host.RoleNone
}
