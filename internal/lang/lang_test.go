package lang

import (
	"context"
	"reflect"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".java", "java"},
		{".go", ""},
		{".js", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"java", "python"} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if l.GetLanguage() == nil {
			t.Errorf("%s language is nil", name)
		}
		if l.Extract == nil || l.Analyze == nil {
			t.Errorf("%s hooks not set", name)
		}
		if l.NewParser() == nil {
			t.Errorf("%s NewParser returned nil", name)
		}
	}
}

func TestPythonModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"demo/user.py", "demo.user"},
		{"demo/__init__.py", "demo"},
		{"main.py", "main"},
		{"__init__.py", ""},
	}
	for _, tt := range tests {
		if got := PythonModule(tt.path); got != tt.want {
			t.Errorf("PythonModule(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	types := map[string]string{
		"List<User>":       "List",
		"User[]":           "User",
		"'User'":           "User",
		"Optional['User']": "User",
		"Optional[int]":    "int",
		"String...":        "String",
		"com.example.User": "com.example.User",
	}
	for in, want := range types {
		if got := BaseType(in); got != want {
			t.Errorf("BaseType(%q) = %q, want %q", in, got, want)
		}
	}
	if !isUpperSnake("MAX_USERS") || isUpperSnake("maxUsers") || isUpperSnake("_") {
		t.Error("isUpperSnake misclassified")
	}
	if got := firstLine("/**\n * Creates a user.\n * @param name the name\n */"); got != "Creates a user." {
		t.Errorf("firstLine = %q", got)
	}
	if got := CollapseWhitespace("  String\n\t  label "); got != "String label" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}

const javaSrc = `package com.example;

import java.util.List;

/** A shape. */
public abstract class Shape implements Drawable {
    private int count;

    public abstract double area();

    @Deprecated
    public void draw(String label) {
        // draw it
        List<String> names = new ArrayList<>();
        count++;
        this.count = names.size();
        helper("x");
    }
}
`

const pythonSrc = `import os
from .models import User as U


class Greeter(Base):
    """Says hello."""

    GREETING = "hi"

    def __init__(self, name: str):
        self.name = name

    @staticmethod
    def make(n):
        # build one
        return Greeter(n)

    def greet(self):
        if self.name:
            print(self.name)
`

func parse(t *testing.T, language, src string) *sitter.Node {
	t.Helper()
	tree, err := Languages[language].NewParser().ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree.RootNode()
}

func byQualifiedName(info *FileInfo) map[string]*model.Symbol {
	out := make(map[string]*model.Symbol)
	for _, s := range info.Symbols {
		if _, ok := out[s.QualifiedName]; !ok {
			out[s.QualifiedName] = s
		}
	}
	return out
}

func TestJavaExtract(t *testing.T) {
	t.Parallel()

	root := parse(t, "java", javaSrc)
	info := javaExtract(root, []byte(javaSrc), "src/Shape.java")

	if info.Package != "com.example" {
		t.Errorf("Package = %q, want com.example", info.Package)
	}
	syms := byQualifiedName(info)

	shape := syms["com.example.Shape"]
	if shape == nil {
		t.Fatal("Shape not extracted")
	}
	if shape.Kind != model.Class || !shape.Modifiers.Has(model.Abstract) || !shape.Modifiers.Has(model.Public) {
		t.Errorf("Shape = %+v", shape)
	}
	if !reflect.DeepEqual(shape.Supertypes, []string{"Drawable"}) {
		t.Errorf("Shape.Supertypes = %v, want [Drawable]", shape.Supertypes)
	}
	if shape.Doc != "A shape." {
		t.Errorf("Shape.Doc = %q, want %q", shape.Doc, "A shape.")
	}
	if shape.Container != "com.example" {
		t.Errorf("Shape.Container = %q", shape.Container)
	}
	if want := strings.Index(javaSrc, "Shape implements"); shape.Location.Start != want {
		t.Errorf("Shape.Location.Start = %d, want %d", shape.Location.Start, want)
	}

	count := syms["com.example.Shape.count"]
	if count == nil || count.Kind != model.Field || count.Type != "int" || !count.Modifiers.Has(model.Private) {
		t.Errorf("count = %+v", count)
	}

	area := syms["com.example.Shape.area"]
	if area == nil || area.Kind != model.Method || !area.Modifiers.Has(model.Abstract) || area.Type != "double" {
		t.Errorf("area = %+v", area)
	}

	draw := syms["com.example.Shape.draw"]
	if draw == nil {
		t.Fatal("draw not extracted")
	}
	if !draw.Deprecated {
		t.Error("draw.Deprecated = false, want true")
	}
	if !reflect.DeepEqual(draw.Parameters, []string{"String label"}) {
		t.Errorf("draw.Parameters = %v", draw.Parameters)
	}

	if p := syms["com.example.Shape.draw.label"]; p == nil || p.Kind != model.Parameter || p.Type != "String" {
		t.Errorf("label = %+v", p)
	}
	if v := syms["com.example.Shape.draw.names"]; v == nil || v.Kind != model.Variable || v.Type != "List<String>" {
		t.Errorf("names = %+v", v)
	}

	if len(info.Imports) != 1 {
		t.Fatalf("Imports = %d, want 1", len(info.Imports))
	}
	if imp := info.Imports[0]; imp.Name != "List" || imp.QualifiedName != "java.util.List" {
		t.Errorf("import = %s %s", imp.Name, imp.QualifiedName)
	}
}

func TestJavaAnnotationElements(t *testing.T) {
	t.Parallel()

	const src = `package com.example;

public @interface Audited {
    /** Who performed the change. */
    String actor() default "system";
    int[] levels();
}
`
	root := parse(t, "java", src)
	syms := byQualifiedName(javaExtract(root, []byte(src), "src/Audited.java"))

	if a := syms["com.example.Audited"]; a == nil || a.Kind != model.Annotation {
		t.Fatalf("Audited = %+v", a)
	}
	actor := syms["com.example.Audited.actor"]
	if actor == nil {
		t.Fatal("actor not extracted")
	}
	if actor.Kind != AnnotationElement || actor.Kind.CustomName() != "annotation_element" {
		t.Errorf("actor.Kind = %q", actor.Kind)
	}
	if actor.Type != "String" || actor.Doc != "Who performed the change." || !actor.Modifiers.Has(model.Public) {
		t.Errorf("actor = %+v", actor)
	}
	if !actor.Extent.Contains(strings.Index(src, `"system"`)) {
		t.Errorf("actor.Extent = %+v does not cover the default value", actor.Extent)
	}
	if levels := syms["com.example.Audited.levels"]; levels == nil || levels.Type != "int[]" {
		t.Errorf("levels = %+v", levels)
	}
}

// analyzeAt runs the language hook on the leaf at the nth byte of needle.
func analyzeAt(t *testing.T, language, src, needle string, delta int) (Facts, bool) {
	t.Helper()
	idx := strings.Index(src, needle)
	if idx < 0 {
		t.Fatalf("needle %q not found", needle)
	}
	root := parse(t, language, src)
	leaf := LeafAt(root, idx+delta)
	if leaf == nil {
		t.Fatalf("no leaf at %q", needle)
	}
	return Languages[language].Analyze(leaf, []byte(src))
}

func TestJavaAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("implicit call", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, `helper("x")`, 0)
		if !ok || !f.Invocation || f.Qualifier != host.QualifiedImplicit || f.ArgCount != 1 {
			t.Errorf("facts = %+v", f)
		}
		if f.Text != "helper" {
			t.Errorf("Text = %q", f.Text)
		}
	})

	t.Run("qualified call", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "size()", 0)
		if !ok || !f.Invocation || f.Qualifier != host.QualifiedExpr {
			t.Errorf("facts = %+v", f)
		}
		if want := strings.Index(javaSrc, "names.size"); f.QualifierAt != want {
			t.Errorf("QualifierAt = %d, want %d", f.QualifierAt, want)
		}
		if f.Role != host.RoleAssignValue {
			t.Errorf("Role = %v, want RoleAssignValue", f.Role)
		}
	})

	t.Run("construction", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "ArrayList", 0)
		if !ok || f.Construction != host.ObjectCreation || f.ArgCount != 0 {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("increment", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "count++", 0)
		if !ok || !f.Access || f.Increment != host.PostfixIncrement {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("this write", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "this.count", 5)
		if !ok || !f.Access || f.Qualifier != host.QualifiedThis || f.Assign != host.AssignLeft {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("local type", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "List<String> names", 0)
		if !ok || f.Type != host.LocalVariableType {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("import", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "List;", 0)
		if !ok || f.Import != host.SingleImport || f.ImportPath != "java.util.List" {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("annotation", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "Deprecated", 0)
		if !ok || !f.InAnnotation {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("comment", func(t *testing.T) {
		f, ok := analyzeAt(t, "java", javaSrc, "draw it", 0)
		if !ok || f.Comment != host.LineComment {
			t.Errorf("facts = %+v", f)
		}
		f, ok = analyzeAt(t, "java", javaSrc, "A shape", 0)
		if !ok || f.Comment != host.DocComment {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("string", func(t *testing.T) {
		if _, ok := analyzeAt(t, "java", javaSrc, `"x"`, 1); ok {
			t.Error("string literal reported as occurrence")
		}
	})
}

func TestPythonExtract(t *testing.T) {
	t.Parallel()

	root := parse(t, "python", pythonSrc)
	info := pythonExtract(root, []byte(pythonSrc), "pkg/greet.py")

	if info.Package != "pkg.greet" {
		t.Errorf("Package = %q, want pkg.greet", info.Package)
	}
	syms := byQualifiedName(info)

	g := syms["pkg.greet.Greeter"]
	if g == nil {
		t.Fatal("Greeter not extracted")
	}
	if g.Kind != model.Class || g.Doc != "Says hello." || !reflect.DeepEqual(g.Supertypes, []string{"Base"}) {
		t.Errorf("Greeter = %+v", g)
	}

	if c := syms["pkg.greet.Greeter.GREETING"]; c == nil || c.Kind != model.Constant {
		t.Errorf("GREETING = %+v", c)
	}

	init := syms["pkg.greet.Greeter.__init__"]
	if init == nil || init.Kind != model.Constructor {
		t.Fatalf("__init__ = %+v", init)
	}
	if !reflect.DeepEqual(init.Parameters, []string{"name: str"}) {
		t.Errorf("__init__.Parameters = %v", init.Parameters)
	}

	if f := syms["pkg.greet.Greeter.name"]; f == nil || f.Kind != model.Field {
		t.Errorf("name field = %+v", f)
	}
	if m := syms["pkg.greet.Greeter.make"]; m == nil || m.Kind != model.Method || !m.Modifiers.Has(model.Static) {
		t.Errorf("make = %+v", m)
	}

	imports := map[string]string{}
	for _, imp := range info.Imports {
		imports[imp.Name] = imp.QualifiedName
	}
	want := map[string]string{"os": "os", "U": "pkg.models.User"}
	if !reflect.DeepEqual(imports, want) {
		t.Errorf("imports = %v, want %v", imports, want)
	}
}

func TestPythonFinal(t *testing.T) {
	t.Parallel()

	const src = "from typing import Final\n\nlimit: Final[int] = 4\ncount: int = 0\n"
	info := pythonExtract(parse(t, "python", src), []byte(src), "cfg.py")
	syms := byQualifiedName(info)
	if s := syms["cfg.limit"]; s == nil || !s.Modifiers.Has(model.Final) {
		t.Errorf("cfg.limit = %+v, want final", s)
	}
	if s := syms["cfg.count"]; s == nil || s.Modifiers.Has(model.Final) {
		t.Errorf("cfg.count = %+v, want not final", s)
	}
}

func TestPythonAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("call", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "Greeter(n)", 0)
		if !ok || !f.Invocation || f.ArgCount != 1 || f.Qualifier != host.Unqualified {
			t.Errorf("facts = %+v", f)
		}
		if f.Role != host.RoleReturn {
			t.Errorf("Role = %v, want RoleReturn", f.Role)
		}
	})

	t.Run("self access in condition", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "if self.name", 8)
		if !ok || !f.Access || f.Qualifier != host.QualifiedThis || !f.InCondition {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("argument", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "print(self.name)", 11)
		if !ok || !f.Access || !f.InArguments {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("parameter type", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "str)", 0)
		if !ok || f.Type != host.ParameterType {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("write", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "self.name = name", 5)
		if !ok || !f.Access || f.Assign != host.AssignLeft {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("decorator", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "staticmethod", 0)
		if !ok || !f.InAnnotation {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("comments", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "build one", 0)
		if !ok || f.Comment != host.LineComment {
			t.Errorf("facts = %+v", f)
		}
		f, ok = analyzeAt(t, "python", pythonSrc, "Says hello", 0)
		if !ok || f.Comment != host.DocComment {
			t.Errorf("facts = %+v", f)
		}
	})

	t.Run("string", func(t *testing.T) {
		if _, ok := analyzeAt(t, "python", pythonSrc, `"hi"`, 1); ok {
			t.Error("string literal reported as occurrence")
		}
	})

	t.Run("type checks", func(t *testing.T) {
		const src = "def f(x):\n    if isinstance(x, Shape):\n        return cast(Shape, x)\n"
		f, ok := analyzeAt(t, "python", src, "Shape)", 0)
		if !ok || f.Type != host.InstanceofType {
			t.Errorf("isinstance facts = %+v", f)
		}
		f, ok = analyzeAt(t, "python", src, "Shape, x", 0)
		if !ok || f.Type != host.CastType {
			t.Errorf("cast facts = %+v", f)
		}
	})

	t.Run("import", func(t *testing.T) {
		f, ok := analyzeAt(t, "python", pythonSrc, "User as U", 0)
		if !ok || f.Import != host.SingleImport || f.ImportPath != ".models.User" {
			t.Errorf("facts = %+v", f)
		}
	})
}

func TestLeafAt(t *testing.T) {
	t.Parallel()

	root := parse(t, "java", javaSrc)
	idx := strings.Index(javaSrc, "helper")
	leaf := LeafAt(root, idx+2)
	if leaf == nil || NodeText(leaf, []byte(javaSrc)) != "helper" {
		t.Errorf("LeafAt = %v", leaf)
	}
	if LeafAt(root, -1) != nil || LeafAt(root, len(javaSrc)+10) != nil {
		t.Error("LeafAt out of range should be nil")
	}
}
