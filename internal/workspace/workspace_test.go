package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/refscope/internal/config"
	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/lang"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/slogutil"
)

var javaFiles = map[string]string{
	"src/demo/Shape.java": `package demo;

/** A shape. */
public abstract class Shape {
    protected int sides;

    public abstract double area();

    public int getSides() {
        return sides;
    }
}
`,
	"src/demo/Square.java": `package demo;

public class Square extends Shape {
    private double side;

    public Square(double side) {
        this.side = side;
        sides = 4;
    }

    @Override
    public double area() {
        return side * side;
    }
}
`,
	"src/app/Main.java": `package app;

import demo.Shape;
import demo.Square;

public class Main {
    public static void main(String[] args) {
        Shape s = new Square(2.0);
        // prints the Square area
        System.out.println(s.area());
        String label = "Square";
    }
}
`,
}

var pythonFiles = map[string]string{
	"shop/__init__.py": "",
	"shop/models.py": `class Item:
    """An item."""

    def __init__(self, price):
        self.price = price

    def total(self, qty):
        return self.price * qty


def make():
    return Item(3)
`,
	"shop/cart.py": `from .models import Item
from shop import models


def build():
    item = Item(1)
    other = models.make()
    # Item is cheap
    return item.total(2)
`,
}

var past = time.Now().Add(-time.Hour)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(p, past, past))
	}
}

func load(t *testing.T, files map[string]string, tweak func(*config.Config)) *Workspace {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)
	cfg := config.Default()
	if tweak != nil {
		tweak(cfg)
	}
	w, err := Load(context.Background(), root, cfg, slogutil.NewDiscardLogger())
	require.NoError(t, err)
	return w
}

// offsetOf returns the offset of the nth (0-based) occurrence of needle in file.
func offsetOf(t *testing.T, files map[string]string, file, needle string, nth int) int {
	t.Helper()
	src := files[file]
	off := -1
	for i := 0; i <= nth; i++ {
		j := strings.Index(src[off+1:], needle)
		require.GreaterOrEqual(t, j, 0, "%q #%d not in %s", needle, nth, file)
		off += j + 1
	}
	return off
}

func symbolNamed(t *testing.T, w *Workspace, qname string) *model.Symbol {
	t.Helper()
	syms := w.byQName[qname]
	require.NotEmpty(t, syms, "no symbol %s", qname)
	return syms[0]
}

func TestLoad(t *testing.T) {
	t.Parallel()

	w := load(t, javaFiles, nil)
	assert.Equal(t, []string{"src/app/Main.java", "src/demo/Shape.java", "src/demo/Square.java"}, w.Files())
	assert.True(t, filepath.IsAbs(w.Root()))

	square := symbolNamed(t, w, "demo.Square")
	assert.Equal(t, model.Class, square.Kind)
	assert.Equal(t, []string{"Shape"}, square.Supertypes)
	assert.False(t, square.Library)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := slogutil.NewDiscardLogger()

	_, err := Load(ctx, filepath.Join(t.TempDir(), "missing"), config.Default(), logger)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.py")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Load(ctx, file, config.Default(), logger)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Workspace.Languages = []string{"cobol"}
	_, err = Load(ctx, t.TempDir(), cfg, logger)
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput), "err = %v", err)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)

	types, err := w.SearchTypes(ctx, "shape")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "demo.Shape", types[0].QualifiedName)

	callables, err := w.SearchCallables(ctx, "AREA")
	require.NoError(t, err)
	var names []string
	for _, c := range callables {
		names = append(names, c.QualifiedName)
	}
	assert.ElementsMatch(t, []string{"demo.Shape.area", "demo.Square.area"}, names)

	fields, err := w.SearchFields(ctx, "side")
	require.NoError(t, err)
	names = nil
	for _, f := range fields {
		names = append(names, f.QualifiedName)
	}
	// The constructor parameter named side is not searchable.
	assert.ElementsMatch(t, []string{"demo.Shape.sides", "demo.Square.side"}, names)

	none, err := w.SearchTypes(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMembersAndFileSymbols(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)

	members, err := w.Members(ctx, "demo.Square")
	require.NoError(t, err)
	kinds := make(map[string]model.SymbolKind)
	for _, m := range members {
		kinds[m.Name] = m.Kind
	}
	assert.Equal(t, model.Field, kinds["side"])
	assert.Equal(t, model.Constructor, kinds["Square"])
	assert.Equal(t, model.Method, kinds["area"])

	syms, err := w.FileSymbols(ctx, "src/demo/Shape.java")
	require.NoError(t, err)
	require.NotEmpty(t, syms)
	assert.Equal(t, "Shape", syms[0].Name)

	_, err = w.FileSymbols(ctx, "nope.java")
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput))

	abs := filepath.Join(w.Root(), "src", "demo", "Shape.java")
	byAbs, err := w.FileSymbols(ctx, abs)
	require.NoError(t, err)
	assert.Len(t, byAbs, len(syms))
}

func TestDeclarations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)

	start := offsetOf(t, javaFiles, "src/demo/Square.java", "side;", 0)
	decls, err := w.Declarations(ctx, "src/demo/Square.java", start, start+1)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "demo.Square.side", decls[0].QualifiedName)
}

func TestHierarchy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	shape := symbolNamed(t, w, "demo.Shape")
	square := symbolNamed(t, w, "demo.Square")

	subs, err := w.Subtypes(ctx, shape, 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].Same(square))

	supers, err := w.Supertypes(ctx, square)
	require.NoError(t, err)
	require.Len(t, supers, 1)
	assert.True(t, supers[0].Same(shape))

	ok, err := w.IsStrictSubtype(ctx, "demo.Square", "demo.Shape")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.IsStrictSubtype(ctx, "demo.Shape", "demo.Shape")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveJava(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	const main = "src/app/Main.java"

	tests := []struct {
		name   string
		needle string
		nth    int
		want   string
	}{
		{"qualified call through local type", "area()", 0, "demo.Shape.area"},
		{"constructor type", "Square(", 0, "demo.Square"},
		{"declared type", "Shape s", 0, "demo.Shape"},
		{"import", "Square;", 0, "demo.Square"},
		{"local variable", "s.area", 0, "app.Main.main.s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off := offsetOf(t, javaFiles, main, tt.needle, tt.nth)
			sym, err := w.Resolve(ctx, main, off)
			require.NoError(t, err)
			require.NotNil(t, sym)
			assert.Equal(t, tt.want, sym.QualifiedName)
		})
	}

	// Declaration names and string contents resolve to nothing.
	off := offsetOf(t, javaFiles, main, "Main {", 0)
	sym, err := w.Resolve(ctx, main, off)
	require.NoError(t, err)
	assert.Nil(t, sym)

	off = offsetOf(t, javaFiles, main, `"Square"`, 0) + 1
	sym, err = w.Resolve(ctx, main, off)
	require.NoError(t, err)
	assert.Nil(t, sym)

	_, err = w.Resolve(ctx, main, 1<<20)
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput))

	_, err = w.Resolve(ctx, "src/app/Missing.java", 0)
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput))
}

func TestResolveForeignReceiver(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/demo/Role.java": `package demo;

public class Role {
    static final String ADMIN = "ADMIN";
    private String name;
    private Role parent;

    @Override
    public boolean equals(Object o) {
        return ADMIN.equals(name) || "ADMIN".equals(o);
    }

    public boolean same(Role other) {
        return other.equals(parent);
    }
}
`,
		"util/text.py": `class Text:
    def join(self, parts):
        return ",".join(parts)
`,
	}
	ctx := context.Background()
	w := load(t, files, nil)
	const (
		role = "src/demo/Role.java"
		text = "util/text.py"
	)

	tests := []struct {
		name   string
		file   string
		needle string
		skip   int
		want   string
	}{
		{"String field receiver", role, "ADMIN.equals", len("ADMIN."), ""},
		{"string literal receiver", role, `"ADMIN".equals`, len(`"ADMIN".`), ""},
		{"project type receiver", role, "other.equals", len("other."), "demo.Role.equals"},
		{"python literal receiver", text, `",".join`, len(`",".`), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := w.Resolve(ctx, tt.file, offsetOf(t, files, tt.file, tt.needle, 0)+tt.skip)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, sym)
				return
			}
			require.NotNil(t, sym)
			assert.Equal(t, tt.want, sym.QualifiedName)
		})
	}
}

func TestResolveAnnotationElement(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/demo/Audited.java": `package demo;

public @interface Audited {
    String actor() default "system";
}
`,
		"src/demo/Ledger.java": `package demo;

public class Ledger {
    String who(Audited audited) {
        return audited.actor();
    }
}
`,
	}
	w := load(t, files, nil)
	const ledger = "src/demo/Ledger.java"

	sym, err := w.Resolve(context.Background(), ledger, offsetOf(t, files, ledger, "actor()", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Audited.actor", sym.QualifiedName)
	assert.Equal(t, lang.AnnotationElement, sym.Kind)
}

func TestResolveInheritedField(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	const square = "src/demo/Square.java"

	sym, err := w.Resolve(ctx, square, offsetOf(t, javaFiles, square, "sides = 4", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Shape.sides", sym.QualifiedName)

	// this.side is the field, the right-hand side is the parameter.
	sym, err = w.Resolve(ctx, square, offsetOf(t, javaFiles, square, "side = side", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Square.side", sym.QualifiedName)

	sym, err = w.Resolve(ctx, square, offsetOf(t, javaFiles, square, "side;\n        sides", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, model.Parameter, sym.Kind)
}

func TestEnclosingDeclaration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	const square = "src/demo/Square.java"

	sym, err := w.EnclosingDeclaration(ctx, square, offsetOf(t, javaFiles, square, "double area", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Square.area", sym.QualifiedName)

	sym, err = w.EnclosingDeclaration(ctx, square, offsetOf(t, javaFiles, square, "extends", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Square", sym.QualifiedName)

	sym, err = w.EnclosingDeclaration(ctx, square, offsetOf(t, javaFiles, square, "return side", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Square.area", sym.QualifiedName)

	sym, err = w.EnclosingDeclaration(ctx, square, offsetOf(t, javaFiles, square, "private", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "demo.Square", sym.QualifiedName)

	sym, err = w.EnclosingDeclaration(ctx, square, offsetOf(t, javaFiles, square, "package", 0))
	require.NoError(t, err)
	assert.Nil(t, sym)

	_, err = w.EnclosingDeclaration(ctx, "src/demo/Missing.java", 0)
	assert.Error(t, err)
}

func TestSite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	const (
		main   = "src/app/Main.java"
		square = "src/demo/Square.java"
	)
	at := func(file, needle string) model.Location {
		off := offsetOf(t, javaFiles, file, needle, 0)
		return model.Location{File: file, Start: off}
	}

	site, err := w.Site(ctx, at(main, "Square(2.0)"))
	require.NoError(t, err)
	assert.Equal(t, host.ObjectCreation, site.Construction)
	assert.Equal(t, 1, site.ArgCount)
	require.NotNil(t, site.Callable)
	assert.Equal(t, "main", site.Callable.Name)
	require.NotNil(t, site.Owner)
	assert.Equal(t, "Main", site.Owner.Name)

	site, err = w.Site(ctx, at(main, "area()"))
	require.NoError(t, err)
	assert.True(t, site.Invocation)
	assert.Equal(t, host.QualifiedExpr, site.Qualifier)
	assert.True(t, site.InArguments)

	site, err = w.Site(ctx, at(square, "sides = 4"))
	require.NoError(t, err)
	assert.True(t, site.Access)
	assert.Equal(t, host.AssignLeft, site.Assign)
	assert.Equal(t, host.QualifiedImplicit, site.Qualifier)

	site, err = w.Site(ctx, at(square, "area()"))
	require.NoError(t, err)
	require.NotNil(t, site.Declared)
	assert.Equal(t, "demo.Square.area", site.Declared.QualifiedName)
	assert.Nil(t, site.Callable)
	require.NotNil(t, site.Owner)
	assert.Equal(t, "Square", site.Owner.Name)

	site, err = w.Site(ctx, at(main, "Square area"))
	require.NoError(t, err)
	assert.Equal(t, host.LineComment, site.Comment)
}

func TestOccurrencesJava(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)
	square := symbolNamed(t, w, "demo.Square")

	occs, err := w.Occurrences(ctx, square, 0)
	require.NoError(t, err)
	var lines []int
	for _, o := range occs {
		assert.Equal(t, "src/app/Main.java", o.Location.File)
		assert.Equal(t, "Square", javaFiles[o.Location.File][o.Location.Start:o.Location.End])
		lines = append(lines, o.Location.Line)
	}
	// import, instantiation and the comment; the string literal is skipped.
	assert.Equal(t, []int{4, 8, 9}, lines)

	limited, err := w.Occurrences(ctx, square, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// The comment mention counts, the overriding declaration does not.
	area := symbolNamed(t, w, "demo.Shape.area")
	occs, err = w.Occurrences(ctx, area, 0)
	require.NoError(t, err)
	lines = nil
	for _, o := range occs {
		lines = append(lines, o.Location.Line)
	}
	assert.Equal(t, []int{9, 10}, lines)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = w.Occurrences(cancelled, square, 0)
	assert.Error(t, err)

	_, err = w.Occurrences(ctx, &model.Symbol{}, 0)
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput))
}

func TestPython(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, pythonFiles, nil)

	item := symbolNamed(t, w, "shop.models.Item")
	occs, err := w.Occurrences(ctx, item, 0)
	require.NoError(t, err)
	var got []string
	for _, o := range occs {
		got = append(got, o.Location.File)
	}
	assert.Equal(t, []string{"shop/cart.py", "shop/cart.py", "shop/cart.py", "shop/models.py"}, got)

	total := symbolNamed(t, w, "shop.models.Item.total")
	occs, err = w.Occurrences(ctx, total, 0)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, "shop/cart.py", occs[0].Location.File)

	price := symbolNamed(t, w, "shop.models.Item.price")
	assert.Equal(t, model.Field, price.Kind)
	occs, err = w.Occurrences(ctx, price, 0)
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, 8, occs[0].Location.Line)

	const cart = "shop/cart.py"
	sym, err := w.Resolve(ctx, cart, offsetOf(t, pythonFiles, cart, "make()", 0))
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "shop.models.make", sym.QualifiedName)

	site, err := w.Site(ctx, model.Location{File: cart, Start: offsetOf(t, pythonFiles, cart, "Item(1)", 0)})
	require.NoError(t, err)
	assert.Equal(t, host.ObjectCreation, site.Construction)
	assert.False(t, site.Invocation)
}

func TestTreeCacheEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, func(c *config.Config) { c.Workspace.CacheSize = 1 })
	const main = "src/app/Main.java"

	for range 2 {
		sym, err := w.Resolve(ctx, main, offsetOf(t, javaFiles, main, "area()", 0))
		require.NoError(t, err)
		require.NotNil(t, sym)
		assert.Equal(t, "demo.Shape.area", sym.QualifiedName)

		_, err = w.Resolve(ctx, "src/demo/Shape.java", 0)
		require.NoError(t, err)
	}
}

func TestLineTextAndOffset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, javaFiles, nil)

	line, ok := w.LineText(ctx, "src/app/Main.java", 3)
	assert.True(t, ok)
	assert.Equal(t, "import demo.Shape;", line)

	_, ok = w.LineText(ctx, "missing.java", 1)
	assert.False(t, ok)

	off, err := w.Offset(ctx, "src/app/Main.java", 3, 8)
	require.NoError(t, err)
	assert.Equal(t, offsetOf(t, javaFiles, "src/app/Main.java", "demo.Shape", 0), off)

	_, err = w.Offset(ctx, "missing.java", 1, 1)
	assert.True(t, rerrors.Is(err, rerrors.InvalidInput))
}

func TestStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := load(t, pythonFiles, nil)
	assert.False(t, w.Stale(ctx))

	p := filepath.Join(w.Root(), "shop", "cart.py")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(p, future, future))
	assert.True(t, w.Stale(ctx))

	require.NoError(t, os.Chtimes(p, past, past))
	assert.False(t, w.Stale(ctx))

	writeTree(t, w.Root(), map[string]string{"shop/extra.py": "x = 1\n"})
	assert.True(t, w.Stale(ctx))
}

func TestWordMatches(t *testing.T) {
	t.Parallel()

	src := []byte("Item items Item_ _Item Item.x(Item)")
	assert.Equal(t, []int{0, 23, 30}, wordMatches(src, []byte("Item")))
	assert.Empty(t, wordMatches(src, []byte("nothing")))
}
