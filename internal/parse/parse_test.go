package parse

import (
	"context"
	"testing"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/lang"
	"github.com/phobologic/refscope/internal/model"
)

func setup(t *testing.T, langName, path, source string) *Unit {
	t.Helper()
	l := lang.Languages[langName]
	if l == nil {
		t.Fatalf("language %q not registered", langName)
	}
	u, err := File(context.Background(), l.NewParser(), l, []byte(source), path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	return u
}

const javaSrc = "package demo;\r\n\r\nclass A {\r\n    int x;\r\n}"

func TestFileExtracts(t *testing.T) {
	t.Parallel()

	u := setup(t, "java", "src/A.java", javaSrc)
	if u.Info.Package != "demo" {
		t.Errorf("Package = %q, want demo", u.Info.Package)
	}
	var names []string
	for _, s := range u.Info.Symbols {
		names = append(names, s.QualifiedName)
	}
	if len(names) != 2 || names[0] != "demo.A" || names[1] != "demo.A.x" {
		t.Errorf("symbols = %v, want [demo.A demo.A.x]", names)
	}
	if u.Info.Symbols[0].Kind != model.Class {
		t.Errorf("kind = %q, want class", u.Info.Symbols[0].Kind)
	}
	if u.Info.Symbols[1].Location.Line != 4 {
		t.Errorf("x line = %d, want 4", u.Info.Symbols[1].Location.Line)
	}
}

func TestEmptyFile(t *testing.T) {
	t.Parallel()

	u := setup(t, "python", "empty.py", "")
	if len(u.Info.Symbols) != 0 {
		t.Errorf("symbols = %d, want 0", len(u.Info.Symbols))
	}
	if u.LineCount() != 1 {
		t.Errorf("LineCount = %d, want 1", u.LineCount())
	}
}

func TestLineText(t *testing.T) {
	t.Parallel()

	u := setup(t, "java", "src/A.java", javaSrc)

	tests := []struct {
		line int
		want string
		ok   bool
	}{
		{1, "package demo;", true},
		{2, "", true},
		{4, "    int x;", true},
		{5, "}", true},
		{0, "", false},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := u.LineText(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LineText(%d) = %q, %v, want %q, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	u := setup(t, "python", "m.py", "a = 1\nbb = 2\n")

	tests := []struct {
		line, col int
		want      int
		wantErr   bool
	}{
		{1, 1, 0, false},
		{2, 1, 6, false},
		{2, 2, 7, false},
		{2, 99, 11, false},
		{2, 0, 6, false},
		{3, 1, 0, true},
	}
	for _, tt := range tests {
		got, err := u.Offset(tt.line, tt.col)
		if (err != nil) != tt.wantErr {
			t.Errorf("Offset(%d, %d) err = %v, wantErr %v", tt.line, tt.col, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Offset(%d, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}

	if got := u.LineOf(7); got != 2 {
		t.Errorf("LineOf(7) = %d, want 2", got)
	}
	if got := u.LineOf(0); got != 1 {
		t.Errorf("LineOf(0) = %d, want 1", got)
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	u := setup(t, "python", "m.py", "def f():\n    return g(1)\n")
	f, ok := u.Analyze(20)
	if !ok || !f.Invocation || f.Text != "g" {
		t.Errorf("Analyze = %+v, %v", f, ok)
	}
	if f.Role != host.RoleReturn {
		t.Errorf("Role = %v, want RoleReturn", f.Role)
	}
	if _, ok := u.Analyze(500); ok {
		t.Error("Analyze out of range = ok")
	}
}

func TestWithTree(t *testing.T) {
	t.Parallel()

	u := setup(t, "python", "m.py", "x = 1\n")
	skel := u.WithTree(nil)
	if skel.Tree != nil || u.Tree == nil {
		t.Fatal("WithTree(nil) must not modify the original")
	}
	if got, ok := skel.LineText(1); !ok || got != "x = 1" {
		t.Errorf("skeleton LineText = %q, %v", got, ok)
	}
	if back := skel.WithTree(u.Tree); back.LeafAt(0) == nil {
		t.Error("LeafAt on restored tree = nil")
	}
}
