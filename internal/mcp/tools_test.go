package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/refscope/internal/config"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/slogutil"
)

var files = map[string]string{
	"src/demo/Square.java": `package demo;

public class Square {
    private final double side;

    public Square(double side) {
        this.side = side;
    }

    public double area() {
        return side * side;
    }
}
`,
	"src/app/Main.java": `package app;

import demo.Square;

public class Main {
    public static void main(String[] args) {
        Square s = new Square(2.0);
        System.out.println(s.area());
    }
}
`,
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	past := time.Now().Add(-time.Hour)
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(p, past, past))
	}
	s, err := NewServer(context.Background(), root, config.Default(), slogutil.NewDiscardLogger(), "test")
	require.NoError(t, err)
	require.NotNil(t, s.MCP())
	return s
}

func call(t *testing.T, h toolHandler, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return tc.Text
}

func TestDefinitionHandler(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := createDefinitionHandler(s)

	result := call(t, h, map[string]interface{}{"symbol_name": "Square", "format": "json"})
	assert.False(t, result.IsError)

	var cands []model.DefinitionCandidate
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &cands))
	require.NotEmpty(t, cands)
	assert.Equal(t, "demo.Square", cands[0].Symbol.QualifiedName)
	assert.Equal(t, model.Class, cands[0].Symbol.Kind)

	result = call(t, h, map[string]interface{}{"symbol_name": "Square", "limit": float64(1)})
	assert.False(t, result.IsError)
	out := text(t, result)
	assert.True(t, strings.HasPrefix(out, "candidates[1]{"), "got %q", out)
}

func TestDefinitionHandlerByLine(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := createDefinitionHandler(s)

	// Line 8 is "        System.out.println(s.area());"; column 30 is on "area".
	result := call(t, h, map[string]interface{}{
		"file_path": "src/app/Main.java",
		"line":      float64(8),
		"column":    float64(30),
		"format":    "json",
	})
	assert.False(t, result.IsError)

	var cands []model.DefinitionCandidate
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &cands))
	require.Len(t, cands, 1)
	assert.Equal(t, "demo.Square.area", cands[0].Symbol.QualifiedName)
}

func TestReferencesHandler(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	h := createReferencesHandler(s)

	result := call(t, h, map[string]interface{}{"symbol_name": "demo.Square"})
	assert.False(t, result.IsError)
	out := text(t, result)
	assert.Contains(t, out, "constructor_call")
	assert.Contains(t, out, "import")

	result = call(t, h, map[string]interface{}{
		"symbol_name": "demo.Square",
		"usage_types": "import",
		"format":      "json",
	})
	assert.False(t, result.IsError)
	var res model.GroupedReferenceResult
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &res))
	require.NotEmpty(t, res.AllReferences)
	for _, r := range res.AllReferences {
		assert.Equal(t, model.UsageImport, r.UsageType)
	}
}

func TestHandlerErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	tests := []struct {
		name string
		args interface{}
	}{
		{"not a map", "oops"},
		{"empty", map[string]interface{}{}},
		{"both modes", map[string]interface{}{"symbol_name": "Square", "file_path": "src/app/Main.java", "line": float64(1)}},
		{"bad format", map[string]interface{}{"symbol_name": "Square", "format": "xml"}},
		{"bad usage type", map[string]interface{}{"symbol_name": "Square", "usage_types": "import,fieldread"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, h := range []toolHandler{createDefinitionHandler(s), createReferencesHandler(s)} {
				result, err := h(context.Background(), mcp.CallToolRequest{
					Params: mcp.CallToolParams{Arguments: tt.args},
				})
				require.NoError(t, err)
				assert.True(t, result.IsError)
			}
		})
	}
}

func TestServiceReloadsStaleWorkspace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)

	first, err := s.Service(ctx)
	require.NoError(t, err)
	again, err := s.Service(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)

	p := filepath.Join(s.root, "src", "demo", "Circle.java")
	require.NoError(t, os.WriteFile(p, []byte("package demo;\n\npublic class Circle {}\n"), 0o644))

	reloaded, err := s.Service(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)

	result := call(t, createDefinitionHandler(s), map[string]interface{}{"symbol_name": "Circle", "format": "json"})
	var cands []model.DefinitionCandidate
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &cands))
	require.NotEmpty(t, cands)
	assert.Equal(t, "demo.Circle", cands[0].Symbol.QualifiedName)
}
