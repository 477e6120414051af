// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and the per-language hooks that extract declarations
// and describe occurrence sites.
package lang

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FileInfo is the declaration inventory of one parsed file.
type FileInfo struct {
	Package string          // Java package or Python module
	Symbols []*model.Symbol // declarations in document order
	Imports []*model.Symbol // kind Import
}

// Facts is what the grammar alone can say about an occurrence. The symbol
// fields of Site (Declared, Callable, Owner) are left for the caller.
type Facts struct {
	host.Site

	// QualifierAt is the start offset of the name that qualifies the
	// occurrence (the last identifier of "a.b" in "a.b.c"), or -1.
	QualifierAt int

	// ImportPath is the dotted path up to and including the occurrence when
	// it sits inside an import.
	ImportPath string
}

// Language holds tree-sitter configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Extract walks a parsed file and returns its declarations. path is the
	// repo-relative, slash-separated file path.
	Extract func(root *sitter.Node, source []byte, path string) *FileInfo

	// Analyze describes the leaf node at an occurrence. ok is false when the
	// node is not a reference at all (string literals, punctuation).
	Analyze func(leaf *sitter.Node, source []byte) (f Facts, ok bool)
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// LeafAt returns the smallest node that spans offset, or nil when offset is
// outside root.
func LeafAt(root *sitter.Node, offset int) *sitter.Node {
	off := uint32(offset)
	if offset < 0 || off < root.StartByte() || off >= root.EndByte() {
		return nil
	}
	n := root
	for {
		var next *sitter.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c != nil && c.StartByte() <= off && off < c.EndByte() {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// Location converts a node to a model location in path.
func Location(n *sitter.Node, path string) model.Location {
	return model.Location{
		File:  path,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
		Line:  int(n.StartPoint().Row) + 1,
	}
}

// same reports whether a and b denote the same syntax node.
func same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// isField reports whether child is the named field of parent.
func isField(parent *sitter.Node, field string, child *sitter.Node) bool {
	return same(parent.ChildByFieldName(field), child)
}

// namedChildren returns the named children of n, skipping comments.
func namedChildren(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "comment", "line_comment", "block_comment":
			continue
		}
		out = append(out, c)
	}
	return out
}

// childOfType returns the first direct child of the given type.
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// firstLine returns the first non-empty line of a doc comment or docstring
// with comment markers removed.
func firstLine(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimPrefix(line, "*")
		line = strings.Trim(line, "\"' ")
		if line != "" && !strings.HasPrefix(line, "@") {
			return line
		}
	}
	return ""
}

// BaseType reduces a written type to the name of the type it denotes:
// "List<User>" becomes "List", "User[]" becomes "User", and
// "Optional['User']" becomes "User".
func BaseType(t string) string {
	t = strings.Trim(strings.TrimSpace(t), "\"' ")
	for _, wrapper := range []string{"Optional[", "typing.Optional["} {
		if strings.HasPrefix(t, wrapper) && strings.HasSuffix(t, "]") {
			return BaseType(t[len(wrapper) : len(t)-1])
		}
	}
	if i := strings.IndexAny(t, "<[("); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "...")
	return strings.Trim(t, "\"' ")
}

// isUpperSnake reports whether name is written like a constant.
func isUpperSnake(name string) bool {
	hasUpper := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case r == '_' || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return hasUpper
}
