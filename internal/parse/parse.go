// Package parse turns source files into syntax trees and declaration
// inventories, and answers line and offset questions about them.
package parse

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/lang"
)

// Unit is one parsed source file.
type Unit struct {
	Path   string // repo-relative, slash-separated
	Lang   *lang.Language
	Source []byte
	Tree   *sitter.Tree
	Info   *lang.FileInfo

	lines []int // start offset of each line
}

// File parses source with parser, which must be configured for l, and
// extracts its declarations. path is used for symbol locations and should
// be the repo-relative path.
func File(ctx context.Context, parser *sitter.Parser, l *lang.Language, source []byte, path string) (*Unit, error) {
	u := &Unit{Path: path, Lang: l, Source: source, lines: lineStarts(source)}
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.Internal, "parse "+path, err)
	}
	u.Tree = tree
	u.Info = l.Extract(tree.RootNode(), source, path)
	return u, nil
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Root returns the root syntax node.
func (u *Unit) Root() *sitter.Node {
	return u.Tree.RootNode()
}

// LineCount returns the number of lines, counting a final unterminated one.
func (u *Unit) LineCount() int {
	if len(u.Source) > 0 && u.Source[len(u.Source)-1] == '\n' {
		return len(u.lines) - 1
	}
	return len(u.lines)
}

// LineText returns the text of a 1-based line without its terminator.
func (u *Unit) LineText(line int) (string, bool) {
	if line < 1 || line > u.LineCount() {
		return "", false
	}
	start := u.lines[line-1]
	end := len(u.Source)
	if line < len(u.lines) {
		end = u.lines[line] - 1
	}
	return string(bytes.TrimSuffix(u.Source[start:end], []byte("\r"))), true
}

// Offset converts a 1-based line and byte column to an offset. Columns past
// the end of the line clamp to its last character.
func (u *Unit) Offset(line, col int) (int, error) {
	text, ok := u.LineText(line)
	if !ok {
		return 0, rerrors.New(rerrors.InvalidInput, "offset",
			fmt.Sprintf("line %d out of range 1-%d in %s", line, u.LineCount(), u.Path))
	}
	if col < 1 {
		col = 1
	}
	if col > len(text) {
		col = max(len(text), 1)
	}
	return u.lines[line-1] + col - 1, nil
}

// LineOf returns the 1-based line containing offset.
func (u *Unit) LineOf(offset int) int {
	return sort.Search(len(u.lines), func(i int) bool { return u.lines[i] > offset })
}

// LeafAt returns the smallest syntax node spanning offset.
func (u *Unit) LeafAt(offset int) *sitter.Node {
	return lang.LeafAt(u.Root(), offset)
}

// Analyze runs the language's site analysis on the leaf at offset.
func (u *Unit) Analyze(offset int) (lang.Facts, bool) {
	leaf := u.LeafAt(offset)
	if leaf == nil {
		return lang.Facts{QualifierAt: -1}, false
	}
	return u.Lang.Analyze(leaf, u.Source)
}

// WithTree returns a copy of u that uses tree. A nil tree yields a
// skeleton that keeps the source, declarations and line index.
func (u *Unit) WithTree(tree *sitter.Tree) *Unit {
	v := *u
	v.Tree = tree
	return &v
}
