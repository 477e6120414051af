// Package host declares the code-model engine refscope queries: structural
// facts about occurrences, project-wide name search and the type hierarchy.
package host

import (
	"context"

	"github.com/phobologic/refscope/internal/model"
)

// Adapter answers structural questions about source locations.
type Adapter interface {
	// Site returns the structural facts of the occurrence at loc.
	Site(ctx context.Context, loc model.Location) (*Site, error)

	// Resolve returns the declaration referenced at offset, trying the
	// immediate structural parent when the leaf itself is not a reference.
	// Declaration names are not references. A nil symbol means nothing resolved.
	Resolve(ctx context.Context, file string, offset int) (*model.Symbol, error)

	// EnclosingDeclaration returns the innermost callable whose extent
	// contains offset, or the innermost type when no callable does.
	EnclosingDeclaration(ctx context.Context, file string, offset int) (*model.Symbol, error)

	// Declarations returns the named declarations whose name lies in [start, end).
	Declarations(ctx context.Context, file string, start, end int) ([]*model.Symbol, error)

	// LineText returns the text of a 1-based line without its terminator.
	LineText(ctx context.Context, file string, line int) (string, bool)

	// Offset converts a 1-based line and column to a byte offset.
	Offset(ctx context.Context, file string, line, col int) (int, error)
}

// Index is the project-wide symbol search.
type Index interface {
	// SearchTypes returns types whose name equals, case-insensitively equals
	// or contains name. The same applies to SearchCallables and SearchFields.
	SearchTypes(ctx context.Context, name string) ([]*model.Symbol, error)
	SearchCallables(ctx context.Context, name string) ([]*model.Symbol, error)
	SearchFields(ctx context.Context, name string) ([]*model.Symbol, error)

	// Members returns the declarations directly owned by the container with
	// the given qualified name.
	Members(ctx context.Context, container string) ([]*model.Symbol, error)

	// Occurrences returns textual occurrences of sym in code and comments,
	// excluding its own declaration, at most limit when limit > 0.
	Occurrences(ctx context.Context, sym *model.Symbol, limit int) ([]model.Occurrence, error)

	// FileSymbols returns the declaration inventory of one file.
	FileSymbols(ctx context.Context, file string) ([]*model.Symbol, error)
}

// Hierarchy answers type hierarchy questions.
type Hierarchy interface {
	// Subtypes returns the transitive descendants of t, at most limit when limit > 0.
	Subtypes(ctx context.Context, t *model.Symbol, limit int) ([]*model.Symbol, error)

	// Supertypes returns the transitive ancestors of t known to the project.
	Supertypes(ctx context.Context, t *model.Symbol) ([]*model.Symbol, error)

	// IsStrictSubtype reports whether the type named sub descends from the
	// type named super and is not super itself. Both are qualified names.
	IsStrictSubtype(ctx context.Context, sub, super string) (bool, error)
}

// Host is everything refscope needs from the engine.
type Host interface {
	Adapter
	Index
	Hierarchy
}
