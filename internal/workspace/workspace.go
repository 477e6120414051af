// Package workspace is the tree-sitter backed code model: it parses a
// repository once, indexes its declarations and type hierarchy, and answers
// the structural questions refscope asks about occurrences.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/refscope/internal/config"
	"github.com/phobologic/refscope/internal/discover"
	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/graph"
	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/lang"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/parse"
	"github.com/phobologic/refscope/internal/testpath"
)

// Workspace is an immutable index over one repository. Syntax trees are
// kept in a bounded cache and re-parsed on demand; everything else is held
// for the workspace's lifetime. It is safe for concurrent use.
type Workspace struct {
	root     string
	opts     discover.Options
	logger   *slog.Logger
	loadedAt time.Time

	files map[string]*parse.Unit // skeletons without trees
	paths []string               // sorted

	all       []*model.Symbol            // non-local declarations, sorted
	byName    map[string][]*model.Symbol // simple name
	byQName   map[string][]*model.Symbol // qualified name, non-local
	members   map[string][]*model.Symbol // container qualified name
	decls     map[string][]*model.Symbol // file, sorted by name start
	declStart map[string]map[int]*model.Symbol
	imports   map[string][]*model.Symbol // file
	local     map[*model.Symbol]bool
	modules   map[string]bool // Java packages and Python modules
	hier      *graph.Hierarchy

	trees   *lru.Cache[string, *sitter.Tree]
	parsers map[string]*sync.Pool
}

var _ host.Host = (*Workspace)(nil)

// Load discovers, parses and indexes the repository at root.
func Load(ctx context.Context, root string, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	for _, name := range cfg.Workspace.Languages {
		if _, ok := lang.Languages[name]; !ok {
			return nil, rerrors.New(rerrors.InvalidInput, "load", fmt.Sprintf("unsupported language %q", name))
		}
	}

	opts := discover.Options{
		Languages:   cfg.Workspace.Languages,
		Exclude:     cfg.Workspace.Exclude,
		MaxFileSize: cfg.Workspace.MaxFileSize,
	}
	entries, err := discover.Files(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	tests, err := cfg.Matcher()
	if err != nil {
		return nil, rerrors.Wrap(rerrors.InvalidInput, "load", err)
	}

	trees, err := lru.New[string, *sitter.Tree](max(cfg.Workspace.CacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("tree cache: %w", err)
	}

	units, err := parseConcurrent(ctx, root, entries, cfg.Workspace.Workers, logger)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		root:      root,
		opts:      opts,
		logger:    logger,
		loadedAt:  start,
		files:     make(map[string]*parse.Unit, len(units)),
		byName:    make(map[string][]*model.Symbol),
		byQName:   make(map[string][]*model.Symbol),
		members:   make(map[string][]*model.Symbol),
		decls:     make(map[string][]*model.Symbol),
		declStart: make(map[string]map[int]*model.Symbol),
		imports:   make(map[string][]*model.Symbol),
		local:     make(map[*model.Symbol]bool),
		modules:   make(map[string]bool),
		hier:      graph.New(),
		trees:     trees,
		parsers:   make(map[string]*sync.Pool),
	}
	for name, l := range lang.Languages {
		w.parsers[name] = &sync.Pool{New: func() any { return l.NewParser() }}
	}
	for _, u := range units {
		if u != nil {
			w.add(u, tests)
		}
	}
	w.link()

	logger.Info("workspace loaded",
		"root", root,
		"files", len(w.paths),
		"symbols", len(w.all),
		"types", w.hier.Len(),
		"duration", time.Since(start).Round(time.Millisecond))
	return w, nil
}

// parseConcurrent parses entries with one parser per worker. Unreadable
// or unparseable files are logged and left nil.
func parseConcurrent(ctx context.Context, root string, entries []discover.FileEntry, workers int, logger *slog.Logger) ([]*parse.Unit, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(min(workers, len(entries)), 1)

	units := make([]*parse.Unit, len(entries))
	work := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(work)
		for i := range entries {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			// Each goroutine gets its own parsers
			parsers := make(map[string]*sitter.Parser)

			for idx := range work {
				f := entries[idx]
				l := lang.Languages[f.Language]
				p, ok := parsers[f.Language]
				if !ok {
					p = l.NewParser()
					parsers[f.Language] = p
				}

				source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
				if err != nil {
					logger.Warn("skipping unreadable file", "file", f.Path, "error", err)
					continue
				}
				u, err := parse.File(gctx, p, l, source, f.Path)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					logger.Warn("skipping unparseable file", "file", f.Path, "error", err)
					continue
				}
				units[idx] = u
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

func (w *Workspace) add(u *parse.Unit, tests *testpath.Matcher) {
	w.files[u.Path] = u.WithTree(nil)
	w.paths = append(w.paths, u.Path)
	w.trees.Add(u.Path, u.Tree)

	if u.Info.Package != "" {
		w.modules[u.Info.Package] = true
	}
	library := tests.IsLibraryPath(u.Path)

	callables := make(map[string]bool)
	for _, s := range u.Info.Symbols {
		if s.Kind.IsCallable() {
			callables[s.QualifiedName] = true
		}
	}

	starts := make(map[int]*model.Symbol, len(u.Info.Symbols))
	for _, s := range u.Info.Symbols {
		s.Library = library
		starts[s.Location.Start] = s
		w.members[s.Container] = append(w.members[s.Container], s)
		w.byName[s.Name] = append(w.byName[s.Name], s)
		if s.Kind == model.Parameter || (s.Kind == model.Variable && callables[s.Container]) {
			w.local[s] = true
			continue
		}
		w.all = append(w.all, s)
		w.byQName[s.QualifiedName] = append(w.byQName[s.QualifiedName], s)
		if s.Kind.IsType() {
			w.hier.AddType(s.QualifiedName)
		}
	}
	w.declStart[u.Path] = starts
	w.decls[u.Path] = u.Info.Symbols
	for _, imp := range u.Info.Imports {
		imp.Library = library
	}
	w.imports[u.Path] = u.Info.Imports
}

// link sorts the indexes and builds the type hierarchy.
func (w *Workspace) link() {
	sort.Strings(w.paths)
	sort.SliceStable(w.all, func(i, j int) bool { return lessSymbol(w.all[i], w.all[j]) })
	for _, syms := range w.byName {
		sort.SliceStable(syms, func(i, j int) bool { return lessSymbol(syms[i], syms[j]) })
	}
	for _, syms := range w.byQName {
		sort.SliceStable(syms, func(i, j int) bool { return lessSymbol(syms[i], syms[j]) })
	}
	for _, syms := range w.decls {
		sort.SliceStable(syms, func(i, j int) bool { return syms[i].Location.Start < syms[j].Location.Start })
	}

	for _, t := range w.all {
		if !t.Kind.IsType() {
			continue
		}
		for _, written := range t.Supertypes {
			super := w.resolveType(t.Location.File, t.Extent.Start, written)
			if super == nil {
				continue
			}
			if !w.hier.AddEdge(t.QualifiedName, super.QualifiedName) {
				w.logger.Debug("dropping hierarchy edge", "sub", t.QualifiedName, "super", super.QualifiedName)
			}
		}
	}
}

func lessSymbol(a, b *model.Symbol) bool {
	if a.QualifiedName != b.QualifiedName {
		return a.QualifiedName < b.QualifiedName
	}
	if a.Location.File != b.Location.File {
		return a.Location.File < b.Location.File
	}
	return a.Location.Start < b.Location.Start
}

// Root returns the absolute repository root.
func (w *Workspace) Root() string {
	return w.root
}

// Files returns the indexed repo-relative paths in sorted order.
func (w *Workspace) Files() []string {
	return append([]string(nil), w.paths...)
}

// Stale reports whether the set of source files, or any file's content,
// changed since the workspace was loaded.
func (w *Workspace) Stale(ctx context.Context) bool {
	entries, err := discover.Files(ctx, w.root, w.opts)
	if err != nil || len(entries) != len(w.paths) {
		return true
	}
	for _, e := range entries {
		if _, ok := w.files[e.Path]; !ok {
			return true
		}
		fi, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(e.Path)))
		if err != nil || !fi.ModTime().Before(w.loadedAt) {
			return true
		}
	}
	return false
}

// rel normalises a caller-supplied path to the repo-relative form.
func (w *Workspace) rel(file string) string {
	if filepath.IsAbs(file) {
		if r, err := filepath.Rel(w.root, file); err == nil {
			file = r
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(file)), "./")
}

func unknownFile(op, file string) error {
	return rerrors.New(rerrors.InvalidInput, op, "file not in workspace: "+file)
}

// unit returns the parsed file with a syntax tree, re-parsing when the tree
// was evicted.
func (w *Workspace) unit(ctx context.Context, file string) (*parse.Unit, error) {
	skel, ok := w.files[w.rel(file)]
	if !ok {
		return nil, unknownFile("unit", file)
	}
	if tree, ok := w.trees.Get(skel.Path); ok {
		return skel.WithTree(tree), nil
	}

	pool := w.parsers[skel.Lang.Name]
	p := pool.Get().(*sitter.Parser)
	defer pool.Put(p)
	tree, err := p.ParseCtx(ctx, nil, skel.Source)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.HostQueryFailure, "parse "+skel.Path, err)
	}
	w.trees.Add(skel.Path, tree)
	return skel.WithTree(tree), nil
}

// LineText returns the text of a 1-based line without its terminator.
func (w *Workspace) LineText(_ context.Context, file string, line int) (string, bool) {
	u, ok := w.files[w.rel(file)]
	if !ok {
		return "", false
	}
	return u.LineText(line)
}

// Offset converts a 1-based line and column to a byte offset.
func (w *Workspace) Offset(_ context.Context, file string, line, col int) (int, error) {
	u, ok := w.files[w.rel(file)]
	if !ok {
		return 0, unknownFile("offset", file)
	}
	return u.Offset(line, col)
}
