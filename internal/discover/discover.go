// Package discover finds parseable source files in a repository.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/refscope/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // relative to repo root, '/' separated
	Language string
	Size     int64
}

// Options narrows discovery.
type Options struct {
	Languages   []string // empty means every registered language
	Exclude     []string // globs over repo-relative paths
	MaxFileSize int64    // bytes; 0 means no limit
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"build":         {},
	"dist":          {},
	"target":        {},
	"out":           {},
	".gradle":       {},
	".idea":         {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// Files discovers parseable source files under root, sorted by path.
func Files(ctx context.Context, root string, opts Options) ([]FileEntry, error) {
	langSet := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = struct{}{}
	}
	exclude := make([]glob.Glob, 0, len(opts.Exclude))
	for _, p := range opts.Exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		exclude = append(exclude, g)
	}

	gitFiles := gitLsFiles(ctx, root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".egg-info") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		langName := lang.ForExtension(filepath.Ext(name))
		if langName == "" {
			return nil
		}
		if len(langSet) > 0 {
			if _, ok := langSet[langName]; !ok {
				return nil
			}
		}
		for _, g := range exclude {
			if g.Match(rel) {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Language: langName, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func gitLsFiles(ctx context.Context, root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
