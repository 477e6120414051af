package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/refscope/internal/ranking"
	"github.com/phobologic/refscope/internal/toon"
	"github.com/phobologic/refscope/internal/usage"
	"github.com/phobologic/refscope/internal/workspace"
)

// targetOptions select the symbol a query is about.
type targetOptions struct {
	file   string
	offset int
	line   int
	col    int
	kind   string
	limit  int
}

func (t *targetOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&t.file, "file", "", "repository-relative file for a position lookup")
	f.IntVar(&t.offset, "offset", 0, "0-based byte offset in --file")
	f.IntVar(&t.line, "line", 0, "1-based line in --file")
	f.IntVar(&t.col, "col", 1, "1-based column on --line")
	f.StringVar(&t.kind, "kind", "", "expected kind for name lookups (class, method, field, ...)")
	f.IntVarP(&t.limit, "limit", "n", 0, "maximum number of results (0 for all)")
}

func (t *targetOptions) request(cmd *cobra.Command, args []string) usage.Request {
	req := usage.Request{
		FilePath: t.file,
		Line:     t.line,
		Column:   t.col,
		Kind:     t.kind,
	}
	if len(args) > 0 {
		req.SymbolName = args[0]
	}
	if cmd.Flags().Changed("offset") {
		off := t.offset
		req.Position = &off
	}
	return req
}

// newService loads the workspace and wires the usage service over it.
func newService(ctx context.Context, cmd *cobra.Command, opts *globalOptions) (*usage.Service, error) {
	root, cfg, logger, err := opts.setup(cmd)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Load(ctx, root, cfg, logger)
	if err != nil {
		return nil, err
	}
	return usage.NewService(ws, cfg, logger)
}

func newDefinitionCmd(opts *globalOptions) *cobra.Command {
	var target targetOptions

	cmd := &cobra.Command{
		Use:     "definition [name]",
		Aliases: []string{"def"},
		Short:   "Find where a symbol is declared",
		Long: `Find where a symbol is declared, ranked by confidence.

Give a name ("UserService", "UserService.save", "com.example.User") or a
position with --file and either --offset or --line/--col.`,
		Example: `  refscope definition UserService
  refscope def UserService.save --kind method
  refscope def --file src/App.java --line 12 --col 9`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			cands, err := svc.FindDefinition(ctx, target.request(cmd, args))
			if err != nil {
				return err
			}
			cands = ranking.SelectCandidates(cands, target.limit)
			return writeOutput(opts.stdout, opts.format, cands, func() string {
				return toon.EncodeCandidates(cands)
			})
		},
	}
	target.register(cmd)
	return cmd
}

func newReferencesCmd(opts *globalOptions) *cobra.Command {
	var (
		target             targetOptions
		includeDeclaration bool
		types              []string
	)

	cmd := &cobra.Command{
		Use:     "references [name]",
		Aliases: []string{"refs"},
		Short:   "Find and classify every usage of a symbol",
		Long: `Find every usage of a symbol and classify how it is used.

The target is resolved like the definition command. Usages are grouped by
type (method_call, field_write, constructor_call, method_override, import,
...) with a summary and short insights about the usage pattern.`,
		Example: `  refscope references User.getName
  refscope refs UserService --type constructor_call --type field_read
  refscope refs --file src/App.java --offset 240 --include-declaration`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := splitTypes(types)
			if err := ranking.ValidateUsageTypes(filters); err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := newService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			req := target.request(cmd, args)
			req.IncludeDeclaration = includeDeclaration

			res, err := svc.FindReferences(ctx, req)
			if err != nil {
				return err
			}
			res = ranking.SelectReferences(ranking.FilterByUsage(res, filters), target.limit)
			return writeOutput(opts.stdout, opts.format, res, func() string {
				return toon.EncodeReferences(res)
			})
		},
	}
	target.register(cmd)
	cmd.Flags().BoolVar(&includeDeclaration, "include-declaration", false, "prepend the target's own declaration")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "keep only these usage types (repeatable or comma-separated)")
	return cmd
}

func splitTypes(types []string) []string {
	var out []string
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func writeOutput(w io.Writer, format string, v any, encodeTOON func() string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(w, encodeTOON())
	return err
}
