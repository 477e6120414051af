package main

import (
	"github.com/spf13/cobra"

	"github.com/phobologic/refscope/internal/mcp"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve definition and reference lookups as MCP tools on stdio",
		Long: `Start an MCP server on stdio exposing find_symbol_definition and
find_symbol_references for the repository at --root. The index is rebuilt
before a request when files changed since it was loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			s, err := mcp.NewServer(cmd.Context(), root, cfg, logger, version)
			if err != nil {
				return err
			}
			return s.Serve(cmd.Context())
		},
	}
}
