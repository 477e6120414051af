package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- refscope:start -->"
	sentinelEnd   = "<!-- refscope:end -->"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a refscope usage section to CLAUDE.md",
		Long: `Write a refscope usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section := generateSection()

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(opts.stdout, section)
				return nil
			}

			path := "CLAUDE.md"
			if len(args) > 0 {
				path = args[0]
			}

			existing, err := os.ReadFile(path)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			updated := applySection(string(existing), section)

			if dryRun {
				_, _ = fmt.Fprint(opts.stdout, updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(opts.stderr, "wrote refscope section to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns the sentinel-wrapped refscope documentation block.
func generateSection() string {
	body := `## refscope: Definitions and Usages

Use ` + "`refscope`" + ` via the Bash tool instead of Grep when you need to know where
a Java or Python symbol is declared or how it is used. It resolves names
through imports, inheritance and scopes, so results are not fooled by
comments, strings or unrelated symbols with the same name.

**Availability:** Check with ` + "`refscope --version`" + ` first; skip gracefully if
not found.

**Find a definition:**
` + "```" + `bash
refscope def UserService                    # by simple name
refscope def UserService.save --kind method # Type.member with a kind hint
refscope def com.example.User               # package-qualified
refscope def --file src/App.java --line 12 --col 9
` + "```" + `

**Find and classify usages:**
` + "```" + `bash
refscope refs User.getName                  # every usage, grouped by type
refscope refs User --type constructor_call  # only some usage types
refscope refs --file app/cart.py --offset 240 --include-declaration
refscope refs UserService -n 20 -f json     # cap results, JSON output
` + "```" + `

**All flags:** ` + "`refscope --help`" + `

**How to use the output:**

1. **Trust the ranking.** Definition candidates are sorted by confidence. A
   ` + "`hint`" + ` column explains why several candidates matched; add ` + "`--kind`" + ` or
   qualify the name to narrow them.

2. **Start from the summary.** ` + "`references`" + ` prints totals, a per-type
   breakdown and short insights (unused methods, tests-only usage, deprecated
   call sites) and per-file counts before the individual references.

3. **Use the usage type to plan edits.** ` + "`field_write`" + ` and
   ` + "`method_override`" + ` sites usually need changes when a signature moves;
   ` + "`javadoc_reference`" + ` hits are documentation only.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
