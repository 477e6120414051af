// refscope finds where symbols are declared and classifies how they are used.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/refscope/internal/config"
	"github.com/phobologic/refscope/internal/slogutil"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	root       string
	configFile string
	format     string
	verbose    int
	quiet      bool

	stdout, stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "refscope",
		Short: "Find symbol definitions and classify their usages",
		Long: `refscope indexes a Java or Python repository with tree-sitter and answers two
questions: where is a symbol declared, and where and how is it used.

Definitions are ranked by confidence. References are classified (method_call,
field_write, constructor_call, method_override, ...) with data-flow context,
grouped, summarised and annotated with short insights.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("refscope {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.root, "root", "r", ".", "repository root")
	pf.StringVar(&opts.configFile, "config", "", "config file (default is <root>/.refscope.yaml)")
	pf.StringVarP(&opts.format, "format", "f", "toon", "output format: toon or json")
	pf.CountVarP(&opts.verbose, "verbose", "v", "log more (repeat for debug)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "log nothing")

	cmd.AddCommand(
		newDefinitionCmd(opts),
		newReferencesCmd(opts),
		newServeCmd(opts),
		newInitCmd(opts),
	)
	return cmd
}

// setup validates the global flags and loads configuration and logging.
func (o *globalOptions) setup(cmd *cobra.Command) (string, *config.Config, *slog.Logger, error) {
	if o.format != "toon" && o.format != "json" {
		return "", nil, nil, fmt.Errorf("unknown format %q: want toon or json", o.format)
	}

	root, err := filepath.Abs(o.root)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, nil, fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", nil, nil, fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := config.NewLoader(root, o.configFile).Load()
	if err != nil {
		return "", nil, nil, err
	}

	level := slogutil.LevelFromString(cfg.Logging.Level)
	flags := cmd.Flags()
	if flags.Changed("verbose") || flags.Changed("quiet") {
		level = slogutil.LevelFromVerbosity(o.verbose, o.quiet)
	}
	return root, cfg, slogutil.NewLogger(o.stderr, level, cfg.Logging.Format), nil
}
