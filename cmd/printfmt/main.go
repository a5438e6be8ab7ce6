// Package main provides the printfmt CLI for rewriting printf-style logging
// calls into streaming-logger calls.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"printfmt/internal/batch"
	"printfmt/internal/config"
	"printfmt/internal/format"
	"printfmt/internal/logging"
	"printfmt/internal/model"
	"printfmt/internal/store"
)

var version = "dev"

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dialect    string
	verbose    bool
}

// configFile returns the config path from flag or environment variable.
func (g *globalOptions) configFile() string {
	if g.configPath != "" {
		return g.configPath
	}
	return os.Getenv("PRINTFMT_CONFIG")
}

// dialectName returns the dialect from flag, environment variable, or the
// config file default (empty).
func (g *globalOptions) dialectName() string {
	if g.dialect != "" {
		return g.dialect
	}
	return os.Getenv("PRINTFMT_DIALECT")
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "printfmt",
		Short:         "Rewrite printf-style logging calls into streaming-logger calls",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (env: PRINTFMT_CONFIG, default: .printfmt.toml/.yaml searched upward)")
	flags.StringVar(&g.dialect, "dialect", "", "call dialect: printout or printf (env: PRINTFMT_DIALECT, default: printout)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debug details to stderr")

	root.AddCommand(newRunCmd(g, false))
	root.AddCommand(newRunCmd(g, true))
	root.AddCommand(newDialectsCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "printfmt: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// runFlags are the flags of the rewrite and apply commands.
type runFlags struct {
	formatFlag   string
	forceColor   bool
	forceNoColor bool
	jobs         int
	exts         []string
	strict       bool
	keepSource   bool
	dropSource   bool
	naive        bool
	marker       string
	call         string
	pattern      string
	noGitignore  bool
	noHeader     bool
	summary      bool
	width        int
}

func newRunCmd(g *globalOptions, apply bool) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "rewrite <path>...",
		Short: "Print each logging call next to its streaming rewrite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources(cmd, g, &f, args, apply)
		},
	}
	if apply {
		cmd.Use = "apply <path>..."
		cmd.Short = "Rewrite logging calls in place"
	}

	flags := cmd.Flags()
	flags.StringVar(&f.formatFlag, "format", format.FormatPair, "output format: "+strings.Join(format.Formats, ", "))
	flags.BoolVar(&f.forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&f.forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "number of sources processed in parallel (default: number of CPUs)")
	flags.StringSliceVar(&f.exts, "ext", nil, "source extensions scanned in directories (default: C/C++ sources and headers)")
	flags.BoolVar(&f.strict, "strict", false, "treat unbalanced specifier/value counts as errors and fail on any statement error")
	flags.BoolVar(&f.keepSource, "keep-source", false, "stream the source tag before the message")
	flags.BoolVar(&f.dropSource, "drop-source", false, "omit the source tag from the rewritten call")
	flags.BoolVar(&f.naive, "naive", false, "split arguments on every comma and drop every '+'")
	flags.StringVar(&f.marker, "marker", "", "start marker of the calls to rewrite, e.g. 'printout('")
	flags.StringVar(&f.call, "call", "", "name of the streaming call, e.g. LOG")
	flags.StringVar(&f.pattern, "pattern", "", "regular expression matching conversion specifiers")
	flags.BoolVar(&f.noGitignore, "no-gitignore", false, "scan files excluded by .gitignore")
	flags.BoolVar(&f.noHeader, "no-header", false, "omit header rows in tables")
	flags.BoolVar(&f.summary, "summary", apply, "print a per-source summary table to stderr")
	flags.IntVar(&f.width, "width", 0, "table width (default: terminal width)")

	return cmd
}

func runSources(cmd *cobra.Command, g *globalOptions, f *runFlags, args []string, apply bool) error {
	if f.forceColor && f.forceNoColor {
		return errors.New("--color and --no-color cannot be used together")
	}
	if f.keepSource && f.dropSource {
		return errors.New("--keep-source and --drop-source cannot be used together")
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine current directory: %w", err)
	}
	cfg, err := config.Resolve(g.configFile(), wd, g.dialectName())
	if err != nil {
		return err
	}

	opts := cfg.Options
	applyFlags(cmd, f, &opts)
	if err := opts.Compile(); err != nil {
		return err
	}

	if cmd.Flags().Changed("ext") {
		cfg.Extensions = config.NormalizeExtensions(f.exts)
	}
	jobs := cfg.Jobs
	if cmd.Flags().Changed("jobs") {
		jobs = f.jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	logger := logging.New(cmd.ErrOrStderr(), g.verbose)
	defer logger.Sync() //nolint:errcheck
	if cfg.Path != "" {
		logger.Debug("config loaded", zap.String("config", cfg.Path), zap.String("dialect", opts.Dialect))
	}

	listing, err := store.ListSources(store.ListOptions{
		Roots:      args,
		Extensions: cfg.Extensions,
		Gitignore:  cfg.Gitignore && !f.noGitignore,
	})
	if err != nil {
		return err
	}
	for _, warn := range listing.Warnings {
		logger.Warn("source enumeration", zap.Error(warn))
	}

	out := cmd.OutOrStdout()
	files, err := batch.Run(cmd.Context(), batch.Options{
		Sources: listing.Sources,
		Rewrite: &opts,
		Apply:   apply,
		Jobs:    jobs,
		Stdin:   cmd.InOrStdin(),
		Stdout:  out,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if !apply || cmd.Flags().Changed("format") {
		term := batch.NewTerminal(out)
		renderOpts := format.Options{
			Header: !f.noHeader,
			Color:  term.UseColor(batch.ColorChoice{Force: f.forceColor, Disable: f.forceNoColor}),
			Width:  term.Width(f.width),
		}
		if err := format.WriteResults(out, files, f.formatFlag, renderOpts); err != nil {
			return err
		}
	}
	if f.summary {
		if err := format.WriteSummary(cmd.ErrOrStderr(), files, !f.noHeader); err != nil {
			return err
		}
	}

	if batch.Failed(files, opts.Strict) {
		return fmt.Errorf("%d of %d sources had errors", countFailed(files, opts.Strict), len(files))
	}
	return nil
}

// applyFlags overlays the command-line rewrite flags that were set onto opts.
func applyFlags(cmd *cobra.Command, f *runFlags, opts *model.Options) {
	flags := cmd.Flags()
	if flags.Changed("marker") {
		opts.StartMarker = f.marker
	}
	if flags.Changed("call") {
		opts.CallName = f.call
	}
	if flags.Changed("pattern") {
		opts.SpecifierPattern = f.pattern
	}
	if flags.Changed("strict") {
		opts.Strict = f.strict
	}
	if f.keepSource {
		opts.KeepSource = true
	}
	if f.dropSource {
		opts.KeepSource = false
	}
	if f.naive {
		opts.SplitMode = model.SplitNaive
	}
}

func countFailed(files []model.FileResult, strict bool) int {
	n := 0
	for _, file := range files {
		if batch.Failed([]model.FileResult{file}, strict) {
			n++
		}
	}
	return n
}

func newDialectsCmd() *cobra.Command {
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List the built-in call dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var dialects []model.Options
			for _, name := range model.Dialects() {
				opts, err := model.NewOptions(name)
				if err != nil {
					return err
				}
				dialects = append(dialects, opts)
			}
			return format.WriteDialects(cmd.OutOrStdout(), dialects, !noHeader)
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the header row")
	return cmd
}
