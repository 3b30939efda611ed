package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"
)

// Version is stamped by the release workflow via -ldflags.
var Version = "dev"

const rootLongDesc = `
docsync keeps generated API reference regions inside Markdown docs in sync with
their source. Doc files mark those regions with token comments:

  <!-- START TOKEN(Autogenerated API docs|src/index.js) -->
  ...replaced content...
  <!-- END TOKEN(Autogenerated API docs) -->

Run it from the repository root. Without arguments every package README under
packages/ and every data reference doc is refreshed. Passing file paths narrows
the run to the packages those files belong to, which is how pre-commit hooks
keep only the touched docs fresh:

  docsync packages/block-editor/src/store/actions.js

Each token is rendered by invoking the configured generator once per token,
strictly in the order tokens appear in a file. Different doc files are updated
concurrently. The built-in 'docsync docgen' generator handles Go sources; set
generator = [...] in docsync.toml to substitute any external generator that
understands the same flags.
`

type cliApp struct {
	stdout io.Writer
	log    *slog.Logger

	rootDir   string
	generator string
	ignore    string
	verbose   bool
	dryRun    bool
	watch     bool
}

func run(ctx context.Context, argv []string, stdout io.Writer) error {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(argv)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout}
	cmd := &cobra.Command{
		Use:           "docsync [flags] [file ...]",
		Short:         "Update generated token regions in Markdown docs",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVar(&app.rootDir, "root", ".", "repository root containing the packages and docs trees")
	flags.StringVar(&app.generator, "generator", "", "generator command overriding docsync.toml (space separated)")
	flags.StringVar(&app.ignore, "ignore", "", "symbol ignore pattern passed to the generator")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&app.dryRun, "dry-run", "n", false, "print generator invocations without running them")
	flags.BoolVarP(&app.watch, "watch", "w", false, "keep running and update docs when sources change")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return app.execute(ctx, args)
	}

	cmd.AddCommand(newDocgenCmd(app))
	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

func (app *cliApp) execute(ctx context.Context, files []string) error {
	app.log = newLogger(app.verbose)
	cfg, err := loadConfig(app.rootDir)
	if err != nil {
		return err
	}
	if app.generator != "" {
		cfg.Generator = strings.Fields(app.generator)
	}
	if app.ignore != "" {
		cfg.IgnorePattern = app.ignore
	}

	u, err := newUpdater(cfg, app.log, app.stdout)
	if err != nil {
		return err
	}
	u.dryRun = app.dryRun

	if err := u.run(ctx, files); err != nil {
		return err
	}
	if app.watch {
		return watchAndUpdate(ctx, cfg, u, app.log)
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newDocgenCmd(app *cliApp) *cobra.Command {
	var opts docgenOptions
	cmd := &cobra.Command{
		Use:   "docgen <source>",
		Short: "Render Go API documentation as Markdown",
		Long: strings.TrimSpace(`
Render the exported API of the Go package at <source> as Markdown.

By default the whole document is written to stdout or --output. With
--to-token the rendered sections replace the marked region of the --output
doc file in place:

  docsync docgen ./store --output README.md --to-token --use-token "Autogenerated API docs" --ignore "unstable|experimental"

This is the invocation contract the updater uses, so any external generator
accepting the same flags can be configured in its place.
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.outputPath, "output", "o", "", "write Markdown to this file instead of stdout")
	flags.BoolVar(&opts.toToken, "to-token", false, "replace the marked token region of --output instead of the whole file")
	flags.StringVar(&opts.useToken, "use-token", "", "token name identifying the region to replace")
	flags.StringVar(&opts.ignore, "ignore", "", "case-insensitive pattern of symbol names to omit")
	flags.BoolVarP(&opts.unexported, "unexported", "u", false, "include unexported symbols")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return docgen(ctx, args[0], opts, app.stdout)
	}
	return cmd
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const longDesc = `Generate shell completion scripts for docsync.

The output should be evaluated by your shell. For example:

  # bash
  docsync completion bash > /usr/local/etc/bash_completion.d/docsync

  # zsh
  docsync completion zsh > "${fpath[1]}/_docsync"

  # fish
  docsync completion fish | source

  # PowerShell
  docsync completion powershell | Out-String | Invoke-Expression
`
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.ExactValidArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell %q", args[0])
		}
	}
	return cmd
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate Markdown reference docs for the CLI",
		Long: strings.TrimSpace(`
Write a Markdown file per command (suitable for publishing CLI docs).

Example:

  docsync gen-docs ./docs/cli
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTree(root, target)
	}
	return cmd
}
