package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// generatorCall is one invocation of the documentation generator: render the
// docs for Source and substitute them into Token's region inside Doc.
type generatorCall struct {
	Source string
	Doc    string
	Token  string
	Ignore string
}

func (g generatorCall) args() []string {
	return []string{
		g.Source,
		"--output", g.Doc,
		"--to-token",
		"--use-token", g.Token,
		"--ignore", g.Ignore,
	}
}

// runGeneratorFunc executes a single generator call. The default runs the
// configured binary as a child process; tests substitute a recorder.
type runGeneratorFunc func(ctx context.Context, call generatorCall) error

// updater applies token substitutions across discovered doc files. Files run
// concurrently relative to each other; the tokens of one file run strictly in
// file order because the generator rewrites that file in place.
type updater struct {
	cfg    config
	log    *slog.Logger
	stderr io.Writer
	dryRun bool

	outMu  sync.Mutex // doc files print concurrently in dry-run mode
	stdout io.Writer

	runGenerator runGeneratorFunc
}

func newUpdater(cfg config, log *slog.Logger, stdout io.Writer) (*updater, error) {
	u := &updater{
		cfg:    cfg,
		log:    log,
		stderr: os.Stderr,
		stdout: stdout,
	}
	argv, err := cfg.generatorCommand()
	if err != nil {
		return nil, err
	}
	u.runGenerator = func(ctx context.Context, call generatorCall) error {
		cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], call.args()...)...)
		cmd.Dir = cfg.RootDir
		cmd.Stderr = u.stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s %s: %w", filepath.Base(argv[0]), call.Token, err)
		}
		return nil
	}
	return u, nil
}

// run discovers doc files narrowed by the given file list and updates every
// token region. It returns the joined per-file errors, if any.
func (u *updater) run(ctx context.Context, files []string) error {
	patterns := u.cfg.discoveryPatterns(files)
	if len(patterns) == 0 {
		u.log.Info("no packages implicated by the given files")
		return nil
	}
	docFiles, err := discoverDocFiles(u.cfg, patterns, u.log)
	if err != nil {
		return err
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for df := range docFiles {
		wg.Add(1)
		go func(df DocFile) {
			defer wg.Done()
			if err := u.updateFile(ctx, df); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(df)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// updateFile substitutes every token of one doc file, awaiting each generator
// call before starting the next. The first failure aborts the file's
// remaining tokens.
func (u *updater) updateFile(ctx context.Context, df DocFile) error {
	docDir := filepath.Dir(df.Path)
	for _, tok := range df.Tokens {
		call := generatorCall{
			Source: filepath.Join(docDir, filepath.FromSlash(tok.Source)),
			Doc:    df.Path,
			Token:  tok.Name,
			Ignore: u.cfg.IgnorePattern,
		}
		if u.dryRun {
			u.outMu.Lock()
			fmt.Fprintf(u.stdout, "would update %s: token %q from %s\n", df.Path, tok.Name, call.Source)
			u.outMu.Unlock()
			continue
		}
		u.log.Debug("updating token", "doc", df.Path, "token", tok.Name, "source", call.Source)
		if err := u.runGenerator(ctx, call); err != nil {
			return fmt.Errorf("%s: %w", df.Path, err)
		}
	}
	return nil
}
