package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// watchAndUpdate re-runs the updater whenever files under the packages tree
// or the data docs dir change. Events are debounced and mapped back to the
// implicated packages, so one save triggers one narrowed run. Doc files
// matching the discovery patterns are the updater's own outputs; events for
// them are ignored, otherwise each generator rewrite would queue the next
// run. Returns when ctx is cancelled.
func watchAndUpdate(ctx context.Context, cfg config, u *updater, log *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	docMatchers, err := compileMatchers(cfg.discoveryPatterns(nil))
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.PackagesDir, cfg.DataDocsDir} {
		if err := watchTree(w, filepath.Join(cfg.RootDir, dir)); err != nil {
			return err
		}
	}
	log.Info("watching for changes", "root", cfg.RootDir)

	var (
		pending = make(map[string]struct{})
		timer   = time.NewTimer(watchDebounce)
	)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watchTree(w, ev.Name)
					continue
				}
			}
			rel, err := filepath.Rel(cfg.RootDir, ev.Name)
			if err != nil {
				continue
			}
			if matchesAny(docMatchers, filepath.ToSlash(rel)) {
				continue
			}
			if _, ok := cfg.packageForPath(rel); !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(watchDebounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			pending = make(map[string]struct{})
			log.Debug("change detected", "files", files)
			if err := u.run(ctx, files); err != nil {
				log.Error("update failed", "error", err)
			}
		}
	}
}

// watchTree registers root and every directory below it. fsnotify watches a
// single directory level, so the tree is walked once up front and new
// directories are added as Create events arrive.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == "node_modules" || d.Name() == ".git" {
			return fs.SkipDir
		}
		return w.Add(p)
	})
}
