package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// packageForPath derives the package implicated by a repo-relative file path.
// Files under the packages dir belong to the package named by the first path
// segment below it; data reference docs map back through the doc-filename
// convention. Anything else implicates no package.
func (c config) packageForPath(file string) (string, bool) {
	rel := filepath.ToSlash(filepath.Clean(file))
	if after, ok := strings.CutPrefix(rel, filepath.ToSlash(c.PackagesDir)+"/"); ok {
		name, _, _ := strings.Cut(after, "/")
		if name != "" {
			return name, true
		}
		return "", false
	}
	if after, ok := strings.CutPrefix(rel, filepath.ToSlash(c.DataDocsDir)+"/"); ok {
		if !strings.Contains(after, "/") {
			if name, ok := packageForDataDoc(after); ok {
				return name, true
			}
		}
	}
	return "", false
}

// packageForDataDoc maps a data reference doc filename to its package name.
// The convention strips the data- and core- prefixes; the core package's own
// doc is the special pair data-core-data.md.
func packageForDataDoc(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".md")
	if !ok {
		return "", false
	}
	base, ok = strings.CutPrefix(base, "data-")
	if !ok {
		return "", false
	}
	base = strings.TrimPrefix(base, "core-")
	if base == "" {
		return "", false
	}
	if base == "data" {
		base = "core"
	}
	return base, true
}

// dataDocForPackage is the inverse of packageForDataDoc.
func dataDocForPackage(pkg string) string {
	if pkg == "core" {
		pkg = "data"
	}
	return "data-core-" + pkg + ".md"
}

// discoveryPatterns computes the glob patterns scoping discovery. An empty
// file list matches every package README and data doc; otherwise patterns
// narrow to the packages implicated by the given files.
func (c config) discoveryPatterns(files []string) []string {
	pkgDir := filepath.ToSlash(c.PackagesDir)
	docDir := filepath.ToSlash(c.DataDocsDir)
	if len(files) == 0 {
		return []string{
			pkgDir + "/*/README.md",
			docDir + "/*.md",
		}
	}
	seen := make(map[string]struct{})
	var names []string
	for _, f := range files {
		name, ok := c.packageForPath(f)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	docNames := make([]string, len(names))
	for i, name := range names {
		docNames[i] = strings.TrimSuffix(dataDocForPackage(name), ".md")
	}
	return []string{
		pkgDir + "/{" + strings.Join(names, ",") + "}/README.md",
		docDir + "/{" + strings.Join(docNames, ",") + "}.md",
	}
}

// discoverDocFiles walks the root directory and streams every doc file that
// matches one of the patterns and contains at least one token. Files become
// available on the returned channel as they are scanned; the channel closes
// when the walk finishes. Unreadable files are treated as having no tokens.
func discoverDocFiles(cfg config, patterns []string, log *slog.Logger) (<-chan DocFile, error) {
	matchers, err := compileMatchers(patterns)
	if err != nil {
		return nil, err
	}

	out := make(chan DocFile)
	go func() {
		defer close(out)
		root := os.DirFS(cfg.RootDir)
		_ = fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Debug("skipping unreadable entry", "path", p, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || d.Name() == ".git" {
					return fs.SkipDir
				}
				return nil
			}
			if !matchesAny(matchers, p) {
				return nil
			}
			content, err := fs.ReadFile(root, p)
			if err != nil {
				// Unreadable doc files count as token-free, not as failures.
				log.Debug("skipping unreadable doc file", "path", p, "error", err)
				return nil
			}
			tokens := scanTokens(content, cfg.DefaultTokenPath)
			if len(tokens) == 0 {
				return nil
			}
			out <- DocFile{
				Path:   filepath.Join(cfg.RootDir, filepath.FromSlash(p)),
				Tokens: tokens,
			}
			return nil
		})
	}()
	return out, nil
}

func compileMatchers(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func matchesAny(matchers []glob.Glob, p string) bool {
	p = path.Clean(p)
	for _, g := range matchers {
		if g.Match(p) {
			return true
		}
	}
	return false
}
