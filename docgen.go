package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/doc"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/tools/go/packages"
)

// docgenOptions configures one generator run. The flag surface mirrors the
// invocation contract the updater uses, so the binary can serve as its own
// external generator.
type docgenOptions struct {
	outputPath string
	toToken    bool
	useToken   string
	ignore     string
	unexported bool
}

// docgen renders the API documentation for the Go package at source and
// either writes the whole document or splices it into the marked token region
// of the output file.
func docgen(ctx context.Context, source string, opts docgenOptions, stdout io.Writer) error {
	if opts.toToken {
		if opts.outputPath == "" || opts.outputPath == "-" {
			return errors.New("--to-token requires --output pointing at a doc file")
		}
		if opts.useToken == "" {
			return errors.New("--to-token requires --use-token")
		}
	}

	var ignore *regexp.Regexp
	if opts.ignore != "" {
		re, err := regexp.Compile("(?i)" + opts.ignore)
		if err != nil {
			return fmt.Errorf("compile ignore pattern: %w", err)
		}
		ignore = re
	}

	pkgInfo, err := loadSourcePackage(ctx, source)
	if err != nil {
		return err
	}
	docPkg, err := buildDocPackage(pkgInfo, opts.unexported)
	if err != nil {
		return err
	}
	renderer := &apiRenderer{
		pkg:     docPkg,
		fileset: pkgInfo.Fset,
		ignore:  ignore,
	}

	var buf bytes.Buffer
	if opts.toToken {
		renderer.renderAPI(&buf)
		return spliceIntoToken(opts.outputPath, opts.useToken, buf.Bytes())
	}
	renderer.renderPackage(&buf)
	return writeOutput(opts.outputPath, stdout, buf.Bytes())
}

// loadSourcePackage loads the Go package containing source. A file path is
// resolved through its directory so tokens may point at any file of the
// package, matching the doc-file convention of naming an entry-point file.
func loadSourcePackage(ctx context.Context, source string) (*packages.Package, error) {
	dir := source
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		dir = filepath.Dir(source)
	}
	pattern := dir
	if !strings.HasPrefix(pattern, ".") && !filepath.IsAbs(pattern) {
		pattern = "./" + filepath.ToSlash(pattern)
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName | packages.NeedCompiledGoFiles | packages.NeedFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedModule | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no Go packages matched %q", source)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("%s", pkg.Errors[0])
	}
	return pkg, nil
}

func buildDocPackage(pkgInfo *packages.Package, unexported bool) (*doc.Package, error) {
	mode := doc.Mode(0)
	if unexported {
		mode |= doc.AllDecls | doc.AllMethods
	}
	return doc.NewFromFiles(pkgInfo.Fset, pkgInfo.Syntax, pkgInfo.PkgPath, mode)
}

// spliceIntoToken rewrites the marked region of the doc file in place. An
// already up-to-date region is left untouched so the file's mtime only moves
// when its content does.
func spliceIntoToken(docPath, token string, rendered []byte) error {
	content, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read doc file: %w", err)
	}
	updated, err := replaceTokenRegion(content, token, rendered)
	if err != nil {
		return fmt.Errorf("%s: %w", docPath, err)
	}
	if bytes.Equal(updated, content) {
		return nil
	}
	return os.WriteFile(docPath, updated, 0o644)
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
