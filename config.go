package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultPackagesDir   = "packages"
	defaultDataDocsDir   = "docs/reference-guides/data"
	defaultTokenSource   = "src/index.js"
	defaultIgnorePattern = "unstable|experimental"

	configFileName = "docsync.toml"
)

// config is the process-wide configuration. It is resolved once at startup
// from defaults, an optional docsync.toml in the root directory, and flag
// overrides, in that order.
type config struct {
	RootDir          string   `toml:"-"`
	PackagesDir      string   `toml:"packages_dir"`
	DataDocsDir      string   `toml:"data_docs_dir"`
	DefaultTokenPath string   `toml:"default_token_path"`
	Generator        []string `toml:"generator"`
	IgnorePattern    string   `toml:"ignore"`
}

func defaultConfig(root string) config {
	return config{
		RootDir:          root,
		PackagesDir:      defaultPackagesDir,
		DataDocsDir:      defaultDataDocsDir,
		DefaultTokenPath: defaultTokenSource,
		IgnorePattern:    defaultIgnorePattern,
	}
}

// loadConfig resolves the configuration for a root directory. The root must
// be an existing directory; it is made absolute so doc and source paths stay
// valid inside the generator child process, whatever its working directory.
// A missing docsync.toml leaves the defaults untouched; a malformed one is an
// error.
func loadConfig(root string) (config, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	info, err := os.Stat(root)
	if err != nil {
		return config{}, fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return config{}, fmt.Errorf("root directory: %s is not a directory", root)
	}
	cfg := defaultConfig(root)
	data, err := os.ReadFile(filepath.Join(root, configFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", configFileName, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", configFileName, err)
	}
	if cfg.PackagesDir == "" {
		cfg.PackagesDir = defaultPackagesDir
	}
	if cfg.DataDocsDir == "" {
		cfg.DataDocsDir = defaultDataDocsDir
	}
	if cfg.DefaultTokenPath == "" {
		cfg.DefaultTokenPath = defaultTokenSource
	}
	if cfg.IgnorePattern == "" {
		cfg.IgnorePattern = defaultIgnorePattern
	}
	return cfg, nil
}

// generatorCommand returns the argv prefix of the documentation generator.
// When none is configured the current binary's docgen subcommand is used, so
// a bare checkout works without installing a separate generator.
func (c config) generatorCommand() ([]string, error) {
	if len(c.Generator) > 0 {
		return c.Generator, nil
	}
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve generator: %w", err)
	}
	return []string{self, "docgen"}, nil
}
