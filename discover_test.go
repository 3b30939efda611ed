package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestPackageForPath(t *testing.T) {
	cfg := defaultConfig(".")
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"packages/block-editor/src/store/actions.js", "block-editor", true},
		{"packages/core/README.md", "core", true},
		{"docs/reference-guides/data/data-core-foo.md", "foo", true},
		{"docs/reference-guides/data/data-core-data.md", "core", true},
		{"docs/reference-guides/data/notes.txt", "", false},
		{"docs/reference-guides/data/nested/data-core-foo.md", "", false},
		{"lib/compat.php", "", false},
		{"packages/", "", false},
	}
	for _, tt := range tests {
		got, ok := cfg.packageForPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

// Derivation and doc-filename generation must invert each other for the
// convention pairs.
func TestDataDocNameRoundTrip(t *testing.T) {
	pairs := map[string]string{
		"core": "data-core-data.md",
		"foo":  "data-core-foo.md",
	}
	for pkg, doc := range pairs {
		assert.Equal(t, doc, dataDocForPackage(pkg))
		got, ok := packageForDataDoc(doc)
		require.True(t, ok, doc)
		assert.Equal(t, pkg, got)
	}
}

func TestDiscoveryPatternsUnscoped(t *testing.T) {
	cfg := defaultConfig(".")
	assert.Equal(t, []string{
		"packages/*/README.md",
		"docs/reference-guides/data/*.md",
	}, cfg.discoveryPatterns(nil))
}

func TestDiscoveryPatternsNarrowToImplicatedPackages(t *testing.T) {
	cfg := defaultConfig(".")
	patterns := cfg.discoveryPatterns([]string{
		"packages/foo/src/selectors.js",
		"packages/foo/src/actions.js", // duplicate package collapses
	})
	assert.Equal(t, []string{
		"packages/{foo}/README.md",
		"docs/reference-guides/data/{data-core-foo}.md",
	}, patterns)
}

func TestDiscoveryPatternsMultiplePackagesSorted(t *testing.T) {
	cfg := defaultConfig(".")
	patterns := cfg.discoveryPatterns([]string{
		"packages/foo/src/index.js",
		"docs/reference-guides/data/data-core-data.md",
	})
	assert.Equal(t, []string{
		"packages/{core,foo}/README.md",
		"docs/reference-guides/data/{data-core-data,data-core-foo}.md",
	}, patterns)
}

func TestDiscoveryPatternsNoImplicatedPackages(t *testing.T) {
	cfg := defaultConfig(".")
	assert.Nil(t, cfg.discoveryPatterns([]string{"lib/compat.php"}))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

const tokenReadme = `# pkg

<!-- START TOKEN(Autogenerated API docs) -->
<!-- END TOKEN(Autogenerated API docs) -->
`

func TestDiscoverDocFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md":                       tokenReadme,
		"packages/bar/README.md":                       "# bar\n\nno markers\n",
		"packages/baz/src/index.js":                    "export {}\n",
		"docs/reference-guides/data/data-core-foo.md":  "<!-- START TOKEN(Autogenerated selectors|../../../packages/foo/src/selectors.js) -->\n<!-- END TOKEN(Autogenerated selectors) -->\n",
		"docs/reference-guides/data/architecture.adoc": "ignored extension",
	})
	cfg := defaultConfig(root)

	ch, err := discoverDocFiles(cfg, cfg.discoveryPatterns(nil), discardLogger())
	require.NoError(t, err)

	var paths []string
	byPath := map[string]DocFile{}
	for df := range ch {
		rel, err := filepath.Rel(root, df.Path)
		require.NoError(t, err)
		rel = filepath.ToSlash(rel)
		paths = append(paths, rel)
		byPath[rel] = df
	}
	sort.Strings(paths)
	// bar has no tokens, baz has no README, architecture.adoc never matches.
	assert.Equal(t, []string{
		"docs/reference-guides/data/data-core-foo.md",
		"packages/foo/README.md",
	}, paths)

	readme := byPath["packages/foo/README.md"]
	require.Len(t, readme.Tokens, 1)
	assert.Equal(t, "src/index.js", readme.Tokens[0].Source)

	dataDoc := byPath["docs/reference-guides/data/data-core-foo.md"]
	require.Len(t, dataDoc.Tokens, 1)
	assert.Equal(t, "../../../packages/foo/src/selectors.js", dataDoc.Tokens[0].Source)
}

func TestDiscoverDocFilesNarrowed(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": tokenReadme,
		"packages/bar/README.md": tokenReadme,
	})
	cfg := defaultConfig(root)

	ch, err := discoverDocFiles(cfg, cfg.discoveryPatterns([]string{"packages/foo/src/index.js"}), discardLogger())
	require.NoError(t, err)

	var paths []string
	for df := range ch {
		paths = append(paths, df.Path)
	}
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "packages", "foo", "README.md"), paths[0])
}

func TestDiscoverSkipsUnreadableFiles(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": tokenReadme,
		"packages/bar/README.md": tokenReadme,
	})
	require.NoError(t, os.Chmod(filepath.Join(root, "packages", "bar", "README.md"), 0o000))
	t.Cleanup(func() {
		_ = os.Chmod(filepath.Join(root, "packages", "bar", "README.md"), 0o644)
	})
	cfg := defaultConfig(root)

	ch, err := discoverDocFiles(cfg, cfg.discoveryPatterns(nil), discardLogger())
	require.NoError(t, err)

	var got []DocFile
	for df := range ch {
		got = append(got, df)
	}
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "packages", "foo", "README.md"), got[0].Path)
}
