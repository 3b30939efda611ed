package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callRecorder substitutes the exec-based generator with an in-process log.
type callRecorder struct {
	mu    sync.Mutex
	calls []generatorCall
	fail  map[string]error // token name -> injected failure
}

func (r *callRecorder) run(_ context.Context, call generatorCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if err, ok := r.fail[call.Token]; ok {
		return err
	}
	return nil
}

func (r *callRecorder) tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Token
	}
	return names
}

func newTestUpdater(t *testing.T, cfg config, rec *callRecorder) *updater {
	t.Helper()
	u, err := newUpdater(cfg, discardLogger(), &bytes.Buffer{})
	require.NoError(t, err)
	u.runGenerator = rec.run
	return u
}

const multiTokenReadme = `# pkg

<!-- START TOKEN(Autogenerated actions|src/actions.js) -->
<!-- END TOKEN(Autogenerated actions|src/actions.js) -->

<!-- START TOKEN(Autogenerated selectors|src/selectors.js) -->
<!-- END TOKEN(Autogenerated selectors|src/selectors.js) -->
`

func TestUpdateRunsTokensInFileOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": multiTokenReadme,
	})
	cfg := defaultConfig(root)
	rec := &callRecorder{}
	u := newTestUpdater(t, cfg, rec)

	require.NoError(t, u.run(context.Background(), nil))
	assert.Equal(t, []string{"Autogenerated actions", "Autogenerated selectors"}, rec.tokens())
}

func TestUpdateResolvesSourceAgainstDocDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": tokenReadme,
	})
	cfg := defaultConfig(root)
	rec := &callRecorder{}
	u := newTestUpdater(t, cfg, rec)

	require.NoError(t, u.run(context.Background(), nil))
	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, filepath.Join(root, "packages", "foo", "src", "index.js"), call.Source)
	assert.Equal(t, filepath.Join(root, "packages", "foo", "README.md"), call.Doc)
	assert.Equal(t, "unstable|experimental", call.Ignore)
}

func TestUpdateGeneratorFailureAbortsRemainingTokensOfFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": multiTokenReadme,
		"packages/bar/README.md": tokenReadme,
	})
	cfg := defaultConfig(root)
	rec := &callRecorder{fail: map[string]error{
		"Autogenerated actions": errors.New("docgen exploded"),
	}}
	u := newTestUpdater(t, cfg, rec)

	err := u.run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "docgen exploded")

	tokens := rec.tokens()
	// foo's second token never ran; bar's single token did.
	assert.NotContains(t, tokens, "Autogenerated selectors")
	assert.Contains(t, tokens, "Autogenerated API docs")
}

func TestUpdateNoImplicatedPackagesIsNoop(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": tokenReadme,
	})
	cfg := defaultConfig(root)
	rec := &callRecorder{}
	u := newTestUpdater(t, cfg, rec)

	require.NoError(t, u.run(context.Background(), []string{"lib/compat.php"}))
	assert.Empty(t, rec.calls)
}

func TestUpdateDryRunSkipsGenerator(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"packages/foo/README.md": tokenReadme,
	})
	cfg := defaultConfig(root)
	var out bytes.Buffer
	u, err := newUpdater(cfg, discardLogger(), &out)
	require.NoError(t, err)
	rec := &callRecorder{}
	u.runGenerator = rec.run
	u.dryRun = true

	require.NoError(t, u.run(context.Background(), nil))
	assert.Empty(t, rec.calls)
	assert.Contains(t, out.String(), "would update")
	assert.Contains(t, out.String(), "Autogenerated API docs")
}
