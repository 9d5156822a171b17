package plugintest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainvijay/broccoli-plugin/plugin"
	"github.com/jainvijay/broccoli-plugin/plugintest"
)

// marker writes a numbered marker file into the output on every invocation.
type marker struct {
	base       *plugin.Plugin
	calls      int
	failNext   error
	lastChange *plugin.ChangeInfo
}

func (m *marker) Transform(_ context.Context, change *plugin.ChangeInfo) error {
	m.calls++
	m.lastChange = change
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	name := fmt.Sprintf("build-%d.txt", m.calls)
	return os.WriteFile(filepath.Join(m.base.OutputPath(), name), []byte("ok"), 0o644)
}

// newMarkerHarness wires a marker transformer over the given source dirs.
func newMarkerHarness(t *testing.T, opts plugin.Options, dirs ...string) (*plugintest.Harness, *marker) {
	t.Helper()

	inputs := make([]plugin.Node, len(dirs))
	for i, dir := range dirs {
		inputs[i] = plugintest.NewDirNode(dir)
	}
	m := &marker{}
	p, err := plugin.New(m, inputs, opts)
	require.NoError(t, err)
	m.base = p

	h, err := plugintest.New(p)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h, m
}

func writeTree(t *testing.T, dir string, tree map[string]any) {
	t.Helper()
	require.NoError(t, plugintest.WriteTree(dir, tree))
}

func TestHarness_MemoizesUnchangedInputs(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]any{"a.txt": "one"})
	h, m := newMarkerHarness(t, plugin.Options{}, src)
	ctx := context.Background()

	res, err := h.Build(ctx)
	require.NoError(t, err)
	require.True(t, res.Invoked)

	res, err = h.Build(ctx)
	require.NoError(t, err)
	assert.False(t, res.Invoked, "nothing changed, the cycle must be memoized")
	assert.Equal(t, 1, m.calls)

	// The memoized cycle must leave the previous output alone.
	_, err = os.Stat(filepath.Join(h.OutputPath(), "build-1.txt"))
	require.NoError(t, err)

	writeTree(t, src, map[string]any{"a.txt": "two"})
	res, err = h.Build(ctx)
	require.NoError(t, err)
	assert.True(t, res.Invoked)
	assert.Equal(t, 2, m.calls)
}

func TestHarness_SignalsPerInput(t *testing.T) {
	t.Parallel()

	left, right := t.TempDir(), t.TempDir()
	writeTree(t, left, map[string]any{"l.txt": "left"})
	writeTree(t, right, map[string]any{"r.txt": "right"})
	h, m := newMarkerHarness(t, plugin.Options{TrackInputChanges: true}, left, right)
	ctx := context.Background()

	_, err := h.Build(ctx)
	require.NoError(t, err)
	require.NotNil(t, m.lastChange)
	assert.Equal(t, []bool{true, true}, m.lastChange.ChangedNodes)

	writeTree(t, right, map[string]any{"r.txt": "changed"})
	res, err := h.Build(ctx)
	require.NoError(t, err)
	require.True(t, res.Invoked)
	assert.Equal(t, []bool{false, true}, m.lastChange.ChangedNodes)
}

func TestHarness_FailedCycleKeepsInputsChanged(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]any{"a.txt": "one"})
	h, m := newMarkerHarness(t, plugin.Options{}, src)
	ctx := context.Background()

	m.failNext = errors.New("transform blew up")
	res, err := h.Build(ctx)
	require.EqualError(t, err, "transform blew up")
	require.True(t, res.Invoked)

	// The failure must not commit fingerprints: the retry still sees the
	// inputs as changed and builds.
	res, err = h.Build(ctx)
	require.NoError(t, err)
	assert.True(t, res.Invoked)
	assert.Equal(t, 2, m.calls)

	res, err = h.Build(ctx)
	require.NoError(t, err)
	assert.False(t, res.Invoked)
}

func TestHarness_OutputEmptiedUnlessPersistent(t *testing.T) {
	t.Parallel()

	t.Run("default output is emptied before a building cycle", func(t *testing.T) {
		t.Parallel()

		src := t.TempDir()
		writeTree(t, src, map[string]any{"a.txt": "one"})
		h, _ := newMarkerHarness(t, plugin.Options{Volatile: true}, src)
		ctx := context.Background()

		_, err := h.Build(ctx)
		require.NoError(t, err)
		_, err = h.Build(ctx)
		require.NoError(t, err)

		tree, err := plugintest.ReadTree(h.OutputPath())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"build-2.txt": "ok"}, tree)
	})

	t.Run("persistent output accumulates", func(t *testing.T) {
		t.Parallel()

		src := t.TempDir()
		writeTree(t, src, map[string]any{"a.txt": "one"})
		h, _ := newMarkerHarness(t, plugin.Options{Volatile: true, PersistentOutput: true}, src)
		ctx := context.Background()

		_, err := h.Build(ctx)
		require.NoError(t, err)
		_, err = h.Build(ctx)
		require.NoError(t, err)

		tree, err := plugintest.ReadTree(h.OutputPath())
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"build-1.txt": "ok", "build-2.txt": "ok"}, tree)
	})
}

func TestHarness_BuildWithSignals(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeTree(t, src, map[string]any{"a.txt": "one"})
	h, m := newMarkerHarness(t, plugin.Options{}, src)
	ctx := context.Background()

	_, err := h.BuildWithSignals(ctx, []bool{false})
	require.NoError(t, err)
	require.Equal(t, 1, m.calls, "the first cycle builds regardless of signals")

	res, err := h.BuildWithSignals(ctx, []bool{false})
	require.NoError(t, err)
	assert.False(t, res.Invoked)

	res, err = h.BuildWithSignals(ctx, []bool{true})
	require.NoError(t, err)
	assert.True(t, res.Invoked)
	assert.Equal(t, 2, m.calls)
}

// opaqueNode satisfies plugin.Node but exposes no directory.
type opaqueNode struct{}

func (opaqueNode) Name() string { return "opaque" }

func TestNew_RejectsNodesWithoutDirectories(t *testing.T) {
	t.Parallel()

	p, err := plugin.New(&marker{}, []plugin.Node{opaqueNode{}}, plugin.Options{})
	require.NoError(t, err)

	_, err = plugintest.New(p)
	require.ErrorContains(t, err, "does not expose a directory")
}

func TestDirNode(t *testing.T) {
	t.Parallel()

	n := plugintest.NewDirNode("/trees/styles")
	assert.Equal(t, "styles", n.Name())
	assert.Equal(t, "/trees/styles", n.Path())
}
