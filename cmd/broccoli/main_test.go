package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainvijay/broccoli-plugin/plugintest"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should print usage and return a nil error.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when help was requested")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_InputMustBeDirectory(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{filepath.Join(t.TempDir(), "missing")})

	exitErr, ok := err.(*ExitError)
	require.True(t, ok, "expected an *ExitError, got %T", err)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_MergesInputs(t *testing.T) {
	t.Parallel()

	left, right := t.TempDir(), t.TempDir()
	require.NoError(t, plugintest.WriteTree(left, map[string]any{
		"a.txt":      "left",
		"shared.txt": "from left",
	}))
	require.NoError(t, plugintest.WriteTree(right, map[string]any{
		"b.txt":      "right",
		"shared.txt": "from right",
	}))
	dest := filepath.Join(t.TempDir(), "merged")

	out := &bytes.Buffer{}
	err := run(out, []string{"-cycles", "2", "-output", dest, left, right})
	require.NoError(t, err)

	tree, err := plugintest.ReadTree(dest)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a.txt":      "left",
		"b.txt":      "right",
		"shared.txt": "from right",
	}, tree, "later inputs must win on collisions")
}

func TestRun_ListsOutputWithoutDestination(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, plugintest.WriteTree(src, map[string]any{
		"index.html": "<html></html>",
		"assets": map[string]any{
			"app.js": "console.log(1);",
		},
	}))

	out := &bytes.Buffer{}
	err := run(out, []string{src})
	require.NoError(t, err)
	assert.Equal(t, "assets/app.js\nindex.html\n", out.String())
}
