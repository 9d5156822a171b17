package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/jainvijay/broccoli-plugin/internal/ctxlog"
	"github.com/jainvijay/broccoli-plugin/internal/fsutil"
	"github.com/jainvijay/broccoli-plugin/plugin"
)

// mergeTransformer copies every input tree into the output directory in
// order, later inputs winning on path collisions.
type mergeTransformer struct {
	plugin *plugin.Plugin
}

// Transform implements plugin.Transformer.
func (m *mergeTransformer) Transform(ctx context.Context, change *plugin.ChangeInfo) error {
	logger := ctxlog.FromContext(ctx)
	if change != nil {
		logger.Debug("Merging with change info.", "changedNodes", change.ChangedNodes)
	}

	out := m.plugin.OutputPath()
	for _, in := range m.plugin.InputPaths() {
		if err := copyTree(in, out); err != nil {
			return err
		}
	}
	return nil
}

// copyTree copies every regular file under src into dst, preserving
// relative paths and overwriting existing files.
func copyTree(src, dst string) error {
	files, err := fsutil.ListFiles(src)
	if err != nil {
		return err
	}
	for _, rel := range files {
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := copyFile(filepath.Join(src, filepath.FromSlash(rel)), target); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
