package plugintest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/jainvijay/broccoli-plugin/internal/fsutil"
)

// hashConcurrency bounds the number of files hashed in parallel per tree.
const hashConcurrency = 8

// treeDigest fingerprints a directory tree: the sorted relative file paths
// and each file's content digest, folded into one digest. Two trees with
// identical file sets and contents always produce the same value.
func treeDigest(root string) (digest.Digest, error) {
	files, err := fsutil.ListFiles(root)
	if err != nil {
		return "", err
	}

	sums := make([]digest.Digest, len(files))
	var g errgroup.Group
	g.SetLimit(hashConcurrency)
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			defer f.Close()
			sum, err := digest.FromReader(f)
			if err != nil {
				return err
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var manifest strings.Builder
	for i, rel := range files {
		manifest.WriteString(rel)
		manifest.WriteByte(0)
		manifest.WriteString(sums[i].String())
		manifest.WriteByte('\n')
	}
	return digest.FromString(manifest.String()), nil
}
