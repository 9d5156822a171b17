package plugintest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/jainvijay/broccoli-plugin/internal/ctxlog"
	"github.com/jainvijay/broccoli-plugin/internal/fsutil"
	"github.com/jainvijay/broccoli-plugin/plugin"
)

// Source is the input-node contract the harness can provision: a node that
// reports the directory its current contents live in.
type Source interface {
	plugin.Node
	Path() string
}

// DirNode is a leaf input node backed by a fixed directory on disk.
type DirNode struct {
	dir   string
	label string
}

// NewDirNode returns a DirNode for dir, labeled with the directory's base name.
func NewDirNode(dir string) *DirNode {
	return &DirNode{dir: dir, label: filepath.Base(dir)}
}

// Name implements plugin.Node.
func (n *DirNode) Name() string {
	return n.label
}

// Path implements Source.
func (n *DirNode) Path() string {
	return n.dir
}

// BuildResult summarizes one harness-driven cycle.
type BuildResult struct {
	// Invoked reports whether the cycle reached the transformer, or was
	// memoized away.
	Invoked bool

	// ChangedSignals are the per-input signals delivered to Setup for this
	// cycle, before the first-cycle all-changed override.
	ChangedSignals []bool
}

// Harness drives one plugin instance through build cycles. Every input node
// of the instance must implement Source. Call Close when done to release
// the temporary workspace.
type Harness struct {
	desc       *plugin.Descriptor
	sources    []Source
	root       string
	outputPath string

	// last holds the input fingerprints committed after the most recent
	// settled cycle. A failed cycle does not commit, so its inputs stay
	// "changed" for the retry.
	last []digest.Digest
}

// New builds a harness around p, provisioning a temporary workspace with an
// output directory inside it.
func New(p *plugin.Plugin) (*Harness, error) {
	desc := p.Describe()
	nodes := desc.InputNodes()
	sources := make([]Source, len(nodes))
	for i, n := range nodes {
		src, ok := n.(Source)
		if !ok {
			return nil, fmt.Errorf("plugintest: input node %q (%T) does not expose a directory", n.Name(), n)
		}
		sources[i] = src
	}

	root, err := os.MkdirTemp("", "broccoli-harness-")
	if err != nil {
		return nil, fmt.Errorf("plugintest: creating workspace: %w", err)
	}
	outputPath := filepath.Join(root, "output")
	if err := os.Mkdir(outputPath, 0o755); err != nil {
		os.RemoveAll(root)
		return nil, fmt.Errorf("plugintest: creating output directory: %w", err)
	}

	return &Harness{
		desc:       desc,
		sources:    sources,
		root:       root,
		outputPath: outputPath,
	}, nil
}

// Close removes the harness workspace, output directory included.
func (h *Harness) Close() error {
	return os.RemoveAll(h.root)
}

// OutputPath returns the output directory the harness provisioned.
func (h *Harness) OutputPath() string {
	return h.outputPath
}

// Build runs one cycle. Changed signals are derived by fingerprinting each
// input tree and comparing against the fingerprints of the last settled
// cycle; on the very first cycle every input reports changed.
func (h *Harness) Build(ctx context.Context) (*BuildResult, error) {
	cur := make([]digest.Digest, len(h.sources))
	signals := make([]bool, len(h.sources))
	for i, src := range h.sources {
		sum, err := treeDigest(src.Path())
		if err != nil {
			return nil, fmt.Errorf("plugintest: fingerprinting input %q: %w", src.Name(), err)
		}
		cur[i] = sum
		signals[i] = h.last == nil || h.last[i] != sum
	}

	res, err := h.cycle(ctx, signals)
	if err != nil {
		return res, err
	}
	h.last = cur
	return res, nil
}

// BuildWithSignals runs one cycle with caller-supplied changed signals,
// bypassing fingerprinting entirely. Useful for exercising the change
// tracker without touching input contents.
func (h *Harness) BuildWithSignals(ctx context.Context, signals []bool) (*BuildResult, error) {
	return h.cycle(ctx, signals)
}

func (h *Harness) cycle(ctx context.Context, signals []bool) (*BuildResult, error) {
	logger := ctxlog.FromContext(ctx)

	inputPaths := make([]string, len(h.sources))
	for i, src := range h.sources {
		inputPaths[i] = src.Path()
	}

	err := h.desc.Setup(plugin.CycleInput{
		InputPaths:     inputPaths,
		OutputPath:     h.outputPath,
		ChangedSignals: signals,
	})
	if err != nil {
		return nil, err
	}

	// Only a cycle that will actually build gets a fresh output directory;
	// a memoized skip must leave the previous contents alone.
	if h.desc.ShouldBuild() && !h.desc.PersistentOutput() {
		if err := fsutil.EmptyDir(h.outputPath); err != nil {
			return nil, fmt.Errorf("plugintest: emptying output directory: %w", err)
		}
	}

	invoked, err := h.desc.Dispatch(ctx)
	result := &BuildResult{Invoked: invoked, ChangedSignals: slices.Clone(signals)}
	if err != nil {
		return result, err
	}
	logger.Debug("Cycle settled.", "plugin", h.desc.Name(), "invoked", invoked)
	return result, nil
}
