package plugin

import (
	"fmt"
	"os"
	"slices"
	"sync"
)

// Plugin is the per-instance lifecycle state of one transformation unit.
// Construct it with New, hand the Descriptor to the orchestrator, and read
// the current cycle's filesystem locations through the path accessors from
// inside the Transformer.
type Plugin struct {
	name              string
	annotation        string
	persistentOutput  bool
	cacheDisabled     bool
	volatile          bool
	trackInputChanges bool

	transformer Transformer
	inputNodes  []Node

	// callback is resolved exactly once, before the first dispatch.
	resolveOnce sync.Once
	callback    Transformer
	callbackErr error

	// cachePath is provisioned exactly once, on first need.
	cacheOnce sync.Once
	cachePath string
	cacheErr  error

	// cur is the current cycle's state. It is replaced wholesale by Setup
	// between cycles and never mutated while a cycle is in flight, so no
	// locking is needed: the orchestrator drives cycles sequentially.
	cur    *cycleState
	cycles int
}

// cycleState is one cycle's worth of orchestrator-supplied state.
type cycleState struct {
	inputPaths []string
	outputPath string
	changed    []bool
}

// New validates the input references and configuration and returns the
// lifecycle state for one instance. transformer is the default dispatch
// target; if it also implements CallbackProvider, dispatch goes to its
// delegate instead.
//
// A nil transformer or a nil element in inputNodes fails with a
// *ConfigurationError. An empty input sequence is legal: such an instance
// builds once and, unless Volatile, never again.
func New(transformer Transformer, inputNodes []Node, opts Options) (*Plugin, error) {
	if transformer == nil {
		return nil, configErrorf("transformer must not be nil")
	}
	for i, n := range inputNodes {
		if n == nil {
			return nil, configErrorf("input node at index %d is nil", i)
		}
	}

	return &Plugin{
		name:              displayName(opts, transformer),
		annotation:        opts.Annotation,
		persistentOutput:  opts.PersistentOutput,
		cacheDisabled:     opts.DisableCache,
		volatile:          opts.Volatile,
		trackInputChanges: opts.TrackInputChanges,
		transformer:       transformer,
		inputNodes:        slices.Clone(inputNodes),
	}, nil
}

// Name returns the instance's display name.
func (p *Plugin) Name() string {
	return p.name
}

// String implements fmt.Stringer.
func (p *Plugin) String() string {
	if p.annotation == "" {
		return p.name
	}
	return fmt.Sprintf("%s (%s)", p.name, p.annotation)
}

// InputPaths returns the current cycle's ordered input directories,
// index-parallel to the input nodes given at construction. It panics when
// called outside a build cycle; transformation logic must only read paths
// while its Transform invocation is in flight.
func (p *Plugin) InputPaths() []string {
	return slices.Clone(p.current().inputPaths)
}

// OutputPath returns the current cycle's output directory. The directory is
// exclusively owned by this instance; the orchestrator empties it before
// each building cycle unless PersistentOutput is set. Panics when called
// outside a build cycle.
func (p *Plugin) OutputPath() string {
	return p.current().outputPath
}

// CachePath returns the instance's cache directory, creating it on first
// call. The same location is returned for the rest of the instance's
// lifetime; its contents survive across cycles and are entirely
// plugin-defined. When the instance was constructed with DisableCache, an
// error is returned on every call.
func (p *Plugin) CachePath() (string, error) {
	if p.cacheDisabled {
		return "", fmt.Errorf("plugin: %s: cache was disabled at construction", p.name)
	}
	p.cacheOnce.Do(func() {
		dir, err := os.MkdirTemp("", "broccoli-cache-")
		if err != nil {
			p.cacheErr = fmt.Errorf("plugin: %s: provisioning cache directory: %w", p.name, err)
			return
		}
		p.cachePath = dir
	})
	return p.cachePath, p.cacheErr
}

// PersistentOutput reports whether the orchestrator must leave the output
// directory intact between cycles.
func (p *Plugin) PersistentOutput() bool {
	return p.persistentOutput
}

// Describe returns the orchestrator-facing surface of this instance.
func (p *Plugin) Describe() *Descriptor {
	return &Descriptor{p: p}
}

func (p *Plugin) current() *cycleState {
	if p.cur == nil {
		panic(fmt.Sprintf("plugin: %s: no build cycle in progress (Setup has not been called)", p.name))
	}
	return p.cur
}

// resolveCallback resolves the effective dispatch target exactly once.
func (p *Plugin) resolveCallback() (Transformer, error) {
	p.resolveOnce.Do(func() {
		p.callback = p.transformer
		if provider, ok := p.transformer.(CallbackProvider); ok {
			p.callback = provider.CallbackObject()
		}
		if p.callback == nil {
			p.callbackErr = &ResolutionError{Plugin: p.name}
		}
	})
	return p.callback, p.callbackErr
}
