package plugin

import (
	"context"
	"slices"

	"github.com/jainvijay/broccoli-plugin/internal/ctxlog"
)

// CycleInput is the state the orchestrator delivers at the start of every
// build cycle.
type CycleInput struct {
	// InputPaths are the directories holding each input node's current
	// contents, index-parallel to the instance's input nodes.
	InputPaths []string

	// OutputPath is the directory this cycle's output goes into.
	OutputPath string

	// ChangedSignals reports, per input, whether it changed since the
	// previous successful cycle. How "changed" is determined is the
	// orchestrator's business. May be nil (no changes reported); ignored on
	// the first cycle, which always treats every input as changed.
	ChangedSignals []bool
}

// Descriptor is the surface the orchestrator drives a plugin instance
// through: Setup once per cycle, then Dispatch. It is a thin handle; all
// state lives on the Plugin.
type Descriptor struct {
	p *Plugin
}

// InputNodes returns the ordered input references fixed at construction.
func (d *Descriptor) InputNodes() []Node {
	return slices.Clone(d.p.inputNodes)
}

// Name returns the instance's display name.
func (d *Descriptor) Name() string {
	return d.p.name
}

// PersistentOutput reports whether the output directory must survive
// between cycles. The orchestrator owns emptying the directory; this is its
// signal not to.
func (d *Descriptor) PersistentOutput() bool {
	return d.p.persistentOutput
}

// Setup begins a new build cycle: it installs the cycle's paths and derives
// the changed-flags sequence from the orchestrator's signals. On the first
// cycle every flag is forced to true, regardless of what was reported,
// because there is no prior state to compare against.
//
// Length mismatches between in.InputPaths (or non-nil in.ChangedSignals)
// and the input nodes fail with a *ConfigurationError and leave the
// previous cycle's state in place.
func (d *Descriptor) Setup(in CycleInput) error {
	p := d.p
	if len(in.InputPaths) != len(p.inputNodes) {
		return configErrorf("%s: got %d input paths for %d input nodes", p.name, len(in.InputPaths), len(p.inputNodes))
	}
	if in.ChangedSignals != nil && len(in.ChangedSignals) != len(p.inputNodes) {
		return configErrorf("%s: got %d changed signals for %d input nodes", p.name, len(in.ChangedSignals), len(p.inputNodes))
	}
	if in.OutputPath == "" {
		return configErrorf("%s: output path must not be empty", p.name)
	}

	changed := make([]bool, len(p.inputNodes))
	if p.cycles == 0 {
		for i := range changed {
			changed[i] = true
		}
	} else {
		copy(changed, in.ChangedSignals)
	}

	p.cur = &cycleState{
		inputPaths: slices.Clone(in.InputPaths),
		outputPath: in.OutputPath,
		changed:    changed,
	}
	p.cycles++
	return nil
}

// ShouldBuild is the memoization gate: it reports whether the current cycle
// must invoke the transformer. Volatile instances always build; otherwise a
// cycle builds when it is the first one, or when at least one input
// changed. It performs no filesystem action and panics if no cycle has been
// set up.
func (d *Descriptor) ShouldBuild() bool {
	p := d.p
	cur := p.current()
	if p.volatile || p.cycles == 1 {
		return true
	}
	return slices.Contains(cur.changed, true)
}

// CallbackObject returns the object Transform calls are dispatched to: the
// constructed transformer, or its CallbackProvider delegate. Resolution
// happens on the first call and is held for the instance's lifetime; a nil
// delegate yields a *ResolutionError on this and every later call.
func (d *Descriptor) CallbackObject() (Transformer, error) {
	return d.p.resolveCallback()
}

// Dispatch runs the current cycle. When the memoization gate decides the
// cycle is a no-op, it returns (false, nil) without touching the output
// directory. Otherwise it invokes the resolved callback's Transform,
// passing a ChangeInfo only when the instance tracks input changes, and
// returns (true, err) with the transformer's error propagated verbatim.
func (d *Descriptor) Dispatch(ctx context.Context) (bool, error) {
	p := d.p
	cur := p.current()
	logger := ctxlog.FromContext(ctx)

	if !d.ShouldBuild() {
		logger.Debug("Cycle memoized, skipping transform.", "plugin", p.String())
		return false, nil
	}

	callback, err := d.CallbackObject()
	if err != nil {
		return false, err
	}

	var info *ChangeInfo
	if p.trackInputChanges {
		info = &ChangeInfo{ChangedNodes: slices.Clone(cur.changed)}
	}

	logger.Debug("Invoking transform.", "plugin", p.String(), "cycle", p.cycles)
	if err := callback.Transform(ctx, info); err != nil {
		return true, err
	}
	return true, nil
}
