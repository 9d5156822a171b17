package plugin

import "context"

// Transformer is the single operation a transformation unit must provide.
// It is invoked at most once per build cycle, strictly sequentially: a new
// cycle's invocation never begins before the previous one has returned.
//
// change is non-nil only when the instance was constructed with
// Options.TrackInputChanges. The transformer reads its current filesystem
// locations through the owning Plugin's InputPaths, OutputPath and
// CachePath accessors.
type Transformer interface {
	Transform(ctx context.Context, change *ChangeInfo) error
}

// TransformFunc adapts a plain function to the Transformer interface.
type TransformFunc func(ctx context.Context, change *ChangeInfo) error

// Transform calls f.
func (f TransformFunc) Transform(ctx context.Context, change *ChangeInfo) error {
	return f(ctx, change)
}

// ChangeInfo carries the per-input change record for one build cycle.
type ChangeInfo struct {
	// ChangedNodes is index-parallel to the instance's input nodes: element
	// i reports whether input i changed since the previous successful
	// cycle. On the first cycle every element is true.
	ChangedNodes []bool
}

// CallbackProvider substitutes the object that receives Transform calls.
//
// If the Transformer handed to New also implements CallbackProvider, the
// orchestrator dispatches every cycle to the returned delegate instead of
// the constructed transformer. Resolution happens exactly once, before the
// first dispatch, and the result is held for the instance's lifetime.
type CallbackProvider interface {
	CallbackObject() Transformer
}
