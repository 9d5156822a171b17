package plugin

import (
	"fmt"
	"strings"
)

// Options configures a plugin instance. The zero value is a valid
// configuration; every field's zero value is its default. Options are fixed
// at construction and never consulted for mutation afterwards.
type Options struct {
	// Name identifies the instance in logs and error messages. Defaults to
	// the Transformer's concrete type name.
	Name string

	// Annotation is a free-form descriptive suffix, useful to tell apart
	// several instances of the same transformer.
	Annotation string

	// PersistentOutput tells the orchestrator not to empty the output
	// directory between cycles. With it set, a memoized (skipped) cycle
	// leaves the previous cycle's output intact.
	PersistentOutput bool

	// DisableCache disables provisioning of the per-instance cache
	// directory. By default every instance gets a cache directory, created
	// lazily on first CachePath call and kept for the instance's lifetime.
	DisableCache bool

	// Volatile disables memoization entirely: the transformer runs every
	// cycle even when no input changed.
	Volatile bool

	// TrackInputChanges delivers a ChangeInfo value to the transformer on
	// each invocation. Without it the transformer receives nil, even though
	// the memoization gate still uses the per-input signals internally.
	TrackInputChanges bool
}

// displayName derives the instance name from the options, falling back to
// the transformer's concrete type name.
func displayName(opts Options, transformer Transformer) string {
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%T", transformer)
		name = strings.TrimPrefix(name, "*")
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
	}
	return name
}
