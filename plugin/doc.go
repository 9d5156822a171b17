// Package plugin is the lifecycle base for transformation units inside a
// directed, acyclic build graph. A plugin instance reads from zero or more
// upstream input directories, writes into exactly one output directory, and
// is driven through repeated build cycles by an external orchestrator that
// owns graph traversal, scheduling, directory provisioning, and watching.
//
// # Core Concepts
//
// The package is built around a few key pieces:
//
//   - Plugin: the per-instance lifecycle state. It holds the ordered input
//     Node references and the Options fixed at construction, plus the
//     per-cycle filesystem paths the orchestrator supplies before each
//     build. Transformation logic reads its current paths through the
//     InputPaths, OutputPath and CachePath accessors.
//
//   - Transformer: the single-method contract the transformation logic
//     implements. The unit that owns the work passes itself (or a delegate,
//     see CallbackProvider) to New and is dispatched to once per building
//     cycle.
//
//   - Descriptor: the orchestrator-facing surface. The orchestrator calls
//     Setup once per cycle to deliver fresh paths and per-input changed
//     signals, then Dispatch to run the cycle. Dispatch applies the
//     memoization gate: unless the instance is Volatile, a cycle in which
//     no input changed is skipped without invoking the Transformer.
//
// On the very first cycle every input is considered changed, because there
// is no prior state to compare against. The changed signal itself is opaque
// to this package; how "changed" is determined (content hash, revision
// counter, ...) is the orchestrator's business.
//
// Within one instance, cycles are strictly sequential: the orchestrator
// never begins a new cycle before the previous one has settled, so the
// package takes no locks around per-cycle state.
//
// Failures surface as ordinary errors. A Transformer that wants to attach
// file/line diagnostics returns a *BuildError; the package passes it
// through to the orchestrator untouched.
package plugin
