package plugin

// Node is the capability contract every input reference must satisfy. The
// orchestrator defines what a node actually is (typically another plugin, or
// a source directory it watches); this package only requires that it can
// identify itself for logs and diagnostics.
type Node interface {
	// Name is the human-readable identity of the node.
	// Example: "babel (stage-1)"
	Name() string
}
