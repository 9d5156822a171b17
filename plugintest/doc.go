// Package plugintest drives a single plugin instance through build cycles
// without a real orchestrator. It owns a temporary workspace, provisions
// the output directory, derives per-input changed signals by fingerprinting
// each input tree, and runs the Setup / gate / Dispatch sequence a real
// build would.
//
// It deliberately stops at one instance: graph construction, scheduling
// across instances, and file watching belong to a full orchestrator, not to
// a test harness.
package plugintest
