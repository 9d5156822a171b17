package plugin

import "fmt"

// ConfigurationError reports an invalid construction or an orchestrator
// contract violation during Setup. It is always fatal to the operation that
// produced it; nothing in this package recovers from it internally.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "plugin: " + e.Msg
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ResolutionError reports that callback resolution produced an object with
// no transformation method (a nil Transformer). It surfaces at the first
// dispatch attempt.
type ResolutionError struct {
	// Plugin is the display name of the instance whose resolution failed.
	Plugin string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("plugin: %s: callback resolution returned no transformer", e.Plugin)
}

// BuildError is the diagnostic shape a failed transformation may use to
// attach a source location to its failure. The lifecycle passes it through
// to the orchestrator unmodified; none of the fields are interpreted here.
type BuildError struct {
	// Err is the underlying failure. Required.
	Err error

	// File is a path relative to TreeDir identifying the offending source
	// file. Optional.
	File string

	// TreeDir is the input path File is relative to, one of the instance's
	// current input paths. Optional.
	TreeDir string

	// Line is the one-indexed source line. Zero means unset.
	Line int

	// Column is the zero-indexed source column. Negative means unset.
	Column int
}

// NewBuildError wraps err with no location attached. Callers fill in the
// location fields they know; Column starts out unset.
func NewBuildError(err error) *BuildError {
	return &BuildError{Err: err, Column: -1}
}

func (e *BuildError) Error() string {
	if e.File == "" {
		return e.Err.Error()
	}
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
		if e.Column >= 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Column)
		}
	}
	return loc + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
