package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jainvijay/broccoli-plugin/internal/ctxlog"
	"github.com/jainvijay/broccoli-plugin/internal/fsutil"
	"github.com/jainvijay/broccoli-plugin/plugin"
	"github.com/jainvijay/broccoli-plugin/plugintest"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// main is the entrypoint for the broccoli dev runner.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("broccoli", flag.ContinueOnError)
	flagSet.SetOutput(outW)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(outW, `
broccoli - drive a merge transformer through build cycles.

Usage:
  broccoli [options] INPUT_DIR [INPUT_DIR...]

Arguments:
  INPUT_DIR
    One or more input directories, merged in order (later inputs win).

Options:
`)
		flagSet.PrintDefaults()
	}

	cyclesFlag := flagSet.Int("cycles", 1, "Number of build cycles to run.")
	outputFlag := flagSet.String("output", "", "Directory to copy the final output into. Empty prints a file listing instead.")
	volatileFlag := flagSet.Bool("volatile", false, "Disable memoization and build every cycle.")
	persistentFlag := flagSet.Bool("persistent-output", false, "Keep output contents between cycles.")
	trackFlag := flagSet.Bool("track-changes", false, "Deliver per-input change info to the transformer.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return &ExitError{Code: 2, Message: err.Error()}
	}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		flagSet.Usage()
		return nil
	}
	if *cyclesFlag < 1 {
		return &ExitError{Code: 2, Message: "-cycles must be at least 1"}
	}

	logger := newLogger(strings.ToLower(*logLevelFlag), strings.ToLower(*logFormatFlag), os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	nodes := make([]plugin.Node, len(inputs))
	for i, dir := range inputs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return &ExitError{Code: 2, Message: fmt.Sprintf("input %q is not a directory", dir)}
		}
		nodes[i] = plugintest.NewDirNode(abs)
	}

	merge := &mergeTransformer{}
	p, err := plugin.New(merge, nodes, plugin.Options{
		Name:              "merge",
		PersistentOutput:  *persistentFlag,
		Volatile:          *volatileFlag,
		TrackInputChanges: *trackFlag,
	})
	if err != nil {
		return err
	}
	merge.plugin = p

	harness, err := plugintest.New(p)
	if err != nil {
		return err
	}
	defer harness.Close()

	for cycle := 1; cycle <= *cyclesFlag; cycle++ {
		result, err := harness.Build(ctx)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		logger.Info("Cycle settled.", "cycle", cycle, "invoked", result.Invoked)
	}

	if *outputFlag != "" {
		if err := os.MkdirAll(*outputFlag, 0o755); err != nil {
			return err
		}
		return copyTree(harness.OutputPath(), *outputFlag)
	}

	files, err := fsutil.ListFiles(harness.OutputPath())
	if err != nil {
		return err
	}
	for _, file := range files {
		fmt.Fprintln(outW, file)
	}
	return nil
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler

	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
