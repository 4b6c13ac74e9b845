package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dupstat/internal/dupes"
	"github.com/idelchi/dupstat/internal/logging"
)

// isTerminal reports whether w is a terminal. Replaced in tests.
//
//nolint:gochecknoglobals // Test seam
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func logic(ctx context.Context, options dupes.Options, stdout, stderr io.Writer) error {
	level := "info"
	if options.Debug {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{Level: level, Format: options.LogFormat, Writer: stderr})
	if err != nil {
		return err
	}

	enableProgress := strings.ToLower(options.Output) != "json" &&
		!options.Debug &&
		isTerminal(stderr)

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Hashing… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	report, err := dupes.Run(ctx, options, logger, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	switch strings.ToLower(options.Output) {
	case "json":
		err = PrintJSON(report, stdout)
	case "text":
		err = PrintText(report, stdout)
	default:
		err = fmt.Errorf("unknown output format: %s", options.Output)
	}

	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	if len(report.Errors) == 0 {
		return nil
	}

	if err := PrintErrorSummary(report, stderr, options.ShowErrors); err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	return &ExitError{Code: ExitIncomplete, Err: ErrIncomplete, Silent: true}
}
