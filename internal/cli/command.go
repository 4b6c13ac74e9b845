package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dupstat/internal/dupes"
)

// Exit codes returned through ExitError.
const (
	// ExitFatal means the scan could not run or was interrupted.
	ExitFatal = 1
	// ExitIncomplete means the scan completed but some entries could not be read.
	ExitIncomplete = 2
)

// ErrIncomplete is reported when the scan finished with per-entry errors.
var ErrIncomplete = errors.New("scan completed with errors")

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code int
	Err  error
	// Silent is set when the failure has already been reported.
	Silent bool
}

// Error implements error.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

// Execute runs the CLI with the process arguments.
// The returned error is an *ExitError unless flag parsing failed.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := c.command()
	cmd.SetArgs(os.Args[1:])

	return cmd.ExecuteContext(ctx)
}

func (c CLI) command() *cobra.Command {
	var (
		options    dupes.Options
		minSizeStr string
	)

	allowedOutputs := []string{"text", "json"}

	cmd := &cobra.Command{
		Use:   "dupstat [flags] [path]",
		Short: "Report groups of files with identical content",
		Long: heredoc.Doc(`
			dupstat scans a directory tree and reports groups of files whose content is identical.

			Files smaller than --min-size are ignored. Every other file is hashed on a
			bounded pool of workers and grouped by digest.

			Positional Arguments:
			  path                   Directory to scan. Defaults to current directory if not specified.

			Output:
			  Each duplicate group is printed as a block of paths surrounded by blank lines,
			  followed by a 'Total files: N' line counting every file that was hashed.
			  Entries that could not be read are summarized on stderr.

			Exit status:
			  0  scan completed without errors
			  1  fatal error (invalid path, invalid flags, interrupted)
			  2  scan completed, but some entries could not be read
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if options.Jobs < 0 {
				return errors.New("jobs cannot be negative")
			}

			if _, err := dupes.LookupAlgorithm(options.Algorithm); err != nil {
				return err
			}

			if len(args) == 0 {
				options.Path = "."
			} else {
				options.Path = args[0]
			}

			// Parse minSize string to bytes
			size, err := humanize.ParseBytes(minSizeStr)
			if err != nil {
				return fmt.Errorf("invalid min-size: %w", err)
			}

			options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe

			return logic(cmd.Context(), options, c.stdout, c.stderr)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVar(
		&minSizeStr,
		"min-size",
		humanize.IBytes(uint64(dupes.DefaultMinSize)),
		"Minimum file size to hash (e.g., 1KiB, 4MB)",
	)
	flags.StringVarP(
		&options.Algorithm,
		"hash",
		"H",
		dupes.DefaultAlgorithm,
		"Digest algorithm: "+strings.Join(dupes.Algorithms(), ", "),
	)
	flags.IntVarP(&options.Jobs, "jobs", "j", 0, "Maximum hashing jobs in flight (0=twice the CPU count)")
	flags.BoolVar(&options.Parallel, "parallel-walk", false, "List directories in parallel")
	flags.StringVarP(&options.Output, "output", "o", "text", "Output format: text or json")
	flags.BoolVarP(&options.ShowErrors, "show-errors", "e", false, "List every entry that could not be scanned")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.StringVar(&options.LogFormat, "log-format", "console", "Debug log format: console or json")

	flags.SetNormalizeFunc(normalizeFlag)

	return cmd
}

// normalizeFlag accepts underscores in flag names, e.g. --min_size.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
