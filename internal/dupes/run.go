package dupes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is
// done or the returned stop function is called. Once stop returns, hook is not
// invoked again.
func startProgressReporter(
	ctx context.Context,
	counters *Counters,
	hook func(int64, int64),
	interval time.Duration,
) (stop func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(counters.Files.Load(), counters.Bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Run scans the tree at opt.Path and returns the duplicate report.
//
// The root must be an existing directory; anything else is a fatal error
// returned before any work starts. Failures on individual entries are
// collected in the report instead.
//
// The scan can be cancelled via ctx, in which case ctx's error is returned.
// Progress updates are sent to progressHook if provided.
func Run(ctx context.Context, opt Options, logger *slog.Logger, progressHook func(int64, int64)) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	// validate path exists and is accessible
	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	absRoot, err := filepath.Abs(opt.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	if opt.Algorithm == "" {
		opt.Algorithm = DefaultAlgorithm
	}

	algo, err := LookupAlgorithm(opt.Algorithm)
	if err != nil {
		return nil, err
	}

	minSize := opt.MinSize
	if minSize < 0 {
		return nil, fmt.Errorf("minimum size cannot be negative: %d", minSize)
	}

	scheduler := NewScheduler(NewEngine(algo), opt.Jobs, logger)

	var walker Walker
	if opt.Parallel {
		walker = NewParallelWalker(scheduler, minSize, 0, logger)
	} else {
		walker = NewStackWalker(scheduler, minSize, logger)
	}

	stopProgress := startProgressReporter(ctx, scheduler.Counters(), progressHook, opt.ProgressInterval)
	defer stopProgress()

	logger.Debug("starting scan",
		"root", absRoot,
		"algorithm", algo.Name,
		"min_size", minSize,
		"parallel_walk", opt.Parallel,
	)

	start := time.Now()

	jobs := walker.Walk(ctx, absRoot)

	logger.Debug("walk finished", "jobs", len(jobs.Jobs()), "walk_errors", len(jobs.Errors()))

	result := Aggregate(jobs)

	stopProgress()

	if err := jobs.Interrupted(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Result:    result,
		Root:      absRoot,
		Algorithm: algo.Name,
		MinSize:   minSize,
		Elapsed:   time.Since(start),
	}

	logger.Debug("scan finished",
		"files", result.FileCount,
		"groups", len(result.Groups),
		"errors", len(result.Errors),
		"failed_jobs", scheduler.Counters().Failed.Load(),
		"wasted", result.Wasted,
		"elapsed", report.Elapsed,
	)

	return report, nil
}
