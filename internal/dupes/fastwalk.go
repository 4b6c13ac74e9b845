package dupes

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/charlievieth/fastwalk"
)

// ParallelWalker lists directories on several goroutines using fastwalk.
// Discovery order is unspecified; the resulting job set matches StackWalker's.
type ParallelWalker struct {
	admission
	workers int
}

// NewParallelWalker creates a ParallelWalker. A non-positive workers value
// lets fastwalk pick its default.
func NewParallelWalker(scheduler *Scheduler, minSize int64, workers int, logger *slog.Logger) *ParallelWalker {
	return &ParallelWalker{
		admission: newAdmission(scheduler, minSize, logger, "parallel-walker"),
		workers:   workers,
	}
}

// Walk implements Walker. A root that is not a directory yields an empty set.
func (w *ParallelWalker) Walk(ctx context.Context, root string) *JobSet {
	set := newJobSet()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return set
	}

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Debug("error accessing path", "path", path, "error", err)

			if d == nil || d.IsDir() {
				set.addError(newScanError(KindDirectoryRead, path, err))
			} else {
				set.addError(newScanError(KindMetadata, path, err))
			}

			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		w.visit(ctx, set, path, d)

		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			set.interrupted = walkErr
		} else {
			set.addError(newScanError(KindDirectoryRead, root, walkErr))
		}
	}

	return set
}
