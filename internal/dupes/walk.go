package dupes

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultMinSize is the smallest file size, in bytes, that is hashed.
const DefaultMinSize int64 = 1024

// readDir lists a directory for StackWalker. Replaced in tests.
var readDir = os.ReadDir //nolint:gochecknoglobals // test seam

// Walker discovers eligible files under a root and submits a hashing job for each.
type Walker interface {
	// Walk returns once every directory under root has been listed.
	// It does not wait for the submitted jobs.
	Walk(ctx context.Context, root string) *JobSet
}

// JobSet is the outcome of a walk: the submitted jobs plus errors hit while
// listing. It is read-only once Walk returns.
type JobSet struct {
	mu   sync.Mutex
	jobs []*Job
	errs []*ScanError

	// interrupted is set when the walk stopped early because ctx was done.
	interrupted error
}

func newJobSet() *JobSet {
	return &JobSet{}
}

func (s *JobSet) add(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
}

func (s *JobSet) addError(err *ScanError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errs = append(s.errs, err)
}

// Jobs returns the submitted jobs.
func (s *JobSet) Jobs() []*Job {
	return s.jobs
}

// Errors returns the errors recorded while walking.
func (s *JobSet) Errors() []*ScanError {
	return s.errs
}

// Interrupted returns the context error that stopped the walk, if any.
func (s *JobSet) Interrupted() error {
	return s.interrupted
}

// wait blocks until every job in the set has resolved.
func (s *JobSet) wait() {
	for _, job := range s.jobs {
		<-job.done
	}
}

// admission holds what both walker implementations share: the size filter
// and the hand-off to the scheduler.
type admission struct {
	scheduler *Scheduler
	minSize   int64
	log       *slog.Logger
}

func newAdmission(scheduler *Scheduler, minSize int64, logger *slog.Logger, component string) admission {
	if minSize < 0 {
		minSize = 0
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return admission{
		scheduler: scheduler,
		minSize:   minSize,
		log:       logger.With("component", component),
	}
}

// visit handles one directory entry. It reports whether the entry is a
// directory the caller should descend into.
//
// Symlinks to regular files are followed; symlinks to directories are not.
//
//nolint:varnamelen // d is standard for DirEntry
func (a admission) visit(ctx context.Context, set *JobSet, path string, d fs.DirEntry) bool {
	typ := d.Type()

	switch {
	case typ.IsDir():
		return true
	case typ&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			set.addError(newScanError(KindMetadata, path, err))

			return false
		}

		if info.IsDir() {
			a.log.Debug("not following directory symlink", "path", path)

			return false
		}

		if info.Mode().IsRegular() {
			a.admit(ctx, set, path, info.Size())
		}
	case typ.IsRegular():
		info, err := d.Info()
		if err != nil {
			set.addError(newScanError(KindMetadata, path, err))

			return false
		}

		a.admit(ctx, set, path, info.Size())
	default:
		a.log.Debug("skipping special file", "path", path, "mode", typ.String())
	}

	return false
}

func (a admission) admit(ctx context.Context, set *JobSet, path string, size int64) {
	if size < a.minSize {
		return
	}

	set.add(a.scheduler.Submit(ctx, path))
}

// StackWalker traverses depth-first on a single goroutine using an explicit
// stack of pending directories.
type StackWalker struct {
	admission
}

// NewStackWalker creates a StackWalker that submits files of at least minSize
// bytes to scheduler.
func NewStackWalker(scheduler *Scheduler, minSize int64, logger *slog.Logger) *StackWalker {
	return &StackWalker{admission: newAdmission(scheduler, minSize, logger, "walker")}
}

// Walk implements Walker. A root that is not a directory yields an empty set.
func (w *StackWalker) Walk(ctx context.Context, root string) *JobSet {
	set := newJobSet()

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return set
	}

	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			set.interrupted = err

			break
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// os.ReadDir returns the entries it managed to read alongside the error.
		entries, err := readDir(dir)
		if err != nil {
			w.log.Debug("listing directory failed", "path", dir, "error", err)
			set.addError(newScanError(KindDirectoryRead, dir, err))
		}

		var subdirs []string

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if w.visit(ctx, set, path, entry) {
				subdirs = append(subdirs, path)
			}
		}

		// Reverse so the first listed subdirectory is popped next.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return set
}
