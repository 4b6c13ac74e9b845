package dupes

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// FileRecord is the outcome of one successful hashing job.
type FileRecord struct {
	// Path is the canonical (absolute, symlink-resolved) path.
	Path string `json:"path"`
	// Digest is the content hash.
	Digest Digest `json:"digest"`
	// Size is the number of bytes hashed.
	Size int64 `json:"size"`
}

// Job is a pending hashing job. Its result is available once Wait returns.
type Job struct {
	// Path is the path as discovered by the walker.
	Path string

	done   chan struct{}
	record FileRecord
	err    error
	seq    int64
}

// Wait blocks until the job has resolved and returns its outcome.
func (j *Job) Wait() (FileRecord, error) {
	<-j.done

	return j.record, j.err
}

// Counters are live totals updated by hashing jobs.
type Counters struct {
	// Files is the number of files hashed successfully.
	Files atomic.Int64
	// Bytes is the number of bytes hashed successfully.
	Bytes atomic.Int64
	// Failed is the number of jobs that ended with an error.
	Failed atomic.Int64
}

// DefaultJobs returns the default cap on in-flight hashing jobs.
func DefaultJobs() int {
	return runtime.NumCPU() * 2
}

// Scheduler runs hashing jobs on a bounded pool.
// Submit blocks while the pool is saturated.
type Scheduler struct {
	engine       *Engine
	group        errgroup.Group
	completed    atomic.Int64
	counters     Counters
	log          *slog.Logger
	canonicalize func(string) (string, error)
}

// NewScheduler creates a Scheduler that allows at most limit jobs in flight.
// A non-positive limit selects DefaultJobs.
func NewScheduler(engine *Engine, limit int, logger *slog.Logger) *Scheduler {
	if limit <= 0 {
		limit = DefaultJobs()
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Scheduler{
		engine:       engine,
		log:          logger.With("component", "scheduler"),
		canonicalize: canonicalize,
	}
	s.group.SetLimit(limit)

	return s
}

// Counters exposes the live totals for progress reporting.
func (s *Scheduler) Counters() *Counters {
	return &s.counters
}

// Submit admits one hashing job for path. Safe for concurrent use.
func (s *Scheduler) Submit(ctx context.Context, path string) *Job {
	job := &Job{Path: path, done: make(chan struct{})}

	s.group.Go(func() error {
		defer close(job.done)

		job.record, job.err = s.run(ctx, path)
		job.seq = s.completed.Add(1)

		if job.err != nil {
			s.counters.Failed.Add(1)
			s.log.Debug("hashing failed", "path", path, "error", job.err)
		} else {
			s.counters.Files.Add(1)
			s.counters.Bytes.Add(job.record.Size)
		}

		// Failures stay on the job so sibling jobs are never cancelled.
		return nil
	})

	return job
}

func (s *Scheduler) run(ctx context.Context, path string) (FileRecord, error) {
	canonical, err := s.canonicalize(path)
	if err != nil {
		return FileRecord{}, newScanError(KindCanonicalize, path, err)
	}

	digest, size, err := s.engine.Hash(ctx, canonical)
	if err != nil {
		return FileRecord{}, err
	}

	return FileRecord{Path: canonical, Digest: digest, Size: size}, nil
}

// canonicalize returns the absolute, symlink-resolved form of path.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}
