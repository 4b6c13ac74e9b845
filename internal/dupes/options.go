package dupes

import (
	"time"
)

// Options configures a scan and CLI behavior.
type Options struct {
	// Path is the directory to scan.
	Path string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// Algorithm is the digest algorithm name.
	Algorithm string
	// Jobs caps the number of hashing jobs in flight (0=default).
	Jobs int
	// Parallel selects the fastwalk-based traversal.
	Parallel bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (text or json).
	Output string
	// ShowErrors lists every per-entry error instead of only the count.
	ShowErrors bool
	// LogFormat is the diagnostic log format (console or json).
	LogFormat string
}

// Report is the result of a scan plus run metadata.
type Report struct {
	*Result

	// Root is the absolute path of the scanned directory.
	Root string `json:"root"`
	// Algorithm is the digest algorithm used.
	Algorithm string `json:"algorithm"`
	// MinSize is the eligibility threshold in bytes.
	MinSize int64 `json:"min_size"`
	// Elapsed is the total time taken.
	Elapsed time.Duration `json:"elapsed"`
}
