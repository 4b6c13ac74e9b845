package dupes

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a per-entry failure recorded during a scan.
type ErrorKind string

const (
	// KindDirectoryRead indicates listing a directory failed.
	KindDirectoryRead ErrorKind = "directory_read"

	// KindMetadata indicates a size or stat lookup failed.
	KindMetadata ErrorKind = "metadata"

	// KindOpen indicates a file could not be opened for hashing.
	KindOpen ErrorKind = "open"

	// KindRead indicates reading a file failed mid-stream.
	KindRead ErrorKind = "read"

	// KindCanonicalize indicates resolving the absolute path failed.
	KindCanonicalize ErrorKind = "canonicalize"
)

// Sentinels for matching a ScanError's kind with errors.Is.
var (
	ErrDirectoryRead = errors.New("directory read failed")
	ErrMetadata      = errors.New("metadata lookup failed")
	ErrOpen          = errors.New("open failed")
	ErrRead          = errors.New("read failed")
	ErrCanonicalize  = errors.New("canonicalize failed")
)

//nolint:gochecknoglobals // Lookup table
var sentinels = map[ErrorKind]error{
	KindDirectoryRead: ErrDirectoryRead,
	KindMetadata:      ErrMetadata,
	KindOpen:          ErrOpen,
	KindRead:          ErrRead,
	KindCanonicalize:  ErrCanonicalize,
}

// ScanError is a recoverable failure tied to one path.
// The scan skips the path and keeps going.
type ScanError struct {
	// Kind is the failure classification.
	Kind ErrorKind
	// Path is the path the failure is attributed to.
	Path string
	// Err is the underlying error.
	Err error
}

func newScanError(kind ErrorKind, path string, err error) *ScanError {
	return &ScanError{Kind: kind, Path: path, Err: err}
}

// Error implements error.
func (e *ScanError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ScanError) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]

	return ok && target == sentinel
}

// Message returns the underlying error text.
func (e *ScanError) Message() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// MarshalJSON includes the underlying error text.
func (e *ScanError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    ErrorKind `json:"kind"`
		Path    string    `json:"path"`
		Message string    `json:"message"`
	}{
		Kind:    e.Kind,
		Path:    e.Path,
		Message: e.Message(),
	})
}
