package dupes

import (
	"context"
	"crypto/md5"  //nolint:gosec // Content fingerprint, not a security boundary
	"crypto/sha1" //nolint:gosec // Content fingerprint, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/zeebo/blake3"
)

// ChunkSize is the number of bytes read per call while hashing.
const ChunkSize = 1024

// DefaultAlgorithm is the digest algorithm used when none is requested.
const DefaultAlgorithm = "md5"

// Digest is a lowercase hexadecimal content hash.
type Digest string

// Algorithm describes a digest algorithm.
type Algorithm struct {
	// Name is the lowercase algorithm name.
	Name string
	// Size is the raw digest length in bytes.
	Size int
	// New returns a fresh accumulator.
	New func() hash.Hash
}

//nolint:gochecknoglobals // Algorithm table
var algorithms = map[string]Algorithm{
	"md5":    {Name: "md5", Size: md5.Size, New: md5.New},
	"sha1":   {Name: "sha1", Size: sha1.Size, New: sha1.New},
	"sha256": {Name: "sha256", Size: sha256.Size, New: sha256.New},
	"blake3": {Name: "blake3", Size: 32, New: func() hash.Hash { return blake3.New() }},
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LookupAlgorithm returns the algorithm registered under name.
func LookupAlgorithm(name string) (Algorithm, error) {
	algo, ok := algorithms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Algorithm{}, fmt.Errorf("unsupported hash algorithm %q: must be one of %v", name, Algorithms())
	}

	return algo, nil
}

// Engine computes file digests by streaming fixed-size chunks.
type Engine struct {
	algo      Algorithm
	chunkSize int
}

// NewEngine creates an Engine for the given algorithm.
func NewEngine(algo Algorithm) *Engine {
	return &Engine{algo: algo, chunkSize: ChunkSize}
}

// Hash digests the whole content of the file at path.
// Open failures are reported as KindOpen and read failures as KindRead.
// The context is checked between chunks.
func (e *Engine) Hash(ctx context.Context, path string) (Digest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, newScanError(KindOpen, path, err)
	}
	defer file.Close()

	hasher := e.algo.New()
	buf := make([]byte, e.chunkSize)

	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return "", total, err
		}

		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			total += int64(n)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", total, newScanError(KindRead, path, err)
		}
	}

	return Digest(hex.EncodeToString(hasher.Sum(nil))), total, nil
}
