package dupes

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

func content(fill byte, size int) []byte {
	return bytes.Repeat([]byte{fill}, size)
}

// canonicalRoot resolves symlinks in t.TempDir (e.g. /var -> /private/var on macOS).
func canonicalRoot(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return root
}

func groupPaths(result *Result) [][]string {
	out := make([][]string, 0, len(result.Groups))
	for _, group := range result.Groups {
		out = append(out, group.Paths)
	}

	return out
}

// stubReadDir replaces the directory lister used by StackWalker for the
// duration of the test.
func stubReadDir(t *testing.T, fn func(string) ([]fs.DirEntry, error)) {
	t.Helper()

	original := readDir
	readDir = fn

	t.Cleanup(func() { readDir = original })
}
