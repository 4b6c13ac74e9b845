package dupes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkers(t *testing.T, minSize int64) map[string]func() Walker {
	t.Helper()

	return map[string]func() Walker{
		"stack": func() Walker {
			return NewStackWalker(newTestScheduler(t, 4), minSize, nil)
		},
		"parallel": func() Walker {
			return NewParallelWalker(newTestScheduler(t, 4), minSize, 2, nil)
		},
	}
}

func jobPaths(set *JobSet) []string {
	paths := make([]string, 0, len(set.Jobs()))
	for _, job := range set.Jobs() {
		paths = append(paths, job.Path)
	}

	slices.Sort(paths)

	return paths
}

func TestWalkFiltersBySize(t *testing.T) {
	root := canonicalRoot(t)
	writeFile(t, filepath.Join(root, "big.bin"), content('a', 1024))
	writeFile(t, filepath.Join(root, "small.bin"), content('a', 1023))
	writeFile(t, filepath.Join(root, "sub", "big.bin"), content('b', 4096))
	writeFile(t, filepath.Join(root, "sub", "tiny.txt"), content('c', 10))

	for name, newWalker := range walkers(t, DefaultMinSize) {
		t.Run(name, func(t *testing.T) {
			set := newWalker().Walk(context.Background(), root)
			Aggregate(set)

			assert.Equal(t, []string{
				filepath.Join(root, "big.bin"),
				filepath.Join(root, "sub", "big.bin"),
			}, jobPaths(set))
			assert.Empty(t, set.Errors())
		})
	}
}

func TestWalkNonDirectoryRootIsEmpty(t *testing.T) {
	root := canonicalRoot(t)
	file := writeFile(t, filepath.Join(root, "a.bin"), content('a', 2048))

	for name, newWalker := range walkers(t, DefaultMinSize) {
		t.Run(name, func(t *testing.T) {
			for _, target := range []string{file, filepath.Join(root, "missing")} {
				set := newWalker().Walk(context.Background(), target)
				assert.Empty(t, set.Jobs())
				assert.Empty(t, set.Errors())
			}
		})
	}
}

func TestStackWalkerHandlesDeepTrees(t *testing.T) {
	root := canonicalRoot(t)

	// Keep the path under PATH_MAX while still nesting deeply.
	depth := 200
	dir := root
	for range depth {
		dir = filepath.Join(dir, "d")
	}

	deep := writeFile(t, filepath.Join(dir, "deep.bin"), content('z', 2048))

	set := NewStackWalker(newTestScheduler(t, 2), DefaultMinSize, nil).Walk(context.Background(), root)
	Aggregate(set)

	assert.Equal(t, []string{deep}, jobPaths(set))
	assert.Equal(t, depth, strings.Count(strings.TrimPrefix(deep, root), string(filepath.Separator))-1)
}

func TestWalkRecordsDanglingSymlinkAndContinues(t *testing.T) {
	root := canonicalRoot(t)
	writeFile(t, filepath.Join(root, "a.bin"), content('a', 2048))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "dangling")))

	for name, newWalker := range walkers(t, DefaultMinSize) {
		t.Run(name, func(t *testing.T) {
			set := newWalker().Walk(context.Background(), root)
			Aggregate(set)

			assert.Equal(t, []string{filepath.Join(root, "a.bin")}, jobPaths(set))
			require.Len(t, set.Errors(), 1)
			assert.Equal(t, KindMetadata, set.Errors()[0].Kind)
			assert.True(t, errors.Is(set.Errors()[0], ErrMetadata))
		})
	}
}

func TestWalkDoesNotFollowDirectorySymlinks(t *testing.T) {
	root := canonicalRoot(t)
	writeFile(t, filepath.Join(root, "real", "a.bin"), content('a', 2048))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))
	// A self-referencing link would loop forever if followed.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "real", "loop")))

	for name, newWalker := range walkers(t, DefaultMinSize) {
		t.Run(name, func(t *testing.T) {
			set := newWalker().Walk(context.Background(), root)
			Aggregate(set)

			assert.Equal(t, []string{filepath.Join(root, "real", "a.bin")}, jobPaths(set))
		})
	}
}

func TestWalkAdmitsFileSymlinks(t *testing.T) {
	root := canonicalRoot(t)
	target := writeFile(t, filepath.Join(root, "a.bin"), content('a', 2048))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link.bin")))

	set := NewStackWalker(newTestScheduler(t, 2), DefaultMinSize, nil).Walk(context.Background(), root)
	result := Aggregate(set)

	assert.Len(t, set.Jobs(), 2)
	// Both references canonicalize to the same object.
	assert.Equal(t, 1, result.FileCount)
	assert.Empty(t, result.Groups)
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := canonicalRoot(t)
	writeFile(t, filepath.Join(root, "ok", "a.bin"), content('a', 2048))
	writeFile(t, filepath.Join(root, "ok", "b.bin"), content('a', 2048))
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "hidden.bin"), content('a', 2048))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	for name, newWalker := range walkers(t, DefaultMinSize) {
		t.Run(name, func(t *testing.T) {
			set := newWalker().Walk(context.Background(), root)
			result := Aggregate(set)

			require.Len(t, result.Groups, 1)
			assert.ElementsMatch(t, []string{
				filepath.Join(root, "ok", "a.bin"),
				filepath.Join(root, "ok", "b.bin"),
			}, result.Groups[0].Paths)
			assert.Equal(t, 2, result.FileCount)

			require.Len(t, result.Errors, 1)
			assert.Equal(t, KindDirectoryRead, result.Errors[0].Kind)
			assert.Equal(t, locked, result.Errors[0].Path)
		})
	}
}

func TestStackWalkerStopsOnCancel(t *testing.T) {
	root := canonicalRoot(t)
	writeFile(t, filepath.Join(root, "a.bin"), content('a', 2048))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set := NewStackWalker(newTestScheduler(t, 2), DefaultMinSize, nil).Walk(ctx, root)

	assert.ErrorIs(t, set.Interrupted(), context.Canceled)
	assert.Empty(t, set.Jobs())
}
