package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"filedex/internal/store"
	"filedex/internal/walker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestIndexWritesArtifact(t *testing.T) {
	root := writeTree(t, map[string]string{
		"readme.txt":      "hello",
		"docs/guide.md":   "# guide",
		"img/logo.png":    "png",
		"src/main.go":     "package main",
		"src/deep/x.json": "{}",
	})
	out := filepath.Join(t.TempDir(), "idx", "files.fdx")

	var mu sync.Mutex
	phases := map[string]bool{}
	stats, err := New(Config{
		Root:      root,
		IndexPath: out,
		Workers:   4,
		Codec:     store.CodecZstd,
		OnProgress: func(phase string, _ int) {
			mu.Lock()
			phases[phase] = true
			mu.Unlock()
		},
	}).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.FilesIndexed)
	assert.Equal(t, 5, stats.FilesTotal)
	assert.Zero(t, stats.FilesSkipped)
	assert.Equal(t, out, stats.IndexPath)
	assert.True(t, phases[PhaseCrawl])
	assert.True(t, phases[PhaseWrite])

	records, err := store.Read(out)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "readme.txt", records[0].Name)

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"readme.txt", "guide.md", "logo.png", "main.go", "x.json"}, names)
}

func TestIndexEmptyRootWritesEmptyArtifact(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "files.fdx")

	stats, err := New(Config{Root: root, IndexPath: out}).Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.FilesIndexed)

	records, err := store.Read(out)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIndexRootUnreadable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "files.fdx")

	stats, err := New(Config{Root: filepath.Join(t.TempDir(), "missing"), IndexPath: out}).
		Build(context.Background())
	require.ErrorIs(t, err, walker.ErrRootUnreadable)
	assert.Nil(t, stats)
	assert.NoFileExists(t, out)
}

func TestIndexCancelledDoesNotWrite(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	out := filepath.Join(t.TempDir(), "files.fdx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(Config{Root: root, IndexPath: out, Workers: 1}).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, stats)
	assert.NoFileExists(t, out)
}

func TestIndexWriteFailure(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	stats, err := New(Config{Root: root, IndexPath: filepath.Join(blocker, "files.fdx")}).
		Build(context.Background())
	require.ErrorIs(t, err, store.ErrWriteFailed)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestIndexReplacesPreviousArtifact(t *testing.T) {
	out := filepath.Join(t.TempDir(), "files.fdx")

	first := writeTree(t, map[string]string{"one.txt": "1", "two.txt": "2"})
	_, err := New(Config{Root: first, IndexPath: out}).Build(context.Background())
	require.NoError(t, err)

	second := writeTree(t, map[string]string{"three.txt": "3"})
	_, err = New(Config{Root: second, IndexPath: out}).Build(context.Background())
	require.NoError(t, err)

	records, err := store.Read(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "three.txt", records[0].Name)
}

func TestReport(t *testing.T) {
	stats := &Stats{
		Root:         "/data",
		IndexPath:    "/data/files.fdx",
		FilesTotal:   3,
		FilesIndexed: 2,
		FilesSkipped: 1,
		Skipped:      []walker.Skip{{Path: "/data/gone.txt", Err: os.ErrNotExist}},
	}

	md := Report(stats)
	assert.Contains(t, md, "# Index built")
	assert.Contains(t, md, "| Files indexed | 2 |")
	assert.Contains(t, md, "| Files skipped | 1 |")
	assert.Contains(t, md, "## Skipped")
	assert.Contains(t, md, "`/data/gone.txt`")
}

func TestReportTruncatesSkips(t *testing.T) {
	stats := &Stats{}
	for range maxReportedSkips + 5 {
		stats.Skipped = append(stats.Skipped, walker.Skip{Path: "x", Err: os.ErrPermission})
	}
	assert.Contains(t, Report(stats), "and 5 more")
}
