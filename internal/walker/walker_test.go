package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"filedex/internal/metadata"
	"filedex/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTree writes each relative path under root with its own name as content.
func createTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
}

var testFiles = []string{
	"top.txt",
	"readme.md",
	"a/one.txt",
	"a/two.png",
	"a/deep/three.pdf",
	"a/deep/deeper/four",
	"b/five.json",
	"c/d/e/six.csv",
}

func names(records []store.FileRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func sortedNames(records []store.FileRecord) []string {
	out := names(records)
	sort.Strings(out)
	return out
}

func TestCrawlFindsEveryFile(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, testFiles)

	for _, workers := range []int{0, 1, 2, 8} {
		res, err := Crawl(context.Background(), root, Options{Workers: workers})
		require.NoError(t, err)
		assert.Empty(t, res.Skipped)
		assert.Equal(t,
			[]string{"five.json", "four", "one.txt", "readme.md", "six.csv", "three.pdf", "top.txt", "two.png"},
			sortedNames(res.Records), "workers=%d", workers)
	}
}

func TestCrawlRecordsMetadata(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{"sub/file1.txt", "sub/file2.txt"})

	res, err := Crawl(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.Equal(t, uint64(len("sub/"+r.Name)), r.SizeBytes)
		require.NotNil(t, r.ContentType)
		assert.Equal(t, "text/plain", *r.ContentType)
	}
}

func TestCrawlOrderIsStableAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, testFiles)

	seq, err := Crawl(context.Background(), root, Options{Workers: 1})
	require.NoError(t, err)
	par, err := Crawl(context.Background(), root, Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, names(seq.Records), names(par.Records))
	// Root files come first, then subtrees in name order.
	assert.Equal(t, []string{"readme.md", "top.txt"}, names(seq.Records)[:2])
}

func TestCrawlSkipsFilesRemovedBeforeStat(t *testing.T) {
	doomed := map[string]bool{"one.txt": true, "six.csv": true, "top.txt": true}
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers-%d", workers), func(t *testing.T) {
			dir := t.TempDir()
			createTree(t, dir, testFiles)

			extract := func(path string) (store.FileRecord, error) {
				if doomed[filepath.Base(path)] {
					os.Remove(path)
				}
				return metadata.Extract(path)
			}

			res, err := Crawl(context.Background(), dir, Options{Workers: workers, Extract: extract})
			require.NoError(t, err)
			assert.Len(t, res.Records, len(testFiles)-len(doomed))
			require.Len(t, res.Skipped, len(doomed))
			for _, s := range res.Skipped {
				assert.True(t, doomed[filepath.Base(s.Path)], s.Path)
				assert.ErrorIs(t, s.Err, metadata.ErrNotFound)
			}
			for _, r := range res.Records {
				assert.False(t, doomed[r.Name], r.Name)
			}
		})
	}
}

func TestCrawlRootUnreadable(t *testing.T) {
	_, err := Crawl(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	require.ErrorIs(t, err, ErrRootUnreadable)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Crawl(context.Background(), file, Options{})
	require.ErrorIs(t, err, ErrRootUnreadable)
}

func TestCrawlEmptyRoot(t *testing.T) {
	res, err := Crawl(context.Background(), t.TempDir(), Options{Workers: 4})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Skipped)
}

func TestCrawlIgnoresSymlinks(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{"real.txt", "dir/inner.txt"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "dirlink")))

	res, err := Crawl(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"inner.txt", "real.txt"}, sortedNames(res.Records))
}

func TestCrawlHonoursIgnoreFile(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, append([]string{
		"node_modules/pkg/index.js",
		"a/build/out.bin",
		"scratch.tmp",
		"a/keep.tmp.txt",
	}, testFiles...))
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultIgnoreFile),
		[]byte("# generated\nnode_modules/\nbuild/\n*.tmp\n"), 0o644))

	res, err := Crawl(context.Background(), root, Options{Workers: 3, IgnoreFile: DefaultIgnoreFile})
	require.NoError(t, err)
	got := sortedNames(res.Records)
	assert.NotContains(t, got, "index.js")
	assert.NotContains(t, got, "out.bin")
	assert.NotContains(t, got, "scratch.tmp")
	assert.Contains(t, got, "keep.tmp.txt")
	assert.Contains(t, got, DefaultIgnoreFile)
	assert.Empty(t, res.Skipped)

	// Without the option the file is just another file.
	res, err = Crawl(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Contains(t, sortedNames(res.Records), "index.js")
}

func TestCrawlCancellationReturnsPartialResult(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, testFiles)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := 0
	extract := func(path string) (store.FileRecord, error) {
		seen++
		if seen == 3 {
			cancel()
		}
		return metadata.Extract(path)
	}

	res, err := Crawl(ctx, root, Options{Workers: 1, Extract: extract})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Len(t, res.Records, 3)
}

func TestCrawlProgress(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, testFiles)

	var mu sync.Mutex
	maxSeen := 0
	res, err := Crawl(context.Background(), root, Options{
		Workers: 4,
		OnProgress: func(found int) {
			mu.Lock()
			defer mu.Unlock()
			maxSeen = max(maxSeen, found)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, len(res.Records), maxSeen)
}

func TestCrawlIgnoreFileNotRequired(t *testing.T) {
	root := t.TempDir()
	createTree(t, root, []string{"x.txt"})

	res, err := Crawl(context.Background(), root, Options{IgnoreFile: DefaultIgnoreFile})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.txt"}, names(res.Records))
	_, statErr := os.Stat(filepath.Join(root, DefaultIgnoreFile))
	assert.True(t, os.IsNotExist(statErr), "crawl must not create files in the root")
}
