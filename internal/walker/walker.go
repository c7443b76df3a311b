package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"filedex/internal/metadata"
	"filedex/internal/store"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// ErrRootUnreadable is returned when the crawl root cannot be listed.
var ErrRootUnreadable = errors.New("crawl root unreadable")

// DefaultIgnoreFile is the gitignore-style file honoured in the crawl root.
const DefaultIgnoreFile = ".filedexignore"

// ExtractFunc produces the record for one discovered file.
type ExtractFunc func(path string) (store.FileRecord, error)

// Options configures a crawl.
type Options struct {
	// Workers is the number of subtrees crawled in parallel. Values below 2
	// crawl on the calling goroutine.
	Workers int
	// IgnoreFile is read from the root when present. Empty disables it.
	IgnoreFile string
	// Extract defaults to metadata.Extract.
	Extract ExtractFunc
	Logger  zerolog.Logger
	// OnProgress receives the running count of indexed files. It may be
	// called from several goroutines at once.
	OnProgress func(found int)
}

// Skip is a file that was discovered but left out of the index.
type Skip struct {
	Path string
	Err  error
}

// Result holds the records of a crawl in partition order, plus the skips.
type Result struct {
	Records []store.FileRecord
	Skipped []Skip
}

// partition is one unit of work: either the regular files directly in the
// root, or one top-level subdirectory walked recursively.
type partition struct {
	dir   string
	files []string
}

type collector struct {
	records []store.FileRecord
	skipped []Skip
}

type crawler struct {
	root    string
	opts    Options
	ignores *ignore.GitIgnore
	found   atomic.Int64
}

// Crawl indexes every regular file under root. Files that fail extraction
// are recorded in Result.Skipped and never abort the crawl. When ctx is
// cancelled the records gathered so far are returned with ctx.Err().
func Crawl(ctx context.Context, root string, opts Options) (*Result, error) {
	if opts.Extract == nil {
		opts.Extract = metadata.Extract
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootUnreadable, root, err)
	}

	c := &crawler{
		root:    root,
		opts:    opts,
		ignores: loadIgnorePatterns(root, opts.IgnoreFile, opts.Logger),
	}

	parts := []partition{{}}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		switch {
		case e.IsDir():
			if c.ignored(path, true) {
				continue
			}
			parts = append(parts, partition{dir: path})
		case e.Type().IsRegular():
			if c.ignored(path, false) {
				continue
			}
			parts[0].files = append(parts[0].files, path)
		}
	}

	opts.Logger.Debug().
		Str("root", root).
		Int("partitions", len(parts)).
		Int("workers", opts.Workers).
		Msg("crawl started")

	results := make([]collector, len(parts))
	if opts.Workers < 2 || len(parts) < 2 {
		for i := range parts {
			if err := c.run(ctx, parts[i], &results[i]); err != nil {
				break
			}
		}
	} else {
		p := pool.New().WithMaxGoroutines(opts.Workers).WithContext(ctx)
		for i := range parts {
			p.Go(func(ctx context.Context) error {
				return c.run(ctx, parts[i], &results[i])
			})
		}
		_ = p.Wait()
	}

	res := &Result{}
	for _, col := range results {
		res.Records = append(res.Records, col.records...)
		res.Skipped = append(res.Skipped, col.skipped...)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (c *crawler) run(ctx context.Context, p partition, col *collector) error {
	for _, f := range p.files {
		if err := c.visit(ctx, f, col); err != nil {
			return err
		}
	}
	if p.dir == "" {
		return nil
	}

	return filepath.WalkDir(p.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectory: note it and keep walking the rest.
			c.skip(col, path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != p.dir && c.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || c.ignored(path, false) {
			return nil
		}
		return c.visit(ctx, path, col)
	})
}

func (c *crawler) visit(ctx context.Context, path string, col *collector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := c.opts.Extract(path)
	if err != nil {
		c.skip(col, path, err)
		return nil
	}
	col.records = append(col.records, rec)
	n := c.found.Add(1)
	if c.opts.OnProgress != nil {
		c.opts.OnProgress(int(n))
	}
	return nil
}

func (c *crawler) skip(col *collector, path string, err error) {
	c.opts.Logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable path")
	col.skipped = append(col.skipped, Skip{Path: path, Err: err})
}

func (c *crawler) ignored(path string, isDir bool) bool {
	if c.ignores == nil {
		return false
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return c.ignores.MatchesPath(rel)
}

// loadIgnorePatterns compiles <root>/<name> if it exists.
func loadIgnorePatterns(root, name string, log zerolog.Logger) *ignore.GitIgnore {
	if name == "" {
		return nil
	}
	path := filepath.Join(root, name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("ignoring unreadable ignore file")
		return nil
	}
	return gi
}
