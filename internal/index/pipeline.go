package index

import (
	"context"
	"fmt"
	"time"

	"filedex/internal/store"
	"filedex/internal/walker"
)

const (
	PhaseCrawl = "Crawling files..."
	PhaseWrite = "Writing index..."
)

// Stats reports indexing results.
type Stats struct {
	Root         string
	IndexPath    string
	FilesTotal   int
	FilesIndexed int
	FilesSkipped int
	Skipped      []walker.Skip
	Duration      time.Duration
}

func runPipeline(ctx context.Context, cfg Config) (*Stats, error) {
	start := time.Now()
	log := cfg.Logger
	progress := func(phase string, n int) {
		if cfg.OnProgress != nil {
			cfg.OnProgress(phase, n)
		}
	}

	log.Info().Str("root", cfg.Root).Int("workers", cfg.Workers).Msg("indexing")

	// Stage 1: crawl
	res, err := walker.Crawl(ctx, cfg.Root, walker.Options{
		Workers:    cfg.Workers,
		IgnoreFile: cfg.IgnoreFile,
		Logger:     log,
		OnProgress: func(found int) { progress(PhaseCrawl, found) },
	})
	if res == nil {
		return nil, err
	}

	stats := &Stats{
		Root:         cfg.Root,
		IndexPath:    cfg.IndexPath,
		FilesIndexed: len(res.Records),
		FilesSkipped: len(res.Skipped),
		Skipped:      res.Skipped,
	}
	stats.FilesTotal = stats.FilesIndexed + stats.FilesSkipped
	if err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("crawl interrupted after %d files: %w", stats.FilesIndexed, err)
	}

	// Stage 2: write
	progress(PhaseWrite, stats.FilesIndexed)
	if err := store.Write(cfg.IndexPath, res.Records, store.WriteOptions{Codec: cfg.Codec}); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	stats.Duration = time.Since(start)
	log.Info().
		Str("index", cfg.IndexPath).
		Int("indexed", stats.FilesIndexed).
		Int("skipped", stats.FilesSkipped).
		Dur("elapsed", stats.Duration).
		Msg("index written")
	return stats, nil
}
