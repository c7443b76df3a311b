package index

import (
	"context"
	"runtime"

	"filedex/internal/store"

	"github.com/rs/zerolog"
)

// ProgressFunc receives the current phase and the number of files handled.
type ProgressFunc func(phase string, processed int)

// Config holds the indexer configuration.
type Config struct {
	Root       string
	IndexPath  string
	Workers    int
	Codec      store.Codec
	IgnoreFile string
	Logger     zerolog.Logger
	OnProgress ProgressFunc
}

// Indexer builds the on-disk index for one directory tree.
type Indexer struct {
	config Config
}

// New creates a new Indexer with the given configuration.
func New(cfg Config) *Indexer {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Indexer{config: cfg}
}

// Build crawls the root and replaces the artifact at the index path. Stats
// are returned whenever the crawl got under way, including on cancellation.
func (idx *Indexer) Build(ctx context.Context) (*Stats, error) {
	return runPipeline(ctx, idx.config)
}
