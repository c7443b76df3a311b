package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"filedex/internal/index"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Build the index for a directory tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.BaseDirectory
		if len(args) == 1 {
			root = args[0]
		}

		stats, err := buildIndex(cmd.Context(), root)
		if stats != nil {
			printReport(cmd, stats)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func buildIndex(ctx context.Context, dir string) (*index.Stats, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	idx := index.New(index.Config{
		Root:       root,
		IndexPath:  cfg.IndexPath,
		Workers:    cfg.Workers,
		Codec:      cfg.StoreCodec(),
		IgnoreFile: cfg.IgnoreFile,
		Logger:     log,
	})
	return idx.Build(ctx)
}

// printSummary is the short form shown before the UI takes over.
func printSummary(cmd *cobra.Command, stats *index.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d files into %s in %s\n",
		stats.FilesIndexed, stats.IndexPath, stats.Duration.Round(time.Millisecond))
	if stats.FilesSkipped > 0 {
		fmt.Fprintf(out, "  %d skipped (see log)\n", stats.FilesSkipped)
	}
}

func printReport(cmd *cobra.Command, stats *index.Stats) {
	md := index.Report(stats)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if rendered, err := r.Render(md); err == nil {
			md = rendered
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), md)
}
