package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"filedex/internal/config"
	"filedex/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagBaseDir string
	flagIndex   string
	flagWorkers int
	flagCodec   string
	flagLevel   string
)

var (
	v   = config.New()
	cfg *config.Config
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:          "filedex",
	Short:        "Index a directory tree's file metadata and search it",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(v, flagConfig)
		if err != nil {
			return err
		}
		cfg = c
		log = logging.New(cfg.LogLevel, os.Stderr)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := buildIndex(cmd.Context(), cfg.BaseDirectory)
		if err != nil {
			return err
		}
		printSummary(cmd, stats)
		return runTUI()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default ./filedex.yaml or ~/.config/filedex/filedex.yaml)")
	pf.StringVar(&flagBaseDir, "base-dir", config.DefaultBaseDirectory, "directory to index (env BASE_DIRECTORY)")
	pf.StringVar(&flagIndex, "index", config.DefaultIndexPath, "index artifact path")
	pf.IntVar(&flagWorkers, "workers", 0, "parallel crawl workers (default number of CPUs)")
	pf.StringVar(&flagCodec, "codec", config.DefaultCodec, "artifact compression: zstd, gzip or none")
	pf.StringVar(&flagLevel, "log-level", config.DefaultLogLevel, "log level")

	_ = v.BindPFlag("base_directory", pf.Lookup("base-dir"))
	_ = v.BindPFlag("index_path", pf.Lookup("index"))
	_ = v.BindPFlag("workers", pf.Lookup("workers"))
	_ = v.BindPFlag("codec", pf.Lookup("codec"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
}
