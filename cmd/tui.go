package cmd

import (
	"fmt"

	"filedex/internal/logging"
	"filedex/internal/query"
	"filedex/internal/tui"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search an existing index interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// runTUI loads the index before taking over the terminal so a missing or
// corrupt artifact fails the command instead of the UI.
func runTUI() error {
	session, err := query.Load(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("load index %s: %w\nRun 'filedex index' first to build it", cfg.IndexPath, err)
	}

	fileLog, closer, err := logging.OpenFile(cfg.LogLevel, cfg.LogPath())
	if err == nil {
		defer closer.Close()
		log = fileLog
	}

	log.Info().Str("index", cfg.IndexPath).Int("rows", session.Len()).Msg("browse started")
	err = tui.Run(tui.Config{IndexPath: cfg.IndexPath, Session: session})
	log.Info().Err(err).Msg("browse finished")
	return err
}
