package cmd

import (
	"fmt"
	"text/tabwriter"

	"filedex/internal/export"
	"filedex/internal/store"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the index artifact header",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := store.Inspect(cfg.IndexPath)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Path:\t%s\n", cfg.IndexPath)
		fmt.Fprintf(w, "Format:\tv%d\n", h.Version)
		fmt.Fprintf(w, "Codec:\t%s\n", h.Codec)
		fmt.Fprintf(w, "Rows:\t%d\n", h.Rows)
		fmt.Fprintf(w, "Payload:\t%d bytes (crc32 %08x)\n", h.PayloadSize, h.Checksum)
		fmt.Fprintf(w, "Schema:\t%s\n", h.Schema)
		return w.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <out.db>",
	Short: "Copy the index into an SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := store.Read(cfg.IndexPath)
		if err != nil {
			return err
		}
		if err := export.ToSQLite(cmd.Context(), records, args[0]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		log.Info().Str("db", args[0]).Int("rows", len(records)).Msg("exported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(exportCmd)
}
