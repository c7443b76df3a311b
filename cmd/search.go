package cmd

import (
	"fmt"

	"filedex/internal/query"

	"github.com/spf13/cobra"
)

var flagColumns string

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Print the rows matching a query",
	Long: `Print the rows whose name, formatted size or content type contains
the query, ignoring case. Output is one tab separated row per line in
index order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := query.ParseColumns(flagColumns)
		if err != nil {
			return err
		}

		session, err := query.Load(cfg.IndexPath)
		if err != nil {
			return fmt.Errorf("load index %s: %w", cfg.IndexPath, err)
		}

		var q string
		if len(args) == 1 {
			q = args[0]
		}

		out := cmd.OutOrStdout()
		for _, r := range session.Search(q, cols) {
			fmt.Fprintf(out, "%s\t%s\t%s\n", r.Name, r.Size, r.ContentType)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&flagColumns, "columns", "name,size,type", "columns to match: name, size, type")
	rootCmd.AddCommand(searchCmd)
}
