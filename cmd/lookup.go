package cmd

import (
	"fmt"

	"filedex/internal/query"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Print the names containing a query; prints nothing on any failure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range query.LookupNames(cfg.IndexPath, args[0], log) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
