package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toozej/go-ehparse/internal/services/parser"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the page kinds accepted by parse",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range parser.Kinds {
			fmt.Fprintln(cmd.OutOrStdout(), kind)
		}
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
