package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/fpvcompat/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fpvcompat %s\n", version.String())
	},
}
