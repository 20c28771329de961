package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/fpvcompat/internal/domain/compat"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the compatibility rules",
	Long:  "Lists every pair key in evaluation order with its roles, mode (join or cross) and comparison columns.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writeRules(cmd.OutOrStdout(), compat.Rules(), useColor())
		return nil
	},
}
