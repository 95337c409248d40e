package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// languagesCmd represents the languages command.
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the available reference languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		det, err := buildDetector(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		for _, label := range det.Languages() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), label); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
