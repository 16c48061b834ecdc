package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a planning snapshot without scheduling",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "snapshot.yaml", "planning snapshot file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	snap, cfg, err := loadInput(validateInput)
	if err != nil {
		return err
	}
	in := snap.ToInput(cfg.Planner.RuleSet())
	if err := in.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d locations, %d barges, %d requests, ok\n",
		validateInput, len(in.Locations), len(in.Fleet), len(in.Requests))
	return nil
}
