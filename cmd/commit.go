package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbsthiago-dev/progbunker-application/app"
	"github.com/cbsthiago-dev/progbunker-application/infra/logger"
	"github.com/cbsthiago-dev/progbunker-application/pkg/export"
)

var (
	commitInput    string
	commitSchedule string
	commitRunID    string
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Apply a finalized schedule to the fleet state",
	Long: "Apply a finalized schedule: decrement delivered volumes, refill " +
		"recharged tanks, move barges, append the delivery history and " +
		"notify the crews. A schedule must be committed at most once.",
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitInput, "input", "i", "snapshot.yaml", "planning snapshot the schedule was computed from")
	commitCmd.Flags().StringVarP(&commitSchedule, "schedule", "s", "schedule.json", "finalized schedule file")
	commitCmd.Flags().StringVar(&commitRunID, "run-id", "", "planning run identifier")
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	snap, cfg, err := loadInput(commitInput)
	if err != nil {
		return err
	}
	f, err := os.Open(commitSchedule)
	if err != nil {
		return err
	}
	events, err := export.ReadJSON(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("read schedule: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("commit").Errorf("service close: %v", err)
		}
	}()

	in := snap.ToInput(cfg.Planner.RuleSet())
	if err := in.Validate(); err != nil {
		return err
	}
	return svc.Commit(cmd.Context(), commitRunID, in, events)
}
