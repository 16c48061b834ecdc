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
	planInput  string
	planOutput string
	planFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a schedule for a planning snapshot",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planInput, "input", "i", "snapshot.yaml", "planning snapshot file")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "schedule output file (default stdout)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	snap, cfg, err := loadInput(planInput)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("plan").Errorf("service close: %v", err)
		}
	}()

	in := snap.ToInput(cfg.Planner.RuleSet())
	outcome, err := svc.Plan(in)
	if err != nil {
		return err
	}

	log := logger.New("plan")
	log.Infof("run %s: %d deliveries, %d recharges, %.1f tons, %d unscheduled in %s",
		outcome.Result.RunID, outcome.Summary.Deliveries, outcome.Summary.Recharges,
		outcome.Summary.DeliveredTons, outcome.Summary.Unscheduled, outcome.Elapsed)
	for _, ship := range outcome.Result.Unscheduled {
		log.Warnf("request for %s could not be scheduled", ship)
	}

	out := cmd.OutOrStdout()
	if planOutput != "" {
		f, err := os.Create(planOutput)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	switch planFormat {
	case "json":
		return export.WriteJSON(out, outcome.Events)
	case "csv":
		return export.WriteCSV(out, outcome.Events)
	default:
		return fmt.Errorf("unknown format %s", planFormat)
	}
}
