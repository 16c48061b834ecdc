package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
	"github.com/cbsthiago-dev/progbunker-application/infra/logger"
)

var (
	historyShip  string
	historyBarge string
	historyFrom  string
	historyTo    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the delivery history",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyShip, "ship", "", "filter by ship name")
	historyCmd.Flags().StringVar(&historyBarge, "barge", "", "filter by barge id")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "completed at or after (RFC3339)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "completed at or before (RFC3339)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := schedule.HistoryQuery{Ship: historyShip, BargeID: historyBarge}
	var err error
	if historyFrom != "" {
		if q.From, err = time.Parse(time.RFC3339, historyFrom); err != nil {
			return fmt.Errorf("parse --from: %w", err)
		}
	}
	if historyTo != "" {
		if q.To, err = time.Parse(time.RFC3339, historyTo); err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("history").Errorf("service close: %v", err)
		}
	}()

	records, err := svc.History(cmd.Context(), q)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %-10s %-8s %8.1f t  %s\n",
			r.CompletedAt.Format(time.RFC3339), r.Ship, r.BargeID, r.Product, r.Quantity, r.ID)
	}
	return nil
}
