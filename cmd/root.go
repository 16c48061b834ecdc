package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cbsthiago-dev/progbunker-application/app"
	"github.com/cbsthiago-dev/progbunker-application/config"
	"github.com/cbsthiago-dev/progbunker-application/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "progbunker",
	Short: "Barge bunkering dispatch service",
	RunE:  run,
}

func init() {
	cobra.OnInitialize(func() {
		// A missing .env file is fine; the environment wins anyway.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}

func loadInput(path string) (*config.Snapshot, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	snap, err := config.LoadSnapshot(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, cfg, nil
}
