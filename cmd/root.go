package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shipmind-ai/shipmind/app"
	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/infra/logger"
)

// version is stamped by the build.
var version = "dev"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "shipmind",
	Short: "Prediction service for vessel fleets",
	Long: "shipmind serves route, fuel and maintenance predictions for a vessel\n" +
		"fleet and keeps its models trained in the background.",
	Version:      version,
	SilenceUsage: true,
	RunE:         runService,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the selected subcommand, the service loop by default.
func Execute() error { return rootCmd.Execute() }

func runService(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("assemble service: %w", err)
	}
	runErr := svc.Run(ctx)
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("close service: %v", err)
	}
	return runErr
}
