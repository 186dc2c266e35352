package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shipmind-ai/shipmind/config"
	coreperf "github.com/shipmind-ai/shipmind/core/perf"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/infra/logger"
	"github.com/shipmind-ai/shipmind/infra/perf"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run one offline training cycle over all models",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.NewWithConfig(cfg.Logging, "train-command")

	var perfStore coreperf.Store
	if cfg.Predictor.MetricsPath != "" {
		ps, err := perf.NewSQLiteStore(cfg.Predictor.MetricsPath)
		if err != nil {
			return fmt.Errorf("performance store: %w", err)
		}
		perfStore = ps
	}
	svc, err := predictor.NewService(cfg.Predictor, logg, nil, perfStore, nil, nil)
	if err != nil {
		return fmt.Errorf("prediction service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()
	if err := svc.Initialize(); err != nil {
		return fmt.Errorf("initialize models: %w", err)
	}
	if err := svc.TrainAll(ctx); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	scores := svc.Evaluate()
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-24s %.3f\n", name, scores[name])
	}
	return nil
}
