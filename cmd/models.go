package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/infra/logger"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model artifact management",
}

var modelsExportCmd = &cobra.Command{
	Use:   "export DIR",
	Short: "Copy model artifacts into a backup directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsExport,
}

var modelsImportCmd = &cobra.Command{
	Use:   "import DIR",
	Short: "Restore model artifacts from a previous export",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsImport,
}

func init() {
	modelsCmd.AddCommand(modelsExportCmd)
	modelsCmd.AddCommand(modelsImportCmd)
	rootCmd.AddCommand(modelsCmd)
}

func newOfflineService() (*predictor.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logg := logger.NewWithConfig(cfg.Logging, "models-command")
	svc, err := predictor.NewService(cfg.Predictor, logg, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("prediction service: %w", err)
	}
	return svc, nil
}

func runModelsExport(cmd *cobra.Command, args []string) error {
	svc, err := newOfflineService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	if err := svc.ExportArtifacts(args[0]); err != nil {
		return err
	}
	fmt.Println("exported to", args[0])
	return nil
}

func runModelsImport(cmd *cobra.Command, args []string) error {
	svc, err := newOfflineService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	if err := svc.ImportArtifacts(args[0]); err != nil {
		return err
	}
	fmt.Println("imported from", args[0])
	return nil
}

func closeService(svc *predictor.Service) {
	if err := svc.Close(); err != nil {
		logger.New("models-command").Errorf("service close: %v", err)
	}
}
