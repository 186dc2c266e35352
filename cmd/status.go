package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/predictor"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running service for model health",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "service address (default derived from the configured API listen address)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	base := statusAddr
	if base == "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		base = cfg.API.Addr
	}
	if strings.HasPrefix(base, ":") {
		base = "localhost" + base
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	cli := &http.Client{Timeout: 5 * time.Second}
	resp, err := cli.Get(base + "/api/v1/status")
	if err != nil {
		return fmt.Errorf("query status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query status: %s", resp.Status)
	}
	var st predictor.ServiceStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	fmt.Printf("ready:   %v\n", st.Ready)
	fmt.Printf("health:  %s\n", st.Health)
	fmt.Printf("history: %d\n", st.HistoryDepth)
	if !st.LastTraining.IsZero() {
		fmt.Printf("trained: %s\n", st.LastTraining.Format(time.RFC3339))
	}
	fmt.Println("models:")
	names := make([]string, 0, len(st.Models))
	for name := range st.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ms := st.Models[name]
		if ms.Error != "" {
			fmt.Printf("  %-24s %-8s (%s)\n", name, ms.State, ms.Error)
			continue
		}
		fmt.Printf("  %-24s %s\n", name, ms.State)
	}
	return nil
}
