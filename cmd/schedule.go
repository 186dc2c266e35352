package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/core/scheduler"
	"github.com/shipmind-ai/shipmind/pkg/export"
)

var (
	scheduleFormat string
	scheduleOutput string
	scheduleFrom   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule FILE",
	Short: "Turn a maintenance outlook file into a dated work plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleFormat, "format", "json", "output format: json or csv")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "", "output file (default stdout)")
	scheduleCmd.Flags().StringVar(&scheduleFrom, "from", "", "plan start date, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(scheduleCmd)
}

// scheduleInput is the outlook file layout. Port calls are optional windows
// during which a vessel is alongside.
type scheduleInput struct {
	Outlooks  []model.MaintenanceOutlook `json:"outlooks"`
	PortCalls map[string][]struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"port_calls,omitempty"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read outlooks: %w", err)
	}
	var in scheduleInput
	if err := json.Unmarshal(raw, &in); err != nil {
		// A bare outlook array is accepted too.
		if aerr := json.Unmarshal(raw, &in.Outlooks); aerr != nil {
			return fmt.Errorf("parse outlooks: %w", err)
		}
	}
	if len(in.Outlooks) == 0 {
		return fmt.Errorf("no outlooks in %s", args[0])
	}

	from := time.Now().UTC()
	if scheduleFrom != "" {
		from, err = time.Parse("2006-01-02", scheduleFrom)
		if err != nil {
			return fmt.Errorf("parse from date: %w", err)
		}
	}

	sched := scheduler.Scheduler{Config: cfg.Schedule, Outlooks: in.Outlooks}
	if len(in.PortCalls) > 0 {
		sched.PortCalls = make(map[string][]scheduler.PortCallWindow, len(in.PortCalls))
		for vessel, calls := range in.PortCalls {
			windows := make([]scheduler.PortCallWindow, len(calls))
			for i, c := range calls {
				windows[i] = scheduler.PortCallWindow{Start: c.Start, End: c.End}
			}
			sched.PortCalls[vessel] = windows
		}
	}
	orders, err := sched.GeneratePlan(from)
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}

	var out io.Writer = os.Stdout
	if scheduleOutput != "" {
		f, err := os.Create(scheduleOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	switch scheduleFormat {
	case "json":
		return export.WriteJSON(out, orders)
	case "csv":
		return export.WriteCSV(out, orders)
	default:
		return fmt.Errorf("unknown format %q", scheduleFormat)
	}
}
