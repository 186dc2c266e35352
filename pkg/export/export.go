package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/shipmind-ai/shipmind/core/scheduler"
)

// WriteJSON writes the work plan to w as an indented JSON array.
func WriteJSON(w io.Writer, orders []scheduler.WorkOrder) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(orders)
}

// WriteCSV writes the work plan to w with one row per work order.
func WriteCSV(w io.Writer, orders []scheduler.WorkOrder) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "vessel_id", "component_id", "maintenance_type", "risk_score", "estimated_cost_usd", "estimated_downtime_h", "overdue"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			o.Date.Format("2006-01-02"),
			o.VesselID,
			o.ComponentID,
			o.Type.String(),
			strconv.FormatFloat(o.RiskScore, 'f', 2, 64),
			strconv.FormatFloat(o.CostUSD, 'f', 2, 64),
			strconv.FormatFloat(o.DowntimeH, 'f', 1, 64),
			strconv.FormatBool(o.Overdue),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
