package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bridgewiz/trunkgauge/data"
	"github.com/bridgewiz/trunkgauge/vision/diameter"
	"github.com/bridgewiz/trunkgauge/vision/edges"
	"github.com/bridgewiz/trunkgauge/vision/girth"
)

func formatColumn(e edges.EdgeEstimate) string {
	if e.Column == nil {
		return "-"
	}
	if !e.Valid {
		return fmt.Sprintf("%d (no depth)", *e.Column)
	}
	return fmt.Sprint(*e.Column)
}

func formatDiameter(e diameter.Estimate) string {
	if !e.Valid {
		return color.RedString("invalid")
	}
	return color.GreenString(data.FormatDecimal(e.DiameterCM))
}

// measurementTable renders one row per strategy.
func measurementTable(frame int, m *diameter.Measurement) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Frame", "Distance (m)", "Strategy", "Left", "Right", "Diameter (cm)"})
	for _, e := range m.Estimates {
		t.AppendRow(table.Row{
			frame,
			data.FormatDecimal(m.CenterDistanceMeters),
			fmt.Sprintf("%s %s", e.Strategy.Letter(), e.Strategy),
			formatColumn(e.Left),
			formatColumn(e.Right),
			formatDiameter(e),
		})
	}
	return t.Render()
}

func profileTable(s girth.ProfileStats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Valid", "Min", "P10", "Median", "P90", "Max", "Mean", "Std dev"})
	t.AppendRow(table.Row{
		s.Valid,
		data.FormatDecimal(s.Min),
		data.FormatDecimal(s.P10),
		data.FormatDecimal(s.Median),
		data.FormatDecimal(s.P90),
		data.FormatDecimal(s.Max),
		data.FormatDecimal(s.Mean),
		data.FormatDecimal(s.StdDev),
	})
	return t.Render()
}

func printTable(w io.Writer, rendered string) {
	fmt.Fprintln(w, rendered)
}
