package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// statusRenderModel bundles the cache and provenance summaries so the
// JSON output is one document.
type statusRenderModel struct {
	Cache      schema.CacheStatus       `json:"cache"`
	Provenance *schema.ProvenanceStatus `json:"provenance,omitempty"`
}

// PrintCacheStatus outputs cache and provenance status, dispatching based on the output format configured.
func PrintCacheStatus(cache schema.CacheStatus, prov *schema.ProvenanceStatus, cfg *contract.Config) error {
	model := statusRenderModel{Cache: cache, Provenance: prov}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON status")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"metric", "value"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return writeCSVRowsForStatus(cw, model)
			})
		}, "Wrote CSV status")
	default:
		return printStatusTable(model, cfg)
	}
}

// statusRows flattens the model into metric/value pairs shared by the
// CSV and table renderers.
func statusRows(model statusRenderModel) [][]string {
	c := model.Cache
	rows := [][]string{
		{"cache_directory", c.Directory},
		{"climatologies", strconv.Itoa(c.Climatologies)},
		{"timeseries", strconv.Itoa(c.TimeSeries)},
		{"mapping_files", strconv.Itoa(c.MappingFiles)},
		{"total_size", formatBytes(c.TotalSizeBytes)},
	}
	if !c.OldestArtifact.IsZero() {
		rows = append(rows,
			[]string{"oldest_artifact", c.OldestArtifact.Format(time.RFC3339)},
			[]string{"newest_artifact", c.NewestArtifact.Format(time.RFC3339)},
		)
	}

	if p := model.Provenance; p != nil {
		rows = append(rows,
			[]string{"provenance_backend", p.Backend},
			[]string{"provenance_connected", strconv.FormatBool(p.Connected)},
			[]string{"total_runs", strconv.FormatInt(p.TotalRuns, 10)},
		)
		if p.TotalRuns > 0 {
			rows = append(rows,
				[]string{"last_run_id", strconv.FormatInt(p.LastRunID, 10)},
				[]string{"last_run", p.LastRun.Format(time.RFC3339)},
				[]string{"oldest_run", p.OldestRun.Format(time.RFC3339)},
			)
		}
	}
	return rows
}

// writeCSVRowsForStatus writes the status pairs to a CSV writer.
func writeCSVRowsForStatus(w *csv.Writer, model statusRenderModel) error {
	for _, row := range statusRows(model) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// printStatusTable prints the status pairs in a two-column table.
func printStatusTable(model statusRenderModel, cfg *contract.Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Metric", "Value"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	green, red := fmt.Sprint, fmt.Sprint
	if cfg.UseColors {
		green = color.New(color.FgGreen).SprintFunc()
		red = color.New(color.FgRed).SprintFunc()
	}

	var data [][]string
	for _, row := range statusRows(model) {
		// Highlight connectivity so a broken backend stands out
		if row[0] == "provenance_connected" {
			if row[1] == "true" {
				row[1] = green("connected")
			} else {
				row[1] = red("disconnected")
			}
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
