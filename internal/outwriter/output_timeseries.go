package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// seriesRenderModel is the output shape of a computed time series.
// Only scalar series (fields with just the time dimension) become
// columns; time-invariant scalars such as region areas land in
// Auxiliary.
type seriesRenderModel struct {
	Calendar  schema.Calendar      `json:"calendar"`
	Variables []string             `json:"variables"`
	Rows      []seriesRow          `json:"rows"`
	Auxiliary map[string]*float64  `json:"auxiliary,omitempty"`
	Stats     core.TimeSeriesStats `json:"stats"`
}

// seriesRow is one time point; Values aligns with Variables and holds
// null for missing data.
type seriesRow struct {
	Date   string     `json:"date"`
	Values []*float64 `json:"values"`
}

// buildSeriesRenderModel flattens a dataset into table-ready rows.
func buildSeriesRenderModel(ds *schema.Dataset, stats core.TimeSeriesStats) seriesRenderModel {
	model := seriesRenderModel{
		Calendar:  ds.Calendar,
		Auxiliary: make(map[string]*float64),
		Stats:     stats,
	}

	for _, name := range ds.VarNames() {
		f := ds.Fields[name]
		switch {
		case f.HasTimeDim() && f.TimeStride() == 1:
			model.Variables = append(model.Variables, name)
		case !f.HasTimeDim() && len(f.Values) == 1:
			model.Auxiliary[name] = optional(f.Values[0])
		}
	}
	if len(model.Auxiliary) == 0 {
		model.Auxiliary = nil
	}

	for i, t := range ds.Times {
		row := seriesRow{Date: ds.Calendar.DaysToDate(t).String()}
		for _, name := range model.Variables {
			row.Values = append(row.Values, optional(ds.Fields[name].Values[i]))
		}
		model.Rows = append(model.Rows, row)
	}
	return model
}

// PrintTimeSeriesResults outputs the time series, dispatching based on the output format configured.
func PrintTimeSeriesResults(result *schema.Dataset, stats core.TimeSeriesStats, cfg *contract.Config, duration time.Duration) error {
	model := buildSeriesRenderModel(result, stats)
	_, fmtOpt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForSeries(model, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForSeries(model, cfg, fmtOpt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printSeriesTable(model, cfg, fmtOpt, duration); err != nil {
			return fmt.Errorf("error writing time series table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForSeries handles opening the file and calling the JSON writer.
func printJSONResultsForSeries(model seriesRenderModel, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, model)
	}, "Wrote JSON time series")
}

// printCSVResultsForSeries handles opening the file and calling the CSV writer.
func printCSVResultsForSeries(model seriesRenderModel, cfg *contract.Config, fmtOpt func(*float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := append([]string{"date"}, model.Variables...)
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			return writeCSVRowsForSeries(cw, model, fmtOpt)
		})
	}, "Wrote CSV time series")
}

// writeCSVRowsForSeries writes the series rows to a CSV writer.
func writeCSVRowsForSeries(w *csv.Writer, model seriesRenderModel, fmtOpt func(*float64) string) error {
	for _, r := range model.Rows {
		row := make([]string, 0, len(r.Values)+1)
		row = append(row, r.Date)
		for _, v := range r.Values {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, fmtOpt(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// printSeriesTable prints the series in a date-plus-variables table.
func printSeriesTable(model seriesRenderModel, cfg *contract.Config, fmtOpt func(*float64) string, duration time.Duration) error {
	// Use os.Stdout, consistent with existing table printing
	table := tablewriter.NewWriter(os.Stdout)

	// --- 1. Define Headers ---
	headers := []string{"Date"}
	nameWidth := getMaxTableNameWidth(cfg)
	for _, name := range model.Variables {
		headers = append(headers, contract.TruncatePath(name, nameWidth))
	}
	table.Header(headers)

	// 2. Configure Alignment
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	var data [][]string
	for _, r := range model.Rows {
		row := []string{r.Date}
		for _, v := range r.Values {
			row = append(row, fmtOpt(v))
		}
		data = append(data, row)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, name := range sortedKeys(model.Auxiliary) {
		fmt.Printf("%s: %s\n", name, fmtOpt(model.Auxiliary[name]))
	}
	fmt.Printf("Time series completed in %v: %d of %d chunks served from cache\n",
		duration, model.Stats.ChunksReused, model.Stats.ChunksTotal)
	return nil
}

// sortedKeys returns the map keys in sorted order for stable output.
func sortedKeys(m map[string]*float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
