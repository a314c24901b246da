package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// climatologyRenderModel summarizes one computed climatology.
type climatologyRenderModel struct {
	MonthSet  string                `json:"month_set"`
	StartYear int                   `json:"start_year"`
	EndYear   int                   `json:"end_year"`
	Reused    bool                  `json:"reused"`
	Variables []climatologyVariable `json:"variables"`
}

// climatologyVariable is the per-field summary row. Mean, Min and Max
// skip masked cells and are null when every cell is masked.
type climatologyVariable struct {
	Name  string   `json:"name"`
	Dims  string   `json:"dims"`
	Cells int      `json:"cells"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// buildClimatologyRenderModel reduces each field to summary statistics.
func buildClimatologyRenderModel(ds *schema.Dataset, monthSet schema.MonthSet, bounds core.Bounds, reused bool) climatologyRenderModel {
	model := climatologyRenderModel{
		MonthSet:  monthSet.Identity(),
		StartYear: bounds.StartYear,
		EndYear:   bounds.EndYear,
		Reused:    reused,
	}

	for _, name := range ds.VarNames() {
		f := ds.Fields[name]
		model.Variables = append(model.Variables, summarizeField(name, f))
	}
	return model
}

// summarizeField computes NaN-aware statistics over a field's values.
func summarizeField(name string, f *schema.Field) climatologyVariable {
	v := climatologyVariable{
		Name:  name,
		Dims:  strings.Join(f.Dims, ","),
		Cells: len(f.Values),
	}

	sum, count := 0.0, 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range f.Values {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		count++
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if count > 0 {
		v.Mean = optional(sum / float64(count))
		v.Min = optional(lo)
		v.Max = optional(hi)
	}
	return v
}

// PrintClimatologyResults outputs the climatology summary, dispatching based on the output format configured.
func PrintClimatologyResults(result *schema.Dataset, monthSet schema.MonthSet, bounds core.Bounds, reused bool, cfg *contract.Config, duration time.Duration) error {
	model := buildClimatologyRenderModel(result, monthSet, bounds, reused)
	_, fmtOpt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForClimatology(model, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForClimatology(model, cfg, fmtOpt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printClimatologyTable(model, cfg, fmtOpt, duration); err != nil {
			return fmt.Errorf("error writing climatology table output: %w", err)
		}
	}
	return nil
}

// printJSONResultsForClimatology handles opening the file and calling the JSON writer.
func printJSONResultsForClimatology(model climatologyRenderModel, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, model)
	}, "Wrote JSON climatology")
}

// printCSVResultsForClimatology handles opening the file and calling the CSV writer.
func printCSVResultsForClimatology(model climatologyRenderModel, cfg *contract.Config, fmtOpt func(*float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{"variable", "dims", "cells", "mean", "min", "max", "month_set", "start_year", "end_year"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, v := range model.Variables {
				row := []string{
					v.Name,
					v.Dims,
					strconv.Itoa(v.Cells),
					fmtOpt(v.Mean),
					fmtOpt(v.Min),
					fmtOpt(v.Max),
					model.MonthSet,
					strconv.Itoa(model.StartYear),
					strconv.Itoa(model.EndYear),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV climatology")
}

// printClimatologyTable prints the per-variable summary table.
func printClimatologyTable(model climatologyRenderModel, cfg *contract.Config, fmtOpt func(*float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	headers := []string{"Variable", "Dims", "Cells", "Mean", "Min", "Max"}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, v := range model.Variables {
		row := []string{
			contract.TruncatePath(v.Name, nameWidth),
			v.Dims,
			strconv.Itoa(v.Cells),
			fmtOpt(v.Mean),
			fmtOpt(v.Min),
			fmtOpt(v.Max),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	source := "computed from model output"
	if model.Reused {
		source = "served from cache"
	}
	fmt.Printf("Climatology %s over %d-%d completed in %v (%s)\n",
		model.MonthSet, model.StartYear, model.EndYear, duration, source)
	return nil
}
