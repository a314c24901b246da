package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// boundsRenderModel is the JSON shape of a resolved bounds result.
type boundsRenderModel struct {
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label"`
	Changed   bool   `json:"changed"`
}

// PrintBounds outputs the resolved bounds, dispatching based on the output format configured.
func PrintBounds(bounds core.Bounds, cfg *contract.Config) error {
	model := boundsRenderModel{
		StartYear: bounds.StartYear,
		EndYear:   bounds.EndYear,
		StartDate: bounds.StartDate.String(),
		EndDate:   bounds.EndDate.String(),
		Label:     bounds.YearString(),
		Changed:   bounds.Changed,
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON bounds")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"start_year", "end_year", "start_date", "end_date", "label", "changed"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{
					strconv.Itoa(model.StartYear),
					strconv.Itoa(model.EndYear),
					model.StartDate,
					model.EndDate,
					model.Label,
					strconv.FormatBool(model.Changed),
				})
			})
		}, "Wrote CSV bounds")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printBoundsText(w, model, cfg)
		}, "Wrote text bounds")
	}
}

// printBoundsText displays bounds in human-readable text format.
func printBoundsText(w io.Writer, model boundsRenderModel, cfg *contract.Config) error {
	yellow := fmt.Sprint
	if cfg.UseColors {
		yellow = color.New(color.FgYellow).SprintFunc()
	}

	if _, err := fmt.Fprintf(w, "Analysis period: %s to %s (%s)\n",
		model.StartDate, model.EndDate, model.Label); err != nil {
		return err
	}
	if model.Changed {
		if _, err := fmt.Fprintf(w, "%s\n",
			yellow("Note: the requested period was clipped to the available complete years")); err != nil {
			return err
		}
	}
	return nil
}
