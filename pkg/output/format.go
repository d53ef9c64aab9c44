// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/pkg/format"
)

// SweepHeader is the header row of CsvFormat.
var SweepHeader = []string{"scenario", "rate", "finalTotal", "finalExempt", "finalTaxable", "principal", "profit"}

// YearHeader is the header row of YearCsvFormat.
var YearHeader = []string{
	"year",
	"principalCum",
	"principalYear",
	"withdrawYear",
	"nisaValue",
	"taxableValue",
	"totalValue",
	"nisaPrincipalCum",
	"nisaRoomLeft",
}

// PrettyFormat writes a human-readable table per scenario.
func PrettyFormat(w io.Writer, results []forecast.CalcResult) {
	for i, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		fmt.Fprintf(w, "Principal: %s (NISA %s)\n", format.Yen(result.Summary.PrincipalTotal), format.Yen(result.Summary.ExemptPrincipal))
		fmt.Fprintf(w, "%-7s | %16s | %16s | %16s | %16s\n", "Rate", "Total", "NISA", "Taxable", "Profit")
		fmt.Fprintf(w, "%s\n", strings.Repeat("_", 7+4*19))
		for _, row := range result.Rows {
			fmt.Fprintf(w, "%-7s | %16s | %16s | %16s | %16s\n",
				format.Percent(row.Rate),
				format.Yen(row.FinalTotal),
				format.Yen(row.FinalExempt),
				format.Yen(row.FinalTaxable),
				format.Yen(row.Profit),
			)
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// DetailPrettyFormat writes the KPIs and year rows of one rate.
func DetailPrettyFormat(w io.Writer, name string, detail forecast.RateDetail) {
	fmt.Fprintf(w, "--- Detail for scenario %s at %s ---\n", name, format.Percent(detail.Rate))
	fmt.Fprintf(w, "Cap reached: %s\n", yearOrNone(detail.KPI.CapReachedYear))
	fmt.Fprintf(w, "Peak: year %d, %s\n", detail.KPI.MaxYear, format.Yen(detail.KPI.MaxValue))
	fmt.Fprintf(w, "Depleted: %s\n", yearOrNone(detail.KPI.DepletionYear))
	fmt.Fprintf(w, "%-4s | %-7s | %16s | %16s | %16s | %16s | %16s\n", "Year", "Month", "Principal", "Withdrawn", "NISA", "Taxable", "Total")
	fmt.Fprintf(w, "%s\n", strings.Repeat("_", 4+10+5*19))
	for _, year := range detail.Years {
		fmt.Fprintf(w, "%-4d | %-7s | %16s | %16s | %16s | %16s | %16s\n",
			year.Year,
			year.EndYm,
			format.Yen(year.PrincipalCum),
			format.Yen(year.WithdrawYear),
			format.Yen(year.ExemptValue),
			format.Yen(year.TaxableValue),
			format.Yen(year.TotalValue),
		)
	}
}

func yearOrNone(year *int) string {
	if year == nil {
		return "never"
	}
	return fmt.Sprintf("year %d", *year)
}

// CsvFormat writes one row per scenario and rate.
func CsvFormat(w io.Writer, results []forecast.CalcResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SweepHeader); err != nil {
		return err
	}
	for _, result := range results {
		for _, row := range result.Rows {
			record := []string{
				result.Name,
				strconv.Itoa(row.RatePercent),
				strconv.FormatInt(row.FinalTotal, 10),
				strconv.FormatInt(row.FinalExempt, 10),
				strconv.FormatInt(row.FinalTaxable, 10),
				strconv.FormatInt(row.Principal, 10),
				strconv.FormatInt(row.Profit, 10),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// YearCsvFormat writes the year rows of one rate in the export layout.
func YearCsvFormat(w io.Writer, detail forecast.RateDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(YearHeader); err != nil {
		return err
	}
	for _, year := range detail.Years {
		record := []string{
			strconv.Itoa(year.Year),
			strconv.FormatInt(year.PrincipalCum, 10),
			strconv.FormatInt(year.PrincipalYear, 10),
			strconv.FormatInt(year.WithdrawYear, 10),
			strconv.FormatInt(year.ExemptValue, 10),
			strconv.FormatInt(year.TaxableValue, 10),
			strconv.FormatInt(year.TotalValue, 10),
			strconv.FormatInt(year.ExemptPrincipalCum, 10),
			strconv.FormatInt(year.CapRemaining, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// YearCsvFilename is the attachment name used for a year-row export.
func YearCsvFilename(detail forecast.RateDetail) string {
	return fmt.Sprintf("nisa-%dpercent.csv", detail.RatePercent)
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
