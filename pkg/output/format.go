// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/format"
)

// Disclosure is printed under every human-readable report.
const Disclosure = "Educational illustration only; not investment, tax, or legal advice. " +
	"Rates and terms subject to change; not guaranteed until a contract is issued. " +
	"Annuities may include surrender charges, fees, and rider costs. State availability varies. " +
	"Dividends, caps, and participation rates can change. Consult a licensed professional."

// Narrative summarizes the displayed totals of a projection in one sentence.
func Narrative(result engine.Result) string {
	delta := result.Display().Totals.Delta
	if delta < 0 {
		return fmt.Sprintf("Rate cuts of %d bps are projected to reduce your annual income by %s. Consider locking guaranteed rates.",
			result.Shock.Bps, format.WholeCurrency(math.Abs(delta)))
	}
	return fmt.Sprintf("Your annual income increases by %s under this scenario. Explore guaranteed options to stabilize outcomes.",
		format.WholeCurrency(delta))
}

// Basis labels which figures a result displays.
func Basis(result engine.Result) string {
	if result.Real != nil {
		return "real (inflation-adj.)"
	}
	return "nominal"
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []engine.Result) error {
	money := format.NumericCurrency

	for i, result := range results {
		view := result.Display()
		fmt.Fprintf(w, "--- Results for scenario %s (%s, %s) ---\n", result.Scenario, format.Bps(result.Shock.Bps), Basis(result))
		if result.Real != nil {
			fmt.Fprintf(w, "Assumed inflation: %s\n", format.Percent(result.CPI))
		}
		fmt.Fprintf(w, "%-10s | %-13s | %-13s | %-13s | %s\n", "Instrument", "Before", "After", "Change", "Notes")
		fmt.Fprintf(w, "%-10s | %-13s | %-13s | %-13s | %s\n", "__________", "_____________", "_____________", "_____________", "_____")
		for _, line := range view.Lines {
			fmt.Fprintf(w, "%-10s | %-13s | %-13s | %-13s | %s\n",
				line.Label, money(line.Before), money(line.After), money(line.Delta), notes(line))
		}
		t := view.Totals
		fmt.Fprintf(w, "%-10s | %-13s | %-13s | %-13s | %s\n",
			"Total", money(t.Before), money(t.After), money(t.Delta), format.PercentChange(t.PercentChange))
		fmt.Fprintf(w, "\n%s\n", Narrative(result))
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
	if len(results) > 0 {
		fmt.Fprintf(w, "\nDisclosures: %s\n", Disclosure)
	}
	return nil
}

func notes(line engine.Line) string {
	note := ""
	if !line.Included {
		note = "excluded"
	}
	if line.Aux != nil {
		aux := line.Aux.Name + " " + format.Currency(line.Aux.Value)
		if note != "" {
			return note + ", " + aux
		}
		return aux
	}
	return note
}

// CsvFormat writes one row per instrument and scenario in comma-separated
// value format, followed by a total row per scenario.
func CsvFormat(w io.Writer, results []engine.Result) error {
	fmt.Fprintf(w, `"scenario","bps","basis","instrument","included","before","after","change","aux","aux value"`+"\n")
	for _, result := range results {
		view := result.Display()
		basis := "nominal"
		if result.Real != nil {
			basis = "real"
		}
		for _, line := range view.Lines {
			auxName, auxValue := "", ""
			if line.Aux != nil {
				auxName = line.Aux.Name
				auxValue = fmt.Sprintf("%.2f", line.Aux.Value)
			}
			fmt.Fprintf(w, `"%s","%d","%s","%s","%t","%.2f","%.2f","%.2f","%s","%s"`+"\n",
				result.Scenario, result.Shock.Bps, basis, line.Label, line.Included,
				line.Before, line.After, line.Delta, auxName, auxValue)
		}
		t := view.Totals
		fmt.Fprintf(w, `"%s","%d","%s","Total","true","%.2f","%.2f","%.2f","percentChange","%.2f"`+"\n",
			result.Scenario, result.Shock.Bps, basis, t.Before, t.After, t.Delta, t.PercentChange)
	}
	return nil
}

// Report is a projection with its narrative summary.
type Report struct {
	Result  engine.Result `json:"result"`
	Summary string        `json:"summary"`
}

// NewReports pairs each result with its narrative.
func NewReports(results []engine.Result) []Report {
	reports := make([]Report, len(results))
	for i, r := range results {
		reports[i] = Report{Result: r, Summary: Narrative(r)}
	}
	return reports
}

// JSONFormat writes the results and their narratives as indented JSON.
func JSONFormat(w io.Writer, results []engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReports(results)); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// Write renders results in one of the text formats.
func Write(w io.Writer, outputFormat string, results []engine.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	}
	return fmt.Errorf("output format %q is not a text format", outputFormat)
}
