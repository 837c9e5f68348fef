// Package report renders projections as printable PDF documents.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/pkg/format"
	"github.com/iwvelando/rate-impact/pkg/output"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

var columnWidths = []float64{45, 35, 35, 35, 30}

// Options controls report metadata.
type Options struct {
	Title      string
	Generated  time.Time
	BookingURL string
}

// ErrNoResults is returned when there is nothing to render.
var ErrNoResults = errors.New("no projection results to render")

type pdfReport struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options
}

// Render produces a PDF document with one section per result.
func Render(results []engine.Result, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, results, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the PDF document to w.
func Write(w io.Writer, results []engine.Result, opts Options) error {
	if len(results) == 0 {
		return ErrNoResults
	}
	if opts.Title == "" {
		opts.Title = "Rate Impact Projection"
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(opts.Generated)
	pdf.SetTitle(opts.Title, true)

	r := &pdfReport{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), opts: opts}
	r.addHeader()
	for _, result := range results {
		r.addResult(result)
	}
	r.addFooter()

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func (r *pdfReport) addHeader() {
	r.pdf.AddPage()
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 12, r.tr(r.opts.Title), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.opts.Generated.Format("2 January 2006")), "", 1, "L", false, 0, "")
	r.pdf.Ln(4)
}

func (r *pdfReport) addResult(result engine.Result) {
	view := result.Display()

	r.pdf.SetFont("Arial", "B", 13)
	r.pdf.SetTextColor(0, 51, 102)
	heading := fmt.Sprintf("%s scenario (%s, %s)", result.Scenario, format.Bps(result.Shock.Bps), output.Basis(result))
	r.pdf.CellFormat(contentWidth, 8, r.tr(heading), "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	for i, h := range []string{"Instrument", "Before", "After", "Change", "Note"} {
		r.pdf.CellFormat(columnWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	for i, line := range view.Lines {
		if i%2 == 0 {
			r.pdf.SetFillColor(245, 247, 250)
		} else {
			r.pdf.SetFillColor(255, 255, 255)
		}
		note := ""
		if !line.Included {
			note = "excluded"
		}
		r.row(line.Label, line.Before, line.After, line.Delta, note)
	}

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(230, 236, 245)
	t := view.Totals
	r.row("Total", t.Before, t.After, t.Delta, format.PercentChange(t.PercentChange))

	r.addAuxiliary(view)

	r.pdf.Ln(2)
	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.MultiCell(contentWidth, 5, r.tr(output.Narrative(result)), "", "L", false)
	r.pdf.Ln(4)
}

func (r *pdfReport) row(label string, before, after, delta float64, note string) {
	r.pdf.CellFormat(columnWidths[0], 6, r.tr(label), "1", 0, "L", true, 0, "")
	r.pdf.CellFormat(columnWidths[1], 6, format.WholeCurrency(before), "1", 0, "R", true, 0, "")
	r.pdf.CellFormat(columnWidths[2], 6, format.WholeCurrency(after), "1", 0, "R", true, 0, "")
	r.pdf.CellFormat(columnWidths[3], 6, format.WholeCurrency(delta), "1", 0, "R", true, 0, "")
	r.pdf.CellFormat(columnWidths[4], 6, r.tr(note), "1", 1, "C", true, 0, "")
}

func (r *pdfReport) addAuxiliary(view engine.View) {
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(90, 90, 90)
	for _, line := range view.Lines {
		if line.Aux == nil {
			continue
		}
		text := fmt.Sprintf("%s %s: %s", line.Label, line.Aux.Name, format.WholeCurrency(line.Aux.Value))
		r.pdf.CellFormat(contentWidth, 5, r.tr(text), "", 1, "L", false, 0, "")
	}
}

func (r *pdfReport) addFooter() {
	if r.opts.BookingURL != "" {
		r.pdf.SetFont("Arial", "B", 11)
		r.pdf.SetTextColor(0, 102, 204)
		r.pdf.CellFormat(contentWidth, 8, "See Guaranteed Rate Options", "", 1, "L", false, 0, r.opts.BookingURL)
		r.pdf.Ln(2)
	}

	r.pdf.SetFont("Arial", "I", 8)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4, r.tr("Disclosures: "+output.Disclosure), "", "L", false)
}
