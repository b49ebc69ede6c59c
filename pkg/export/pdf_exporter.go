package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const landscapeColumns = 6

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Render creates a PDF document with an optional title and table body.
// Wide tables switch to landscape.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation, usable := "P", 190.0
	if len(data.Headers) >= landscapeColumns {
		orientation, usable = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := usable / float64(len(data.Headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
		}
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(truncate(row[header], colWidth)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate keeps cell text inside the column using a rough 2mm per glyph estimate.
func truncate(value string, width float64) string {
	limit := int(width / 2)
	if limit < 4 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
