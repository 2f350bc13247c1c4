package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0
	rowHeight  = 7.0
	cellMargin = 2.0
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	weights map[string]float64
}

// NewPDFExporter constructs a PDF exporter. Title and URL columns get wider cells.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{weights: map[string]float64{"Title": 3, "URL": 3, "Comment": 2}}
}

// Render creates a PDF document with a title, an optional subtitle line and the table body.
// The header row is repeated on every page and overlong cells are truncated.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := e.columnWidths(data.Headers)

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, tr(subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], rowHeight, fit(pdf, tr(row[h]), widths[i]-cellMargin), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(headers []string) []float64 {
	total := 0.0
	weights := make([]float64, len(headers))
	for i, h := range headers {
		w, ok := e.weights[h]
		if !ok {
			w = 1
		}
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] = pageWidth * weights[i] / total
	}
	return weights
}

// fit shortens s with an ellipsis until it fits width at the current font.
// s is already translated to the single-byte core font encoding, so it is cut on bytes.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	n := len(s)
	for n > 0 && pdf.GetStringWidth(s[:n]+"...") > width {
		n--
	}
	return s[:n] + "..."
}
