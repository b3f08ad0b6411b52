package writer

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"storefront/internal/export/models"
)

const (
	pdfMargin     = 10.0
	pdfRowHeight  = 6.0
	pdfFontSize   = 8.0
	pdfTitleSize  = 14.0
	pdfCellMaxLen = 40
)

// PDF renders the table on landscape A4 pages, repeating the header row on
// every page. Columns share the page width evenly.
type PDF struct{}

func (PDF) Write(w io.Writer, t *models.Table) error {
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := doc.GetPageSize()
	colWidth := (pageWidth - 2*pdfMargin) / float64(max(len(t.Headers), 1))

	header := func() {
		doc.SetFont("Helvetica", "B", pdfFontSize)
		doc.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			doc.CellFormat(colWidth, pdfRowHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", pdfFontSize)
	}
	doc.SetHeaderFunc(func() {
		if doc.PageNo() > 1 {
			header()
		}
	})

	doc.AddPage()
	doc.SetFont("Helvetica", "B", pdfTitleSize)
	doc.CellFormat(0, 10, tr(t.Title), "", 1, "L", false, 0, "")
	header()
	for _, row := range t.Rows {
		for _, v := range row {
			doc.CellFormat(colWidth, pdfRowHeight, tr(truncate(v, pdfCellMaxLen)), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
