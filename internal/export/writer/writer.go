// Package writer renders tables as CSV, Excel or PDF documents.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"storefront/internal/export/models"
)

type Writer interface {
	Write(w io.Writer, t *models.Table) error
}

// For returns the writer for a format. Unknown formats fall back to CSV.
func For(f models.Format) Writer {
	switch f {
	case models.FormatExcel:
		return Excel{}
	case models.FormatPDF:
		return PDF{}
	default:
		return CSV{}
	}
}

type CSV struct{}

func (CSV) Write(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
