// Package models describes export datasets, formats and the tabular form
// every dataset is rendered from.
package models

type Dataset string

const (
	DatasetOrders    Dataset = "orders"
	DatasetProducts  Dataset = "products"
	DatasetCustomers Dataset = "customers"
)

var Datasets = []string{string(DatasetOrders), string(DatasetProducts), string(DatasetCustomers)}

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

var Formats = []string{string(FormatCSV), string(FormatExcel), string(FormatPDF)}

func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	case FormatPDF:
		return "pdf"
	default:
		return "csv"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Table is a dataset flattened to strings. Every row has len(Headers) cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// File is a rendered export ready to stream.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}
