package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"storefront/internal/export/models"
)

func sampleTable() *models.Table {
	return &models.Table{
		Title:   "Products",
		Headers: []string{"ID", "Name"},
		Rows: [][]string{
			{"p1", "Lamp, brass"},
			{"p2", `Chair "Oslo"`},
		},
	}
}

func TestCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Write(&buf, sampleTable()))
	assert.Equal(t, "ID,Name\np1,\"Lamp, brass\"\np2,\"Chair \"\"Oslo\"\"\"\n", buf.String())
}

func TestExcelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel{}.Write(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID", "Name"}, {"p1", "Lamp, brass"}, {"p2", `Chair "Oslo"`}}, rows)
}

func TestPDFProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	table := sampleTable()
	for range 200 {
		table.Rows = append(table.Rows, []string{"px", strings.Repeat("long name ", 10)})
	}
	require.NoError(t, PDF{}.Write(&buf, table))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestFor(t *testing.T) {
	assert.IsType(t, CSV{}, For(models.FormatCSV))
	assert.IsType(t, Excel{}, For(models.FormatExcel))
	assert.IsType(t, PDF{}, For(models.FormatPDF))
	assert.IsType(t, CSV{}, For("unknown"))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName(""))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}
