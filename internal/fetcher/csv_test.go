package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := strings.NewReader("Date, Spend ,Apply Starts\n" +
		"2025-06-01,\"$1,234.50\",95\n" +
		"2025-06-02,800.00,40,extra\n")

	table, err := ReadCSV(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Spend", "Apply Starts"}, table.Header)
	require.Len(t, table.Rows, 2)
	// Fields are trimmed; quoted commas survive; ragged rows are kept.
	assert.Equal(t, "$1,234.50", table.Rows[0][1])
	assert.Len(t, table.Rows[1], 4)
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func TestTableColumn(t *testing.T) {
	table := &Table{Header: []string{"Date", " Spend ", "Apply Starts"}}

	assert.Equal(t, 0, table.Column("date"))
	assert.Equal(t, 1, table.Column("SPEND"))
	assert.Equal(t, 2, table.Column("  apply starts"))
	assert.Equal(t, -1, table.Column("cpas"))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, "xlsx", FormatFor("data.XLSX", ""))
	assert.Equal(t, "csv", FormatFor("data.csv", ""))
	assert.Equal(t, "csv", FormatFor("https://example.com/export", ""))
	// An explicit format wins over the extension.
	assert.Equal(t, "csv", FormatFor("data.xlsx", "CSV"))
}
