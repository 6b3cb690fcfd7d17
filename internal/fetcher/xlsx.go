package fetcher

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSX parses an XLSX stream into a Table. If sheetName is empty the
// first sheet is used. The first row is the header.
func ReadXLSX(r io.Reader, sheetName string) (*Table, error) {
	// The xlsx reader needs random access, so buffer to a temp file.
	tmp, err := os.CreateTemp("", "forecast-xlsx-*")
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: create temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: buffer input")
	}

	f, err := xlsx.OpenReaderAt(tmp, size)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}

	if t.Header == nil {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}
	return t, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: file has no sheets")
	}
	return f.Sheets[0], nil
}
