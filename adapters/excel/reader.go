// Package excel reads XLSX workbooks into datasets.
package excel

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// Reader loads the first worksheet of an XLSX file. The first row is the
// header.
type Reader struct {
	filePath string
}

func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// Read opens the workbook and converts the first sheet into a Dataset
func (r *Reader) Read() (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Newf(errors.CodeFormat, "cannot open workbook %s: %v", r.filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Format("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Newf(errors.CodeFormat, "cannot read sheet %s: %v", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, errors.Format("worksheet must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	// excelize trims trailing empty cells; pad every record back to the
	// header width so missing values surface in validation, not as a
	// malformed table. Rows wider than the header are malformed.
	records := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(headers) {
			return nil, errors.Newf(errors.CodeFormat,
				"row %d has %d fields, expected %d", i+1, len(row), len(headers))
		}
		rec := make([]string, len(headers))
		copy(rec, row)
		records = append(records, rec)
	}

	return dataset.New(headers, records)
}
