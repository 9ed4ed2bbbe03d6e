// Package csvsource reads CSV tables into datasets.
package csvsource

import (
	"encoding/csv"
	"io"
	"os"

	"ablab/domain/dataset"
	"ablab/internal/errors"
)

// Reader parses a CSV stream into a Dataset. The first record is the header.
type Reader struct {
	src io.Reader
}

func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Read parses the whole stream. Malformed CSV and empty input fail with
// FORMAT_ERROR.
func (r *Reader) Read() (*dataset.Dataset, error) {
	cr := csv.NewReader(r.src)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Newf(errors.CodeFormat, "malformed CSV: %v", err)
	}
	if len(rows) == 0 {
		return nil, errors.Format("CSV input is empty")
	}
	return dataset.New(rows[0], rows[1:])
}

// ReadFile parses a CSV file from disk
func ReadFile(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Newf(errors.CodeFormat, "cannot open %s: %v", path, err)
	}
	defer f.Close()
	return NewReader(f).Read()
}
