package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"ablab/internal/errors"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name failed: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set cell failed: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return path
}

func TestReader_ReadsFirstSheet(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"variant", "conversion"},
		{"a", 0.12},
		{"b", 0.15},
		{"a", 0.11},
	})

	ds, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Headers) != 2 || ds.Headers[1] != "conversion" {
		t.Errorf("unexpected headers %v", ds.Headers)
	}
	if ds.RowCount() != 3 {
		t.Errorf("expected 3 records, got %d", ds.RowCount())
	}
	if ds.Records[0][0] != "a" {
		t.Errorf("unexpected first record %v", ds.Records[0])
	}
}

// TestReader_PadsTrailingEmptyCells verifies short rows come back at header
// width so validation can flag the gaps
func TestReader_PadsTrailingEmptyCells(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"variant", "conversion"},
		{"a", 0.12},
		{"b"}, // missing value
	})

	ds, err := NewReader(path).Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Records[1]) != 2 {
		t.Fatalf("short row should be padded to header width, got %v", ds.Records[1])
	}
	if ds.Records[1][1] != "" {
		t.Errorf("padded cell should be empty, got %q", ds.Records[1][1])
	}
	if err := ds.Validate(); err == nil {
		t.Error("padded gap should fail validation as a missing value")
	}
}

func TestReader_RejectsWideRow(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"variant", "conversion"},
		{"a", 0.12, "stray"},
	})

	_, err := NewReader(path).Read()
	if err == nil {
		t.Fatal("expected error for a row wider than the header")
	}
	if !errors.HasCode(err, errors.CodeFormat) {
		t.Errorf("expected FORMAT_ERROR, got %s", errors.GetCode(err))
	}
}

func TestReader_HeaderOnlyWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"variant", "conversion"}})
	_, err := NewReader(path).Read()
	if err == nil {
		t.Fatal("expected error for header-only workbook")
	}
	if !errors.HasCode(err, errors.CodeFormat) {
		t.Errorf("expected FORMAT_ERROR, got %s", errors.GetCode(err))
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader("/nonexistent/book.xlsx").Read()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.HasCode(err, errors.CodeFormat) {
		t.Errorf("expected FORMAT_ERROR, got %s", errors.GetCode(err))
	}
}
