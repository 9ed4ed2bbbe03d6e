package dataset

import (
	"sort"
	"strconv"
	"strings"

	"ablab/internal/errors"
)

// Dataset holds one raw table: a header row plus string-valued records.
// It is the root entity of an analysis session; everything else is a
// derived, read-only projection.
type Dataset struct {
	Headers []string   `json:"headers"`
	Records [][]string `json:"records"`
}

// ColumnTypes partitions the schema into numeric and categorical columns
type ColumnTypes struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// New builds a Dataset from a parsed table.
// An empty table or ragged records fail with FORMAT_ERROR.
func New(headers []string, records [][]string) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, errors.Format("table has no header row")
	}
	if len(records) == 0 {
		return nil, errors.Format("table has no data rows")
	}
	for i, rec := range records {
		if len(rec) != len(headers) {
			return nil, errors.Newf(errors.CodeFormat,
				"row %d has %d fields, expected %d", i+1, len(rec), len(headers))
		}
	}
	return &Dataset{Headers: headers, Records: records}, nil
}

// RowCount returns the number of data records
func (d *Dataset) RowCount() int {
	return len(d.Records)
}

// Validate checks the table is analyzable: at least 10 rows, no missing values
func (d *Dataset) Validate() error {
	if len(d.Records) < 10 {
		return errors.Newf(errors.CodeValidation,
			"too few rows for analysis: got %d, need at least 10", len(d.Records))
	}
	missing := 0
	for _, rec := range d.Records {
		for _, v := range rec {
			if strings.TrimSpace(v) == "" {
				missing++
			}
		}
	}
	if missing > 0 {
		return errors.Newf(errors.CodeValidation,
			"table contains %d missing values; clean the data and retry", missing)
	}
	return nil
}

// ClassifyColumns inspects every column's values and splits the schema into
// numeric and categorical columns. A column is numeric when every non-empty
// value parses as a float.
func (d *Dataset) ClassifyColumns() ColumnTypes {
	types := ColumnTypes{Numeric: []string{}, Categorical: []string{}}
	for idx, name := range d.Headers {
		if d.columnIsNumeric(idx) {
			types.Numeric = append(types.Numeric, name)
		} else {
			types.Categorical = append(types.Categorical, name)
		}
	}
	return types
}

// HasColumn reports whether the schema contains the named column
func (d *Dataset) HasColumn(name string) bool {
	return d.columnIndex(name) >= 0
}

func (d *Dataset) columnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

func (d *Dataset) columnIsNumeric(idx int) bool {
	seen := false
	for _, rec := range d.Records {
		v := strings.TrimSpace(rec[idx])
		if v == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return seen
}

// GroupSample is a view over one group's target values. It never owns a copy
// of the dataset; diagnostics, the executor, bootstrap and effect-size code
// all read the same backing slice.
type GroupSample []float64

// GroupedDataset pairs a Dataset with a designated group column and numeric
// target column. Immutable once built; re-selecting columns creates a new
// instance.
type GroupedDataset struct {
	ds        *Dataset
	groupCol  string
	targetCol string
	labels    []string
	samples   map[string]GroupSample
}

// NewGrouped designates the group and target columns. Fails with SCHEMA_ERROR
// when either column is absent or the target is not uniformly numeric.
func NewGrouped(ds *Dataset, groupCol, targetCol string) (*GroupedDataset, error) {
	gIdx := ds.columnIndex(groupCol)
	if gIdx < 0 {
		return nil, errors.Newf(errors.CodeSchema, "group column %q does not exist", groupCol)
	}
	tIdx := ds.columnIndex(targetCol)
	if tIdx < 0 {
		return nil, errors.Newf(errors.CodeSchema, "target column %q does not exist", targetCol)
	}

	samples := make(map[string]GroupSample)
	for i, rec := range ds.Records {
		label := strings.TrimSpace(rec[gIdx])
		if label == "" {
			return nil, errors.Newf(errors.CodeSchema,
				"row %d has no value in group column %q", i+1, groupCol)
		}
		raw := strings.TrimSpace(rec[tIdx])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Newf(errors.CodeSchema,
				"target column %q must be numeric: row %d holds %q", targetCol, i+1, raw)
		}
		samples[label] = append(samples[label], v)
	}

	labels := make([]string, 0, len(samples))
	for label := range samples {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return &GroupedDataset{
		ds:        ds,
		groupCol:  groupCol,
		targetCol: targetCol,
		labels:    labels,
		samples:   samples,
	}, nil
}

// GroupColumn returns the designated group column name
func (g *GroupedDataset) GroupColumn() string { return g.groupCol }

// TargetColumn returns the designated target column name
func (g *GroupedDataset) TargetColumn() string { return g.targetCol }

// Labels returns the sorted distinct group labels
func (g *GroupedDataset) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// GroupCount returns the number of distinct groups
func (g *GroupedDataset) GroupCount() int { return len(g.labels) }

// Values returns the target values of one group as a shared view
func (g *GroupedDataset) Values(label string) (GroupSample, error) {
	s, ok := g.samples[label]
	if !ok {
		return nil, errors.Newf(errors.CodeSchema, "unknown group label %q", label)
	}
	return s, nil
}

// SamplesInOrder returns every group's values in label order
func (g *GroupedDataset) SamplesInOrder() []GroupSample {
	out := make([]GroupSample, len(g.labels))
	for i, label := range g.labels {
		out[i] = g.samples[label]
	}
	return out
}
