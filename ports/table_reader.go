package ports

import (
	"ablab/domain/dataset"
)

// TableReader loads one tabular source into a Dataset. Implementations parse
// CSV, XLSX or any other rectangular format; the engine never reads files
// itself.
type TableReader interface {
	Read() (*dataset.Dataset, error)
}
