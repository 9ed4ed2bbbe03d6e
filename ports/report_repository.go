package ports

import (
	"context"

	"ablab/domain/analysis"
	"ablab/domain/core"
)

// ReportRepository persists completed analysis reports for later retrieval
// by rendering collaborators
type ReportRepository interface {
	Save(ctx context.Context, report *analysis.Report) error
	Get(ctx context.Context, id core.RunID) (*analysis.Report, error)
	List(ctx context.Context, limit int) ([]*analysis.Report, error)
}
