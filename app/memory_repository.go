package app

import (
	"context"
	"sort"
	"sync"

	"ablab/domain/analysis"
	"ablab/domain/core"
	"ablab/internal/errors"
)

// MemoryReportRepository keeps finished reports in process memory. It backs
// the server when no database URL is configured and every repository test.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports map[core.RunID]*analysis.Report
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{reports: make(map[core.RunID]*analysis.Report)}
}

func (r *MemoryReportRepository) Save(_ context.Context, report *analysis.Report) error {
	if report == nil || report.RunID == "" {
		return errors.Validation("report has no run id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[report.RunID] = report
	return nil
}

func (r *MemoryReportRepository) Get(_ context.Context, id core.RunID) (*analysis.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, errors.NotFound("report " + string(id))
	}
	return report, nil
}

// List returns up to limit reports, newest first
func (r *MemoryReportRepository) List(_ context.Context, limit int) ([]*analysis.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*analysis.Report, 0, len(r.reports))
	for _, report := range r.reports {
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
