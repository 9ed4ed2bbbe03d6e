package app

import (
	"context"
	"testing"
	"time"

	"ablab/domain/analysis"
	"ablab/domain/core"
	"ablab/internal/errors"
)

func stubReport(createdAt time.Time) *analysis.Report {
	return &analysis.Report{
		RunID:     core.NewID(),
		CreatedAt: createdAt,
	}
}

func TestMemoryReportRepository_SaveAndGet(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	report := stubReport(core.Now())
	if err := repo.Save(ctx, report); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Get(ctx, report.RunID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.RunID != report.RunID {
		t.Errorf("expected %s, got %s", report.RunID, got.RunID)
	}
}

func TestMemoryReportRepository_GetMissing(t *testing.T) {
	repo := NewMemoryReportRepository()
	_, err := repo.Get(context.Background(), core.NewID())
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %s", errors.GetCode(err))
	}
}

func TestMemoryReportRepository_RejectsEmptyID(t *testing.T) {
	repo := NewMemoryReportRepository()
	if err := repo.Save(context.Background(), &analysis.Report{}); err == nil {
		t.Fatal("expected error for a report without a run id")
	}
}

func TestMemoryReportRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()
	base := core.Now()

	var reports []*analysis.Report
	for i := 0; i < 5; i++ {
		r := stubReport(base.Add(time.Duration(i) * time.Minute))
		reports = append(reports, r)
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	got, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(got))
	}
	if got[0].RunID != reports[4].RunID {
		t.Error("list should start with the newest report")
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Error("list should be ordered newest first")
		}
	}
}
