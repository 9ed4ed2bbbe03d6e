// Package postgres persists analysis reports in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"ablab/domain/analysis"
	"ablab/domain/core"
	"ablab/internal/errors"
	"ablab/ports"
)

const reportSchema = `
CREATE TABLE IF NOT EXISTS analysis_reports (
	run_id     TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	group_col  TEXT NOT NULL,
	target_col TEXT NOT NULL,
	report     JSONB NOT NULL
)`

// ReportRepositoryImpl implements ReportRepository for PostgreSQL. The whole
// report is stored as one JSONB document; the indexed columns exist only for
// listing and lookups.
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) *ReportRepositoryImpl {
	return &ReportRepositoryImpl{db: db}
}

var _ ports.ReportRepository = (*ReportRepositoryImpl)(nil)

// EnsureSchema creates the backing table when it does not exist yet
func (r *ReportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, reportSchema); err != nil {
		return errors.Database("failed to create report schema", err)
	}
	return nil
}

// Save upserts one finished report
func (r *ReportRepositoryImpl) Save(ctx context.Context, report *analysis.Report) error {
	if report == nil || report.RunID == "" {
		return errors.Validation("report has no run id")
	}
	doc, err := json.Marshal(report)
	if err != nil {
		return errors.Database("failed to encode report", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_reports (run_id, created_at, group_col, target_col, report)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			created_at = EXCLUDED.created_at,
			group_col  = EXCLUDED.group_col,
			target_col = EXCLUDED.target_col,
			report     = EXCLUDED.report`,
		string(report.RunID), report.CreatedAt, report.GroupColumn, report.TargetColumn, doc)
	if err != nil {
		return errors.Database("failed to save report", err)
	}
	return nil
}

// Get retrieves a report by run id
func (r *ReportRepositoryImpl) Get(ctx context.Context, id core.RunID) (*analysis.Report, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT report FROM analysis_reports WHERE run_id = $1`, string(id)).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("report " + string(id))
	}
	if err != nil {
		return nil, errors.Database("failed to load report", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(doc, &report); err != nil {
		return nil, errors.Database("failed to decode report", err)
	}
	return &report, nil
}

// List returns up to limit reports, newest first
func (r *ReportRepositoryImpl) List(ctx context.Context, limit int) ([]*analysis.Report, error) {
	query := `SELECT report FROM analysis_reports ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Database("failed to list reports", err)
	}
	defer rows.Close()

	var reports []*analysis.Report
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.Database("failed to scan report row", err)
		}
		var report analysis.Report
		if err := json.Unmarshal(doc, &report); err != nil {
			return nil, errors.Database("failed to decode report", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}
