package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ablab/adapters/csvsource"
	"ablab/domain/analysis"
	"ablab/domain/core"
	"ablab/internal/errors"
)

// analyzeRequest is the payload for POST /api/analyses
type analyzeRequest struct {
	GroupColumn          string   `json:"group_column"`
	TargetColumn         string   `json:"target_column"`
	Alpha                *float64 `json:"alpha,omitempty"`
	Resamples            *int     `json:"resamples,omitempty"`
	Correlation          bool     `json:"correlation"`
	Association          bool     `json:"association"`
	AssociationThreshold *float64 `json:"association_threshold,omitempty"`
}

// handleDatasetUpload accepts a CSV body or a multipart "file" part and loads
// it into the session
func (a *App) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	src := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		src = file
	}

	a.mu.Lock()
	ds, err := a.session.Load(csvsource.NewReader(src))
	a.mu.Unlock()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rows":    ds.RowCount(),
		"columns": ds.Headers,
		"types":   ds.ClassifyColumns(),
	})
}

// handleColumnTypes reports the numeric/categorical split of the loaded table
func (a *App) handleColumnTypes(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	ds := a.session.Dataset()
	a.mu.Unlock()
	if ds == nil {
		a.writeError(w, errors.Validation("no dataset loaded"))
		return
	}
	a.writeJSON(w, http.StatusOK, ds.ClassifyColumns())
}

// handleAnalyze selects columns, runs the full pipeline and persists the report
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.Newf(errors.CodeFormat, "malformed request body: %v", err))
		return
	}

	params := a.defaults
	if req.Alpha != nil {
		params.Alpha = *req.Alpha
	}
	if req.Resamples != nil {
		params.Resamples = *req.Resamples
	}
	params.Correlation = req.Correlation
	params.Association = req.Association
	params.AssociationThreshold = req.AssociationThreshold

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.session.SetParams(params); err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.session.SelectColumns(req.GroupColumn, req.TargetColumn); err != nil {
		a.writeError(w, err)
		return
	}
	report, err := a.session.Run(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.repo.Save(r.Context(), report); err != nil {
		a.logger.Error("failed to persist report %s: %v", report.RunID, err)
	}

	a.writeJSON(w, http.StatusOK, report)
}

// handleGetReport fetches one stored report by run id
func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := core.RunID(chi.URLParam(r, "id"))
	report, err := a.repo.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

// handleListReports returns stored reports, newest first
func (a *App) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	reports, err := a.repo.List(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if reports == nil {
		reports = []*analysis.Report{}
	}
	a.writeJSON(w, http.StatusOK, reports)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeFormat, errors.CodeValidation, errors.CodeSchema,
		errors.CodeConfiguration, errors.CodeInsufficientData:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	a.logger.Warn("request failed: %v", err)
	a.writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
