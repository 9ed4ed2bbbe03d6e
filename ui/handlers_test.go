package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ablab/app"
	"ablab/domain/analysis"
	"ablab/internal"
	"ablab/internal/testkit"
)

func newTestApp() *App {
	return NewApp(Config{
		Port:     "0",
		Defaults: analysis.DefaultParams(),
	}, app.NewMemoryReportRepository(), internal.NewLogger(internal.LogLevelError))
}

func fixtureCSV() string {
	var sb strings.Builder
	sb.WriteString("variant,conversion\n")
	for _, v := range testkit.NormalScores(30, 0.10, 0.08) {
		sb.WriteString("control," + strconv.FormatFloat(v, 'f', -1, 64) + "\n")
	}
	for _, v := range testkit.NormalScores(30, 0.15, 0.08) {
		sb.WriteString("treatment," + strconv.FormatFloat(v, 'f', -1, 64) + "\n")
	}
	return sb.String()
}

func uploadCSV(t *testing.T, a *App, body string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDatasetUpload(t *testing.T) {
	a := newTestApp()
	uploadCSV(t, a, fixtureCSV())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/columns", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("columns returned %d", rec.Code)
	}
	var types struct {
		Numeric     []string `json:"numeric"`
		Categorical []string `json:"categorical"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&types); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(types.Numeric) != 1 || types.Numeric[0] != "conversion" {
		t.Errorf("unexpected numeric columns %v", types.Numeric)
	}
}

func TestHandleDatasetUpload_RejectsBadCSV(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader(""))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["code"] != "FORMAT_ERROR" {
		t.Errorf("expected FORMAT_ERROR code, got %q", body["code"])
	}
}

func TestHandleAnalyze_FullRun(t *testing.T) {
	a := newTestApp()
	uploadCSV(t, a, fixtureCSV())

	payload, _ := json.Marshal(map[string]interface{}{
		"group_column":  "variant",
		"target_column": "conversion",
		"resamples":     200,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}

	var report analysis.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if report.RunID.IsEmpty() {
		t.Error("report should carry a run id")
	}
	if report.Selection != analysis.SelectTwoSamplePooled {
		t.Errorf("unexpected selection %s", report.Selection)
	}

	// The report must be retrievable afterwards
	getReq := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/reports/%s", report.RunID), nil)
	getRec := httptest.NewRecorder()
	a.Router().ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("report fetch returned %d", getRec.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/reports?limit=5", nil)
	listRec := httptest.NewRecorder()
	a.Router().ServeHTTP(listRec, listReq)
	var reports []analysis.Report
	if err := json.NewDecoder(listRec.Body).Decode(&reports); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 stored report, got %d", len(reports))
	}
}

func TestHandleAnalyze_UnknownColumn(t *testing.T) {
	a := newTestApp()
	uploadCSV(t, a, fixtureCSV())

	payload, _ := json.Marshal(map[string]string{
		"group_column":  "nope",
		"target_column": "conversion",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["code"] != "SCHEMA_ERROR" {
		t.Errorf("expected SCHEMA_ERROR, got %q", body["code"])
	}
}

func TestHandleAnalyze_InvalidAlpha(t *testing.T) {
	a := newTestApp()
	uploadCSV(t, a, fixtureCSV())

	payload, _ := json.Marshal(map[string]interface{}{
		"group_column":  "variant",
		"target_column": "conversion",
		"alpha":         1.5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGetReport_Missing(t *testing.T) {
	a := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/doesnotexist", nil)
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
