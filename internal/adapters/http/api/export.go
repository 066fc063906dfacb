// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pdemaers/player-wellness-dashboard/internal/export"
)

// ExportHandler handles CSV export requests.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleGetExport handles GET /export/{table}.csv requests. It accepts
// the same query parameters as /report and renders one report table as
// a flat CSV file.
func (h *ExportHandler) HandleGetExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	table, ok := exportTable(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("unknown export table; expected one of %s", strings.Join(export.Tables(), ", ")))
		return
	}

	req, err := reportRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	report, err := h.deps.Report(r.Context(), req)
	if err != nil {
		writeReportError(w, err)
		return
	}

	rows, err := export.Rows(report, table)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s-%s.csv", report.Team, table))
	if err := export.Write(w, rows); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// exportTable extracts the table name from a /export/{table}.csv path.
func exportTable(path string) (string, bool) {
	name := strings.TrimPrefix(path, "/export/")
	name, ok := strings.CutSuffix(name, ".csv")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
