// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdemaers/player-wellness-dashboard/internal/adapters/repository"
	service "github.com/pdemaers/player-wellness-dashboard/internal/app"
)

// ReportHandler handles report requests.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /report?team=U21&from=...&to=...&exempt=...
// requests. The optional exempt parameter is a comma-separated override
// of the configured exemption list.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
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
	writeJSON(w, http.StatusOK, report)
}

// reportRequest parses query parameters into a service request. Argument
// semantics are validated by the service; only syntax is rejected here.
func reportRequest(r *http.Request) (service.ReportRequest, error) {
	req := service.ReportRequest{Team: r.URL.Query().Get("team")}
	from, to, err := parsePeriod(r)
	if err != nil {
		return service.ReportRequest{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrBadRequest)
	}
	req.From, req.To = from, to

	if exempt, ok := r.URL.Query()["exempt"]; ok {
		override := []string{}
		for _, chunk := range exempt {
			for _, id := range strings.Split(chunk, ",") {
				if id = strings.TrimSpace(id); id != "" {
					override = append(override, id)
				}
			}
		}
		req.ExemptOverride = override
	}
	return req, nil
}

// writeReportError maps service failures to the error taxonomy: invalid
// arguments are client errors, fetch failures are upstream errors, and
// everything else is internal.
func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrFetch), errors.Is(err, repository.ErrConnect):
		writeError(w, http.StatusBadGateway, "fetch_failed", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
