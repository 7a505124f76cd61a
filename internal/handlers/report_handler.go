package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/report"
)

// DefaultListLimit bounds the report listing when no limit is given.
const DefaultListLimit = 50

// ReportHandler serves the archived report API.
type ReportHandler struct {
	app *app.App
}

// NewReportHandler creates the report handler.
func NewReportHandler(application *app.App) *ReportHandler {
	return &ReportHandler{app: application}
}

// ListHandler handles GET /api/reports?limit=N.
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.app.Storage == nil {
		writeError(w, http.StatusNotImplemented, "report archive is disabled")
		return
	}

	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	reports, err := h.app.Storage.ReportStorage().ListReports(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// GetHandler handles GET /api/reports/{id}. With ?format=html the report
// markdown is rendered to an HTML fragment.
func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.app.Storage == nil {
		writeError(w, http.StatusNotImplemented, "report archive is disabled")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "report id is required")
		return
	}

	if r.Method == http.MethodDelete {
		if err := h.app.Storage.ReportStorage().DeleteReport(id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
		return
	}

	rep, err := h.app.Storage.ReportStorage().GetReport(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := report.RenderHTML(rep)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
		return
	}

	writeJSON(w, http.StatusOK, rep)
}
