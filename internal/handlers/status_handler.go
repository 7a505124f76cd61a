package handlers

import (
	"net/http"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/common"
)

// StatusHandler reports application status and version.
type StatusHandler struct {
	app *app.App
}

// NewStatusHandler creates the status handler.
func NewStatusHandler(application *app.App) *StatusHandler {
	return &StatusHandler{app: application}
}

// GetStatusHandler handles GET /api/status.
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"version":         common.GetVersion(),
		"environment":     h.app.Config.Environment,
		"archive_enabled": h.app.Storage != nil,
		"llm_provider":    h.app.Config.LLM.DefaultProvider,
	})
}
