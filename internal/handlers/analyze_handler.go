package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/finsight/internal/app"
	"github.com/ternarybob/finsight/internal/models"
)

// AnalyzeHandler runs analysis requests through the pipeline.
type AnalyzeHandler struct {
	app *app.App
}

// NewAnalyzeHandler creates the analysis handler.
func NewAnalyzeHandler(application *app.App) *AnalyzeHandler {
	return &AnalyzeHandler{app: application}
}

type analyzeRequest struct {
	// Company is a free-text company name or ticker symbol
	Company string `json:"company"`
}

type analyzeResponse struct {
	Status     string               `json:"status"`
	Ticker     string               `json:"ticker,omitempty"`
	ReportID   string               `json:"report_id,omitempty"`
	Report     string               `json:"report,omitempty"`
	Candidates []models.TickerMatch `json:"candidates,omitempty"`
	Reason     string               `json:"reason,omitempty"`
	Advisory   string               `json:"advisory,omitempty"`
}

// AnalyzeHandler handles POST /api/analyze. An ambiguous company input
// returns 409 with the candidate list; the client retries with the chosen
// ticker as the company value.
func (h *AnalyzeHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Company) == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}

	run, report, err := h.app.Analyze(r.Context(), req.Company)
	if err != nil {
		if run != nil && run.Resolution != nil && run.Resolution.Status == models.ResolutionFailed {
			writeJSON(w, http.StatusUnprocessableEntity, analyzeResponse{
				Status:   string(models.ResolutionFailed),
				Reason:   run.Resolution.Reason,
				Advisory: run.Resolution.Advisory,
			})
			return
		}
		h.app.Logger.Error().Err(err).Str("company", req.Company).Msg("Analysis run failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if run.Resolution != nil && run.Resolution.Status == models.ResolutionAmbiguous {
		writeJSON(w, http.StatusConflict, analyzeResponse{
			Status:     string(models.ResolutionAmbiguous),
			Candidates: run.Resolution.Matches,
			Reason:     run.Resolution.Reason,
			Advisory:   run.Resolution.Advisory,
		})
		return
	}

	resp := analyzeResponse{
		Status: "completed",
		Ticker: run.Ticker,
		Report: run.Report,
	}
	if report != nil {
		resp.ReportID = report.ID
	}
	writeJSON(w, http.StatusOK, resp)
}
