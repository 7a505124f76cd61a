package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.analyzeHandler.AnalyzeHandler) // POST - run analysis

	// API routes - Report archive
	mux.HandleFunc("/api/reports", s.reportHandler.ListHandler) // GET - list reports
	mux.HandleFunc("/api/reports/", s.reportHandler.GetHandler) // GET/DELETE /{id}, ?format=html

	// API routes - System
	mux.HandleFunc("/api/status", s.statusHandler.GetStatusHandler) // GET - application status

	return mux
}
