package server

import (
	"net/http"

	"github.com/bagdasarian/pr-insight/internal/handler"
)

func SetupRoutes(mux *http.ServeMux, h *handler.Handler) {
	mux.HandleFunc("POST /webhook/{provider}/events", h.HandleWebhook)
	mux.HandleFunc("POST /analysis/callback", h.HandleAnalysisCallback)
	mux.HandleFunc("GET /dashboard/pr-analysis", h.GetPRAnalysis)
	mux.HandleFunc("GET /dashboard/issue-analysis", h.GetIssueAnalysis)
	mux.HandleFunc("GET /dashboard/time-money-saved", h.GetTimeMoneySaved)
	mux.HandleFunc("GET /dashboard/issues", h.ListIssues)
}
