package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

// HandleAnalysisCallback принимает результат внешнего агента.
// Устаревший callback подтверждается кодом 202 со статусом discarded:
// агенту ретраить нечего, данные осознанно отброшены.
func (h *Handler) HandleAnalysisCallback(w http.ResponseWriter, r *http.Request) {
	var req AnalysisCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, domain.ErrValidation)
		return
	}
	if req.AnalysisID == "" || req.HeadSha == "" {
		h.handleError(w, domain.ErrValidation)
		return
	}

	result := domain.AnalysisResult{
		HeadSha:    req.HeadSha,
		Completed:  req.Completed,
		FailReason: req.FailReason,
		Summary:    req.Summary,
		ModelInfo:  req.ModelInfo,
		UsageInfo:  req.UsageInfo,
		Comments:   req.Comments,
	}

	if err := h.analysisService.HandleCallback(r.Context(), req.AnalysisID, result); err != nil {
		if errors.Is(err, domain.ErrStaleCallback) {
			h.log.Infow("stale analysis callback discarded",
				"runID", req.AnalysisID, "headSha", req.HeadSha)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(AnalysisCallbackResponse{Status: "discarded"})
			return
		}
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(AnalysisCallbackResponse{Status: "ok"})
}
