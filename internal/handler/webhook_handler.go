package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/bagdasarian/pr-insight/internal/normalizer"
)

// HandleWebhook принимает сырое событие провайдера.
// Пропущенные события (неподдерживаемый тип, неподключенный репозиторий,
// устаревшее событие) подтверждаются кодом 202, чтобы провайдер
// не ретраил доставку.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	provider, err := parseProvider(r.PathValue("provider"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 {
		h.handleError(w, domain.ErrValidation)
		return
	}

	event, err := normalizer.Normalize(provider, eventKey(r, provider), payload)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedEvent) {
			h.log.Infow("unsupported event acknowledged",
				"provider", provider, "eventKey", eventKey(r, provider))
			h.writeAck(w, WebhookAckResponse{Status: "skipped"})
			return
		}
		h.handleError(w, err)
		return
	}

	pr, err := h.eventService.HandleEvent(r.Context(), event)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if pr == nil {
		h.writeAck(w, WebhookAckResponse{Status: "skipped"})
		return
	}

	h.writeAck(w, WebhookAckResponse{
		Status:   "processed",
		PRNumber: pr.Number,
		PRState:  string(pr.State),
	})
}

func (h *Handler) writeAck(w http.ResponseWriter, ack WebhookAckResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(ack)
}

func parseProvider(raw string) (domain.Provider, error) {
	switch domain.Provider(raw) {
	case domain.ProviderGitHub:
		return domain.ProviderGitHub, nil
	case domain.ProviderBitbucket:
		return domain.ProviderBitbucket, nil
	}
	return "", domain.ErrUnsupportedEvent
}

// eventKey достает тип события из заголовка провайдера.
func eventKey(r *http.Request, provider domain.Provider) string {
	if provider == domain.ProviderGitHub {
		return r.Header.Get("X-GitHub-Event")
	}
	return r.Header.Get("X-Event-Key")
}
