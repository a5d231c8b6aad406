package service

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type EventService interface {
	// HandleEvent применяет каноническое событие к состоянию PR и при
	// необходимости запрашивает анализ. Возвращает nil PR, если событие
	// пропущено (неподключенный репозиторий, устаревшее событие).
	HandleEvent(ctx context.Context, event domain.CanonicalEvent) (*domain.PullRequest, error)
}
