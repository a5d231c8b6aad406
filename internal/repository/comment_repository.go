package repository

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type CommentRepository interface {
	// StoreBatch в одной транзакции пишет пережившие фильтрацию
	// комментарии и обновляет счетчики запуска и PR. Частично
	// сохраненный батч наблюдать невозможно.
	StoreBatch(ctx context.Context, run *domain.AnalysisRun, comments []*domain.Comment, estimatedEffort float64) error
	GetByRunID(ctx context.Context, runID string) ([]*domain.Comment, error)
}
