package service

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

// AnalysisAgent - внешний коллаборатор, выполняющий AI-анализ.
// Результат приходит асинхронно через HandleCallback.
type AnalysisAgent interface {
	Submit(ctx context.Context, submission domain.AnalysisSubmission) error
}

type AnalysisService interface {
	// Trigger гарантирует не более одного запуска на ревизию: для уже
	// известного ключа дедупликации возвращается существующий запуск.
	Trigger(ctx context.Context, pr *domain.PullRequest, policy domain.ReviewPolicy) (*domain.AnalysisRun, error)
	// HandleCallback принимает результат агента. Устаревшие callback-и
	// (нет запуска, чужой headSha, запуск уже терминален) отбрасываются
	// с ошибкой ErrStaleCallback.
	HandleCallback(ctx context.Context, runID string, result domain.AnalysisResult) error
	// ExpireStalled переводит зависшие запуски в FAILED/TIMED_OUT.
	ExpireStalled(ctx context.Context) (int, error)
}
