package repository

import (
	"context"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type AnalysisRepository interface {
	// CreateIfAbsent атомарно создает запуск, опираясь на уникальность
	// dedup_key в БД. Возвращает created=false и существующий запуск,
	// если ревизия уже анализировалась.
	CreateIfAbsent(ctx context.Context, run *domain.AnalysisRun) (created bool, existing *domain.AnalysisRun, err error)
	GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*domain.AnalysisRun, error)
	Complete(ctx context.Context, id string, summary string, modelInfo, usageInfo []byte, completedAt time.Time) error
	Fail(ctx context.Context, id string, reason string, completedAt time.Time) error
	// FailStalled переводит в FAILED/TIMED_OUT все запуски, висящие
	// в INPROGRESS дольше порога. Возвращает количество затронутых.
	FailStalled(ctx context.Context, startedBefore time.Time, failedAt time.Time) (int, error)
}
