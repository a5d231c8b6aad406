package service

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

// IngestResult - счетчики одного батча комментариев.
type IngestResult struct {
	Accepted int
	Rejected int
}

type CommentService interface {
	// Ingest валидирует и фильтрует комментарии по политике workspace
	// и репозитория, затем атомарно сохраняет выживший батч вместе со
	// счетчиками запуска. Невалидные записи отбрасываются поштучно и
	// никогда не роняют батч.
	Ingest(ctx context.Context, runID string, raw []domain.RawComment) (IngestResult, error)
}
