package repository

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type PolicyRepository interface {
	// GetReviewPolicy возвращает репозиторий вместе с его workspace.
	// ErrNotFound, если репозиторий не подключен.
	GetReviewPolicy(ctx context.Context, provider domain.Provider, owner, repo string) (domain.ReviewPolicy, error)
	GetWorkspaceBySlug(ctx context.Context, slug string) (*domain.Workspace, error)
	RepositoryExists(ctx context.Context, owner, repo string) (bool, error)
}
