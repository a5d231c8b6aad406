package repository

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type PullRequestRepository interface {
	GetByKey(ctx context.Context, provider domain.Provider, owner, repo string, number int) (*domain.PullRequest, error)
	GetByID(ctx context.Context, id int) (*domain.PullRequest, error)
	Upsert(ctx context.Context, pr *domain.PullRequest) error
}
