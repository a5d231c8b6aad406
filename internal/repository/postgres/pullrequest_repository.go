package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type pullRequestRepository struct {
	executor DBExecutor
}

func NewPullRequestRepository(db *sql.DB) *pullRequestRepository {
	return &pullRequestRepository{executor: db}
}

const pullRequestColumns = `
	id, provider, owner, repo, pr_number, provider_pr_id, title, author,
	author_avatar, url, state, is_active, head_sha, base_sha, issue_count,
	event_at, created_at, updated_at
`

func scanPullRequest(row interface{ Scan(...any) error }) (*domain.PullRequest, error) {
	pr := &domain.PullRequest{}
	var updatedAt sql.NullTime
	err := row.Scan(
		&pr.ID,
		&pr.Provider,
		&pr.Owner,
		&pr.Repo,
		&pr.Number,
		&pr.ProviderPRID,
		&pr.Title,
		&pr.Author,
		&pr.AuthorAvatar,
		&pr.URL,
		&pr.State,
		&pr.IsActive,
		&pr.HeadSha,
		&pr.BaseSha,
		&pr.IssueCount,
		&pr.EventAt,
		&pr.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		pr.UpdatedAt = &updatedAt.Time
	}
	return pr, nil
}

func (r *pullRequestRepository) GetByKey(ctx context.Context, provider domain.Provider, owner, repo string, number int) (*domain.PullRequest, error) {
	query := `
		SELECT ` + pullRequestColumns + `
		FROM pull_requests
		WHERE provider = $1 AND owner = $2 AND repo = $3 AND pr_number = $4
	`

	pr, err := scanPullRequest(r.executor.QueryRowContext(ctx, query, string(provider), owner, repo, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("pull request")
		}
		return nil, err
	}
	return pr, nil
}

func (r *pullRequestRepository) GetByID(ctx context.Context, id int) (*domain.PullRequest, error) {
	query := `
		SELECT ` + pullRequestColumns + `
		FROM pull_requests
		WHERE id = $1
	`

	pr, err := scanPullRequest(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("pull request")
		}
		return nil, err
	}
	return pr, nil
}

// Upsert дублирует порядок событий на уровне хранилища: DO UPDATE
// срабатывает только если запись не новее события, кроме терминальных
// состояний - они принимаются всегда. При проигранной гонке с другим
// инстансом в pr перечитывается актуальная строка.
func (r *pullRequestRepository) Upsert(ctx context.Context, pr *domain.PullRequest) error {
	query := `
		INSERT INTO pull_requests (
			provider, owner, repo, pr_number, provider_pr_id, title, author,
			author_avatar, url, state, is_active, head_sha, base_sha, event_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (provider, owner, repo, pr_number) DO UPDATE
		SET provider_pr_id = EXCLUDED.provider_pr_id,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			author_avatar = EXCLUDED.author_avatar,
			url = EXCLUDED.url,
			state = EXCLUDED.state,
			is_active = EXCLUDED.is_active,
			head_sha = EXCLUDED.head_sha,
			base_sha = EXCLUDED.base_sha,
			event_at = EXCLUDED.event_at,
			updated_at = CURRENT_TIMESTAMP
		WHERE pull_requests.event_at <= EXCLUDED.event_at
			OR EXCLUDED.state IN ('MERGED', 'DECLINED')
			OR NOT EXCLUDED.is_active
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	var updatedAt sql.NullTime
	err := r.executor.QueryRowContext(
		ctx,
		query,
		string(pr.Provider),
		pr.Owner,
		pr.Repo,
		pr.Number,
		pr.ProviderPRID,
		pr.Title,
		pr.Author,
		pr.AuthorAvatar,
		pr.URL,
		string(pr.State),
		pr.IsActive,
		pr.HeadSha,
		pr.BaseSha,
		pr.EventAt,
		now,
	).Scan(&pr.ID, &pr.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		fresh, freshErr := r.GetByKey(ctx, pr.Provider, pr.Owner, pr.Repo, pr.Number)
		if freshErr != nil {
			return freshErr
		}
		*pr = *fresh
		return nil
	}
	if err != nil {
		return err
	}

	if updatedAt.Valid {
		pr.UpdatedAt = &updatedAt.Time
	} else {
		pr.UpdatedAt = nil
	}
	return nil
}
