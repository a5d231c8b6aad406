package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockDB создает мок базы данных для тестов
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func pullRequestRows(id int, headSha string, updatedAt any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "provider", "owner", "repo", "pr_number", "provider_pr_id", "title",
		"author", "author_avatar", "url", "state", "is_active", "head_sha",
		"base_sha", "issue_count", "event_at", "created_at", "updated_at",
	}).AddRow(
		id, "github", "acme", "billing", 7, "9001", "Fix rounding",
		"alice", "", "https://github.com/acme/billing/pull/7", "OPEN", true, headSha,
		"sha-base", 0, now, now, updatedAt,
	)
}

func TestPullRequestRepository_GetByKey(t *testing.T) {
	t.Run("возвращает PR по кортежу идентичности", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPullRequestRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM pull_requests").
			WithArgs("github", "acme", "billing", 7).
			WillReturnRows(pullRequestRows(1, "sha-a", nil))

		pr, err := repo.GetByKey(context.Background(), domain.ProviderGitHub, "acme", "billing", 7)

		require.NoError(t, err)
		assert.Equal(t, 1, pr.ID)
		assert.Equal(t, "sha-a", pr.HeadSha)
		assert.Nil(t, pr.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("неизвестный PR дает NOT_FOUND", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPullRequestRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM pull_requests").
			WithArgs("github", "acme", "billing", 404).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByKey(context.Background(), domain.ProviderGitHub, "acme", "billing", 404)

		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPullRequestRepository_Upsert(t *testing.T) {
	t.Run("вставка нового PR заполняет id и created_at", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPullRequestRepository(db)

		now := time.Now()
		returned := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(5, now, nil)
		mock.ExpectQuery("INSERT INTO pull_requests").
			WithArgs(
				"github", "acme", "billing", 7, "9001", "Fix rounding", "alice",
				"", "https://github.com/acme/billing/pull/7", "OPEN", true,
				"sha-a", "sha-base", sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnRows(returned)

		pr := &domain.PullRequest{
			Provider:     domain.ProviderGitHub,
			Owner:        "acme",
			Repo:         "billing",
			Number:       7,
			ProviderPRID: "9001",
			Title:        "Fix rounding",
			Author:       "alice",
			URL:          "https://github.com/acme/billing/pull/7",
			State:        domain.StateOpen,
			IsActive:     true,
			HeadSha:      "sha-a",
			BaseSha:      "sha-base",
			EventAt:      now,
		}

		err := repo.Upsert(context.Background(), pr)

		require.NoError(t, err)
		assert.Equal(t, 5, pr.ID)
		assert.Nil(t, pr.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("повторный upsert возвращает updated_at", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPullRequestRepository(db)

		created := time.Now().Add(-time.Hour)
		updated := time.Now()
		returned := sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(5, created, updated)
		mock.ExpectQuery("INSERT INTO pull_requests").
			WillReturnRows(returned)

		pr := &domain.PullRequest{
			Provider: domain.ProviderGitHub,
			Owner:    "acme",
			Repo:     "billing",
			Number:   7,
			State:    domain.StateMerged,
			HeadSha:  "sha-b",
		}

		err := repo.Upsert(context.Background(), pr)

		require.NoError(t, err)
		require.NotNil(t, pr.UpdatedAt)
		assert.WithinDuration(t, updated, *pr.UpdatedAt, time.Second)
	})

	t.Run("проигранная гонка с более новой записью перечитывает ее", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewPullRequestRepository(db)

		// DO UPDATE отфильтрован условием по event_at: строк нет,
		// в pr должна попасть запись, победившая в гонке
		mock.ExpectQuery("INSERT INTO pull_requests").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))
		mock.ExpectQuery("SELECT (.+) FROM pull_requests").
			WithArgs("github", "acme", "billing", 7).
			WillReturnRows(pullRequestRows(5, "sha-newer", nil))

		pr := &domain.PullRequest{
			Provider: domain.ProviderGitHub,
			Owner:    "acme",
			Repo:     "billing",
			Number:   7,
			State:    domain.StateOpen,
			IsActive: true,
			HeadSha:  "sha-older",
			EventAt:  time.Now().Add(-time.Hour),
		}

		err := repo.Upsert(context.Background(), pr)

		require.NoError(t, err)
		assert.Equal(t, 5, pr.ID)
		assert.Equal(t, "sha-newer", pr.HeadSha)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
