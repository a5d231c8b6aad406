//go:build integration
// +build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bagdasarian/pr-insight/internal/db"
	"github.com/bagdasarian/pr-insight/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *sql.DB {
	ctx := context.Background()

	// Поднимаем контейнер Postgres через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17.7"),
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	require.NoError(t, database.Ping())

	require.NoError(t, db.Migrate(database, migrationsDir(t)))

	t.Cleanup(func() {
		database.Close()
		require.NoError(t, postgresContainer.Terminate(ctx))
	})

	return database
}

func migrationsDir(t *testing.T) string {
	paths := []string{
		filepath.Join("..", "..", "migrations"),
		"migrations",
		filepath.Join("..", "migrations"),
	}
	for _, path := range paths {
		if _, err := os.Stat(filepath.Join(path, "000001_init.up.sql")); err == nil {
			return path
		}
	}
	t.Fatal("каталог migrations не найден")
	return ""
}

// seedWorkspace создает workspace и подключенный репозиторий,
// возвращает id репозитория.
func seedWorkspace(t *testing.T, database *sql.DB, owner, repo string, ignoreGlobs string) int {
	var workspaceID int
	err := database.QueryRow(
		`INSERT INTO workspaces (slug, provider, name, hourly_rate) VALUES ($1, 'github', $2, 100) RETURNING id`,
		owner, owner,
	).Scan(&workspaceID)
	require.NoError(t, err)

	var repositoryID int
	err = database.QueryRow(
		`INSERT INTO repositories (workspace_id, slug, provider, ignore_globs) VALUES ($1, $2, 'github', $3) RETURNING id`,
		workspaceID, repo, ignoreGlobs,
	).Scan(&repositoryID)
	require.NoError(t, err)
	return repositoryID
}

// capturingAgent собирает отправленные задания вместо реального HTTP.
type capturingAgent struct {
	mu          sync.Mutex
	submissions []domain.AnalysisSubmission
}

func (a *capturingAgent) Submit(_ context.Context, submission domain.AnalysisSubmission) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submissions = append(a.submissions, submission)
	return nil
}

func (a *capturingAgent) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.submissions)
}
