//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_CardsAndListing(t *testing.T) {
	database := setupTestDB(t)
	seedWorkspace(t, database, "acme", "billing", "{}")
	s := buildStack(t, database)
	ctx := context.Background()
	now := time.Now()

	// Два PR: один завершает анализ с замечаниями, второй мержится.
	_, err := s.events.HandleEvent(ctx, prEvent(domain.EventCreated, "sha-a", now))
	require.NoError(t, err)
	run := s.agent.submissions[0].Run

	second := prEvent(domain.EventCreated, "sha-x", now)
	second.PRNumber = 8
	second.PRID = "9002"
	_, err = s.events.HandleEvent(ctx, second)
	require.NoError(t, err)
	secondMerged := prEvent(domain.EventMerged, "sha-x", now.Add(time.Minute))
	secondMerged.PRNumber = 8
	secondMerged.PRID = "9002"
	_, err = s.events.HandleEvent(ctx, secondMerged)
	require.NoError(t, err)

	err = s.analysis.HandleCallback(ctx, run.ID, domain.AnalysisResult{
		HeadSha:   "sha-a",
		Completed: true,
		Comments: []domain.RawComment{
			{FilePath: "a.go", LineStart: 1, Content: "x", Severity: "Major", Category: "bug"},
			{FilePath: "b.go", LineStart: 2, Content: "y", Severity: "Blocker", Category: "security"},
		},
	})
	require.NoError(t, err)

	filter := domain.DashboardFilter{
		Owner: "acme",
		From:  now.AddDate(0, 0, -1),
		To:    now.AddDate(0, 0, 1),
	}

	prCard, err := s.stats.PRAnalysis(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, prCard.Opened)
	assert.Equal(t, 1, prCard.Merged)
	assert.Equal(t, 2, prCard.Total)

	issueCard, err := s.stats.IssueAnalysis(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, issueCard.Major)
	assert.Equal(t, 1, issueCard.Blocker)
	assert.Equal(t, 2, issueCard.Total)
	assert.Equal(t, 1, issueCard.ByCategory["security"])

	// 40 минут усилий при ставке 100/час из workspace.
	moneyCard, err := s.stats.TimeMoneySaved(ctx, filter)
	require.NoError(t, err)
	assert.InDelta(t, 0.67, moneyCard.HoursSaved, 0.001)
	assert.InDelta(t, 66.67, moneyCard.MoneySaved, 0.001)
	assert.Equal(t, float64(100), moneyCard.HourlyRate)

	page, err := s.stats.ListIssues(ctx, domain.IssueFilter{
		Owner: "acme",
		From:  filter.From,
		To:    filter.To,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalDocs)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, 7, page.Docs[0].PRNumber)
	assert.Equal(t, 1, page.SeverityTotals[domain.SeverityMajor])

	// Фильтр по серьезности сужает docs, но не сводку.
	filtered, err := s.stats.ListIssues(ctx, domain.IssueFilter{
		Owner:    "acme",
		From:     filter.From,
		To:       filter.To,
		Severity: domain.SeverityBlocker,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.TotalDocs)
	assert.Equal(t, 1, filtered.SeverityTotals[domain.SeverityMajor])

	// Неизвестный репозиторий - ошибка запроса, а не пустой результат.
	badFilter := filter
	badFilter.Repo = "ghost"
	_, err = s.stats.PRAnalysis(ctx, badFilter)
	assert.True(t, errors.Is(err, domain.ErrBadQuery))
}

func TestDashboard_ExpireStalledRuns(t *testing.T) {
	database := setupTestDB(t)
	seedWorkspace(t, database, "acme", "billing", "{}")
	s := buildStack(t, database)
	ctx := context.Background()

	_, err := s.events.HandleEvent(ctx, prEvent(domain.EventCreated, "sha-a", time.Now()))
	require.NoError(t, err)
	run := s.agent.submissions[0].Run

	// Старим запуск ниже порога и прогоняем sweeper.
	_, err = database.Exec(`UPDATE analysis_runs SET started_at = now() - interval '2 hours' WHERE id = $1`, run.ID)
	require.NoError(t, err)

	expired, err := s.analysis.ExpireStalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	var status, failReason string
	require.NoError(t, database.QueryRow(
		`SELECT status, fail_reason FROM analysis_runs WHERE id = $1`, run.ID,
	).Scan(&status, &failReason))
	assert.Equal(t, "FAILED", status)
	assert.Equal(t, domain.FailReasonTimedOut, failReason)

	// Опоздавший callback после тайм-аута отбрасывается.
	err = s.analysis.HandleCallback(ctx, run.ID, domain.AnalysisResult{HeadSha: "sha-a", Completed: true})
	assert.True(t, errors.Is(err, domain.ErrStaleCallback))
}
