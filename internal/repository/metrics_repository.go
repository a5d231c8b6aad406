package repository

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type MetricsRepository interface {
	CountPRsByState(ctx context.Context, filter domain.DashboardFilter) (map[domain.PRState]int, error)
	PRStateSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.PRStateBucket, error)
	CountCommentsBySeverity(ctx context.Context, filter domain.DashboardFilter) (map[domain.Severity]int, error)
	CountCommentsByCategory(ctx context.Context, filter domain.DashboardFilter) (map[string]int, error)
	// SumCompletedEffort суммирует estimated_effort запусков,
	// завершившихся (completed_at) в диапазоне.
	SumCompletedEffort(ctx context.Context, filter domain.DashboardFilter) (float64, error)
	CompletedEffortSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.EffortBucket, error)
	ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueRow, int, error)
	IssueSeverityTotals(ctx context.Context, filter domain.IssueFilter) (map[domain.Severity]int, error)
}
