package service

import (
	"context"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

// StatsService агрегирует накопленные данные для карточек дашборда.
// Все методы валидируют параметры и возвращают ErrBadQuery
// при некорректном фильтре.
type StatsService interface {
	PRAnalysis(ctx context.Context, filter domain.DashboardFilter) (*domain.PRAnalysisCard, error)
	IssueAnalysis(ctx context.Context, filter domain.DashboardFilter) (*domain.IssueAnalysisCard, error)
	// TimeMoneySaved пересчитывает суммарные усилия (в минутах) в часы
	// и деньги по ставке воркспейса.
	TimeMoneySaved(ctx context.Context, filter domain.DashboardFilter) (*domain.TimeMoneyCard, error)
	ListIssues(ctx context.Context, filter domain.IssueFilter) (*domain.IssuePage, error)
}
