package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bagdasarian/pr-insight/internal/config"
	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/bagdasarian/pr-insight/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultRangeDays  = 30
	defaultIssueLimit = 20
	maxIssueLimit     = 100
)

type statsService struct {
	metricsRepo repository.MetricsRepository
	policyRepo  repository.PolicyRepository
	cfg         config.MetricsConfig
	log         *zap.SugaredLogger
}

// NewStatsService создает новый экземпляр StatsService
func NewStatsService(
	metricsRepo repository.MetricsRepository,
	policyRepo repository.PolicyRepository,
	cfg config.MetricsConfig,
	log *zap.SugaredLogger,
) StatsService {
	return &statsService{
		metricsRepo: metricsRepo,
		policyRepo:  policyRepo,
		cfg:         cfg,
		log:         log.Named("service.stats"),
	}
}

func (s *statsService) PRAnalysis(ctx context.Context, filter domain.DashboardFilter) (*domain.PRAnalysisCard, error) {
	filter, err := s.normalizeFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := s.metricsRepo.CountPRsByState(ctx, filter)
	if err != nil {
		return nil, err
	}
	series, err := s.metricsRepo.PRStateSeries(ctx, filter)
	if err != nil {
		return nil, err
	}

	card := &domain.PRAnalysisCard{
		GraphChart: fillPRBuckets(series, filter),
		Opened:     counts[domain.StateOpen],
		Merged:     counts[domain.StateMerged],
		Declined:   counts[domain.StateDeclined],
	}
	card.Total = card.Opened + card.Merged + card.Declined
	return card, nil
}

func (s *statsService) IssueAnalysis(ctx context.Context, filter domain.DashboardFilter) (*domain.IssueAnalysisCard, error) {
	filter, err := s.normalizeFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	bySeverity, err := s.metricsRepo.CountCommentsBySeverity(ctx, filter)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.metricsRepo.CountCommentsByCategory(ctx, filter)
	if err != nil {
		return nil, err
	}

	card := &domain.IssueAnalysisCard{
		Info:       bySeverity[domain.SeverityInfo],
		Minor:      bySeverity[domain.SeverityMinor],
		Major:      bySeverity[domain.SeverityMajor],
		Critical:   bySeverity[domain.SeverityCritical],
		Blocker:    bySeverity[domain.SeverityBlocker],
		ByCategory: byCategory,
	}
	card.Total = card.Info + card.Minor + card.Major + card.Critical + card.Blocker
	return card, nil
}

func (s *statsService) TimeMoneySaved(ctx context.Context, filter domain.DashboardFilter) (*domain.TimeMoneyCard, error) {
	filter, err := s.normalizeFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalMinutes, err := s.metricsRepo.SumCompletedEffort(ctx, filter)
	if err != nil {
		return nil, err
	}
	series, err := s.metricsRepo.CompletedEffortSeries(ctx, filter)
	if err != nil {
		return nil, err
	}

	rate := s.hourlyRate(ctx, filter.Owner)
	hours := totalMinutes / s.cfg.EffortMinutesPerHour

	for i := range series {
		series[i].HoursSaved = round2(series[i].HoursSaved / s.cfg.EffortMinutesPerHour)
	}

	return &domain.TimeMoneyCard{
		GraphChart: fillEffortBuckets(series, filter),
		HoursSaved: round2(hours),
		MoneySaved: round2(hours * rate),
		HourlyRate: rate,
	}, nil
}

func (s *statsService) ListIssues(ctx context.Context, filter domain.IssueFilter) (*domain.IssuePage, error) {
	filter, err := s.normalizeIssueFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	docs, total, err := s.metricsRepo.ListIssues(ctx, filter)
	if err != nil {
		return nil, err
	}
	totals, err := s.metricsRepo.IssueSeverityTotals(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	return &domain.IssuePage{
		Docs:           docs,
		SeverityTotals: totals,
		TotalDocs:      total,
		Page:           filter.Page,
		Limit:          filter.Limit,
		TotalPages:     totalPages,
		HasNextPage:    filter.Page < totalPages,
		HasPrevPage:    filter.Page > 1,
	}, nil
}

// normalizeFilter подставляет дефолтный диапазон (последние 30 дней)
// и проверяет владельца, репозиторий и ось группировки.
func (s *statsService) normalizeFilter(ctx context.Context, filter domain.DashboardFilter) (domain.DashboardFilter, error) {
	if filter.Owner == "" {
		return filter, domain.NewBadQueryError("owner is required")
	}
	if filter.To.IsZero() {
		filter.To = time.Now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, 0, -defaultRangeDays)
	}
	if filter.From.After(filter.To) {
		return filter, domain.NewBadQueryError("from must not be after to")
	}
	if filter.Breakdown == "" {
		filter.Breakdown = domain.BreakdownDay
	}
	if !filter.Breakdown.Valid() {
		return filter, domain.NewBadQueryError(fmt.Sprintf("unknown breakdown %q", filter.Breakdown))
	}
	if err := s.checkRepoKnown(ctx, filter.Owner, filter.Repo); err != nil {
		return filter, err
	}
	return filter, nil
}

func (s *statsService) normalizeIssueFilter(ctx context.Context, filter domain.IssueFilter) (domain.IssueFilter, error) {
	if filter.Owner == "" {
		return filter, domain.NewBadQueryError("owner is required")
	}
	if filter.To.IsZero() {
		filter.To = time.Now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, 0, -defaultRangeDays)
	}
	if filter.From.After(filter.To) {
		return filter, domain.NewBadQueryError("from must not be after to")
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return filter, domain.NewBadQueryError(fmt.Sprintf("unknown severity %q", filter.Severity))
	}
	if filter.PRState != "" {
		switch filter.PRState {
		case domain.StateOpen, domain.StateMerged, domain.StateDeclined:
		default:
			return filter, domain.NewBadQueryError(fmt.Sprintf("unknown pull request state %q", filter.PRState))
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultIssueLimit
	}
	if filter.Limit > maxIssueLimit {
		filter.Limit = maxIssueLimit
	}
	if err := s.checkRepoKnown(ctx, filter.Owner, filter.Repo); err != nil {
		return filter, err
	}
	return filter, nil
}

func (s *statsService) checkRepoKnown(ctx context.Context, owner, repo string) error {
	if repo == "" {
		return nil
	}
	exists, err := s.policyRepo.RepositoryExists(ctx, owner, repo)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewBadQueryError(fmt.Sprintf("unknown repository %q", repo))
	}
	return nil
}

// hourlyRate берет ставку воркспейса, а при его отсутствии -
// дефолт из конфигурации.
func (s *statsService) hourlyRate(ctx context.Context, owner string) float64 {
	workspace, err := s.policyRepo.GetWorkspaceBySlug(ctx, owner)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warnw("failed to load workspace rate, using default",
				"owner", owner, "error", err)
		}
		return s.cfg.DefaultHourlyRate
	}
	return workspace.HourlyRate
}

// fillPRBuckets достраивает пустые бакеты временного ряда,
// чтобы график не имел дыр между точками с данными.
func fillPRBuckets(series []domain.PRStateBucket, filter domain.DashboardFilter) []domain.PRStateBucket {
	if filter.Breakdown == domain.BreakdownRepository {
		if series == nil {
			series = []domain.PRStateBucket{}
		}
		return series
	}

	byKey := make(map[string]domain.PRStateBucket, len(series))
	for _, bucket := range series {
		byKey[bucket.Bucket] = bucket
	}

	keys := bucketKeys(filter.From, filter.To, filter.Breakdown)
	filled := make([]domain.PRStateBucket, 0, len(keys))
	for _, key := range keys {
		if bucket, ok := byKey[key]; ok {
			filled = append(filled, bucket)
			continue
		}
		filled = append(filled, domain.PRStateBucket{Bucket: key})
	}
	return filled
}

func fillEffortBuckets(series []domain.EffortBucket, filter domain.DashboardFilter) []domain.EffortBucket {
	if filter.Breakdown == domain.BreakdownRepository {
		if series == nil {
			series = []domain.EffortBucket{}
		}
		return series
	}

	byKey := make(map[string]domain.EffortBucket, len(series))
	for _, bucket := range series {
		byKey[bucket.Bucket] = bucket
	}

	keys := bucketKeys(filter.From, filter.To, filter.Breakdown)
	filled := make([]domain.EffortBucket, 0, len(keys))
	for _, key := range keys {
		if bucket, ok := byKey[key]; ok {
			filled = append(filled, bucket)
			continue
		}
		filled = append(filled, domain.EffortBucket{Bucket: key})
	}
	return filled
}

// bucketKeys перечисляет подряд все ключи бакетов диапазона
// в том же формате, что выдает date_trunc/to_char в запросах.
// Границы приводятся к UTC, как и временные колонки в SQL: иначе
// ключи краевых бакетов разойдутся и точки выпадут из графика.
func bucketKeys(from, to time.Time, breakdown domain.Breakdown) []string {
	from = from.UTC()
	to = to.UTC()

	var keys []string
	switch breakdown {
	case domain.BreakdownMonth:
		cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
		for !cursor.After(to) {
			keys = append(keys, cursor.Format("2006-01"))
			cursor = cursor.AddDate(0, 1, 0)
		}
	case domain.BreakdownWeek:
		cursor := truncateToMonday(from)
		for !cursor.After(to) {
			keys = append(keys, cursor.Format("2006-01-02"))
			cursor = cursor.AddDate(0, 0, 7)
		}
	default:
		cursor := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
		for !cursor.After(to) {
			keys = append(keys, cursor.Format("2006-01-02"))
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return keys
}

func truncateToMonday(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
