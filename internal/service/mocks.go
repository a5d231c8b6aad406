package service

import (
	"context"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPullRequestRepository struct {
	mock.Mock
}

func (m *MockPullRequestRepository) GetByKey(ctx context.Context, provider domain.Provider, owner, repo string, number int) (*domain.PullRequest, error) {
	args := m.Called(ctx, provider, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *MockPullRequestRepository) GetByID(ctx context.Context, id int) (*domain.PullRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *MockPullRequestRepository) Upsert(ctx context.Context, pr *domain.PullRequest) error {
	args := m.Called(ctx, pr)
	return args.Error(0)
}

type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) CreateIfAbsent(ctx context.Context, run *domain.AnalysisRun) (bool, *domain.AnalysisRun, error) {
	args := m.Called(ctx, run)
	if args.Get(1) == nil {
		return args.Bool(0), nil, args.Error(2)
	}
	return args.Bool(0), args.Get(1).(*domain.AnalysisRun), args.Error(2)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisRun), args.Error(1)
}

func (m *MockAnalysisRepository) GetByDedupKey(ctx context.Context, dedupKey string) (*domain.AnalysisRun, error) {
	args := m.Called(ctx, dedupKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisRun), args.Error(1)
}

func (m *MockAnalysisRepository) Complete(ctx context.Context, id string, summary string, modelInfo, usageInfo []byte, completedAt time.Time) error {
	args := m.Called(ctx, id, summary, modelInfo, usageInfo, completedAt)
	return args.Error(0)
}

func (m *MockAnalysisRepository) Fail(ctx context.Context, id string, reason string, completedAt time.Time) error {
	args := m.Called(ctx, id, reason, completedAt)
	return args.Error(0)
}

func (m *MockAnalysisRepository) FailStalled(ctx context.Context, startedBefore time.Time, failedAt time.Time) (int, error) {
	args := m.Called(ctx, startedBefore, failedAt)
	return args.Int(0), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) StoreBatch(ctx context.Context, run *domain.AnalysisRun, comments []*domain.Comment, estimatedEffort float64) error {
	args := m.Called(ctx, run, comments, estimatedEffort)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByRunID(ctx context.Context, runID string) ([]*domain.Comment, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) GetReviewPolicy(ctx context.Context, provider domain.Provider, owner, repo string) (domain.ReviewPolicy, error) {
	args := m.Called(ctx, provider, owner, repo)
	return args.Get(0).(domain.ReviewPolicy), args.Error(1)
}

func (m *MockPolicyRepository) GetWorkspaceBySlug(ctx context.Context, slug string) (*domain.Workspace, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockPolicyRepository) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	args := m.Called(ctx, owner, repo)
	return args.Bool(0), args.Error(1)
}

type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) CountPRsByState(ctx context.Context, filter domain.DashboardFilter) (map[domain.PRState]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.PRState]int), args.Error(1)
}

func (m *MockMetricsRepository) PRStateSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.PRStateBucket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PRStateBucket), args.Error(1)
}

func (m *MockMetricsRepository) CountCommentsBySeverity(ctx context.Context, filter domain.DashboardFilter) (map[domain.Severity]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Severity]int), args.Error(1)
}

func (m *MockMetricsRepository) CountCommentsByCategory(ctx context.Context, filter domain.DashboardFilter) (map[string]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockMetricsRepository) SumCompletedEffort(ctx context.Context, filter domain.DashboardFilter) (float64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockMetricsRepository) CompletedEffortSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.EffortBucket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EffortBucket), args.Error(1)
}

func (m *MockMetricsRepository) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueRow, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.IssueRow), args.Int(1), args.Error(2)
}

func (m *MockMetricsRepository) IssueSeverityTotals(ctx context.Context, filter domain.IssueFilter) (map[domain.Severity]int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Severity]int), args.Error(1)
}

type MockAnalysisAgent struct {
	mock.Mock
}

func (m *MockAnalysisAgent) Submit(ctx context.Context, submission domain.AnalysisSubmission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Ingest(ctx context.Context, runID string, raw []domain.RawComment) (IngestResult, error) {
	args := m.Called(ctx, runID, raw)
	return args.Get(0).(IngestResult), args.Error(1)
}

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Trigger(ctx context.Context, pr *domain.PullRequest, policy domain.ReviewPolicy) (*domain.AnalysisRun, error) {
	args := m.Called(ctx, pr, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisRun), args.Error(1)
}

func (m *MockAnalysisService) HandleCallback(ctx context.Context, runID string, result domain.AnalysisResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *MockAnalysisService) ExpireStalled(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
