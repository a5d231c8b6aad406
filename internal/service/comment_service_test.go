package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bagdasarian/pr-insight/internal/config"
	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func metricsConfig() config.MetricsConfig {
	return config.MetricsConfig{
		EffortMinutesPerHour: 60,
		DefaultHourlyRate:    50,
		DefaultMinSeverity:   "Major",
	}
}

func ingestPolicy() domain.ReviewPolicy {
	return domain.ReviewPolicy{
		Repository: &domain.Repository{ID: 1, Slug: "billing", Provider: domain.ProviderGitHub, IsActive: true},
		Workspace: &domain.Workspace{
			ID:          1,
			Slug:        "acme",
			MinSeverity: domain.SeverityMajor,
			HourlyRate:  50,
			EffortWeights: map[domain.Severity]float64{
				domain.SeverityInfo:     1,
				domain.SeverityMinor:    3,
				domain.SeverityMajor:    10,
				domain.SeverityCritical: 20,
				domain.SeverityBlocker:  30,
			},
		},
	}
}

func rawComment(filePath, severity string) domain.RawComment {
	return domain.RawComment{
		FilePath:  filePath,
		LineStart: 10,
		Content:   "issue",
		Severity:  severity,
		Category:  "bug",
	}
}

func newCommentService(
	commentRepo *MockCommentRepository,
	analysisRepo *MockAnalysisRepository,
	prRepo *MockPullRequestRepository,
	policyRepo *MockPolicyRepository,
) CommentService {
	return NewCommentService(commentRepo, analysisRepo, prRepo, policyRepo, metricsConfig(), zap.NewNop().Sugar())
}

func expectRunAndPR(analysisRepo *MockAnalysisRepository, prRepo *MockPullRequestRepository) {
	run := &domain.AnalysisRun{ID: "run-1", PullRequestID: 1, HeadSha: "sha-a", Status: domain.RunCompleted}
	pr := &domain.PullRequest{
		ID: 1, Provider: domain.ProviderGitHub, Owner: "acme", Repo: "billing",
		Number: 7, State: domain.StateOpen, IsActive: true, HeadSha: "sha-a",
	}
	analysisRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
	prRepo.On("GetByID", mock.Anything, 1).Return(pr, nil).Once()
}

func TestCommentService_Ingest(t *testing.T) {
	t.Run("комментарии ниже порога отбрасываются поштучно", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(ingestPolicy(), nil).Once()

		var stored []*domain.Comment
		var storedEffort float64
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(2).([]*domain.Comment)
				storedEffort = args.Get(3).(float64)
			}).Return(nil).Once()

		result, err := svc.Ingest(context.Background(), "run-1", []domain.RawComment{
			rawComment("a.go", "Info"),
			rawComment("b.go", "Minor"),
			rawComment("c.go", "Major"),
			rawComment("d.go", "Critical"),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Accepted)
		assert.Equal(t, 2, result.Rejected)
		require.Len(t, stored, 2)
		assert.Equal(t, domain.SeverityMajor, stored[0].Severity)
		assert.Equal(t, domain.SeverityCritical, stored[1].Severity)
		// 10 за Major + 20 за Critical
		assert.Equal(t, float64(30), storedEffort)
	})

	t.Run("ignore-globs фильтруют по пути файла", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)

		policy := ingestPolicy()
		policy.Repository.IgnoreGlobs = []string{"vendor/**", "**/*_gen.go"}
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(policy, nil).Once()

		var stored []*domain.Comment
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(2).([]*domain.Comment)
			}).Return(nil).Once()

		result, err := svc.Ingest(context.Background(), "run-1", []domain.RawComment{
			rawComment("vendor/lib/a.go", "Blocker"),
			rawComment("internal/api/types_gen.go", "Blocker"),
			rawComment("internal/api/server.go", "Blocker"),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Accepted)
		assert.Equal(t, 2, result.Rejected)
		require.Len(t, stored, 1)
		assert.Equal(t, "internal/api/server.go", stored[0].FilePath)
	})

	t.Run("структурно невалидные записи не роняют батч", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(ingestPolicy(), nil).Once()
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()

		badLineEnd := 3
		invalid := []domain.RawComment{
			{FilePath: "", LineStart: 1, Content: "x", Severity: "Major", Category: "bug"},
			{FilePath: "a.go", LineStart: 0, Content: "x", Severity: "Major", Category: "bug"},
			{FilePath: "a.go", LineStart: 5, LineEnd: &badLineEnd, Content: "x", Severity: "Major", Category: "bug"},
			{FilePath: "a.go", LineStart: 1, Content: "x", Severity: "Huge", Category: "bug"},
			{FilePath: "a.go", LineStart: 1, Content: "", Severity: "Major", Category: "bug"},
		}

		result, err := svc.Ingest(context.Background(), "run-1", append(invalid, rawComment("ok.go", "Blocker")))

		require.NoError(t, err)
		assert.Equal(t, 1, result.Accepted)
		assert.Equal(t, 5, result.Rejected)
	})

	t.Run("регистр серьезности агента нормализуется", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(ingestPolicy(), nil).Once()

		var stored []*domain.Comment
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				stored = args.Get(2).([]*domain.Comment)
			}).Return(nil).Once()

		_, err := svc.Ingest(context.Background(), "run-1", []domain.RawComment{
			rawComment("a.go", "major"),
			rawComment("b.go", "BLOCKER"),
		})

		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, domain.SeverityMajor, stored[0].Severity)
		assert.Equal(t, domain.SeverityBlocker, stored[1].Severity)
	})

	t.Run("порог репозитория переопределяет порог workspace", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)

		policy := ingestPolicy()
		repoMin := domain.SeverityInfo
		policy.Repository.MinSeverity = &repoMin
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(policy, nil).Once()
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()

		result, err := svc.Ingest(context.Background(), "run-1", []domain.RawComment{
			rawComment("a.go", "Info"),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Accepted)
	})

	t.Run("ошибка сохранения батча возвращается как есть", func(t *testing.T) {
		commentRepo := new(MockCommentRepository)
		analysisRepo := new(MockAnalysisRepository)
		prRepo := new(MockPullRequestRepository)
		policyRepo := new(MockPolicyRepository)

		svc := newCommentService(commentRepo, analysisRepo, prRepo, policyRepo)
		expectRunAndPR(analysisRepo, prRepo)
		policyRepo.On("GetReviewPolicy", mock.Anything, domain.ProviderGitHub, "acme", "billing").
			Return(ingestPolicy(), nil).Once()

		storeErr := errors.New("tx failed")
		commentRepo.On("StoreBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storeErr).Once()

		_, err := svc.Ingest(context.Background(), "run-1", []domain.RawComment{rawComment("a.go", "Major")})

		assert.ErrorIs(t, err, storeErr)
	})
}
