package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func analysisPR() *domain.PullRequest {
	return &domain.PullRequest{
		ID:       1,
		Provider: domain.ProviderGitHub,
		Owner:    "acme",
		Repo:     "billing",
		Number:   7,
		State:    domain.StateOpen,
		IsActive: true,
		HeadSha:  "sha-a",
		BaseSha:  "base",
	}
}

func TestAnalysisService_Trigger(t *testing.T) {
	t.Run("новая ревизия создает запуск и отправляет его агенту", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())
		pr := analysisPR()

		mockRepo.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.AnalysisRun")).
			Return(true, nil, nil).Once()
		mockAgent.On("Submit", mock.Anything, mock.MatchedBy(func(s domain.AnalysisSubmission) bool {
			return s.PullRequest.HeadSha == "sha-a" && s.MinSeverity == domain.SeverityMajor
		})).Return(nil).Once()

		run, err := svc.Trigger(context.Background(), pr, activePolicy())

		require.NoError(t, err)
		require.NotNil(t, run)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, domain.RunInProgress, run.Status)
		assert.Equal(t, domain.DedupKey(pr.Provider, pr.Owner, pr.Repo, pr.Number, pr.HeadSha), run.DedupKey)
		mockRepo.AssertExpectations(t)
		mockAgent.AssertExpectations(t)
	})

	t.Run("повторный запрос той же ревизии возвращает существующий запуск", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())
		existing := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}

		mockRepo.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.AnalysisRun")).
			Return(false, existing, nil).Once()

		run, err := svc.Trigger(context.Background(), analysisPR(), activePolicy())

		require.NoError(t, err)
		assert.Equal(t, "run-1", run.ID)
		mockAgent.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("ошибка отправки агенту переводит запуск в FAILED, но не роняет вебхук", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		mockRepo.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*domain.AnalysisRun")).
			Return(true, nil, nil).Once()
		mockAgent.On("Submit", mock.Anything, mock.Anything).
			Return(errors.New("connection refused")).Once()
		mockRepo.On("Fail", mock.Anything, mock.AnythingOfType("string"), domain.FailReasonSubmit, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		run, err := svc.Trigger(context.Background(), analysisPR(), activePolicy())

		require.NoError(t, err)
		require.NotNil(t, run)
		mockRepo.AssertExpectations(t)
	})
}

func TestAnalysisService_HandleCallback(t *testing.T) {
	t.Run("успешный callback завершает запуск и сохраняет комментарии", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}
		comments := []domain.RawComment{{FilePath: "main.go", LineStart: 1, Content: "x", Severity: "Major", Category: "bug"}}

		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
		mockRepo.On("Complete", mock.Anything, "run-1", "looks ok", mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		mockComments.On("Ingest", mock.Anything, "run-1", comments).
			Return(IngestResult{Accepted: 1}, nil).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{
			HeadSha:   "sha-a",
			Completed: true,
			Summary:   "looks ok",
			Comments:  comments,
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockComments.AssertExpectations(t)
	})

	t.Run("callback с чужим headSha отбрасывается", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-b", Status: domain.RunInProgress}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{HeadSha: "sha-a", Completed: true})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrStaleCallback))
		mockRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockComments.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("callback неизвестного запуска отбрасывается", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		mockRepo.On("GetByID", mock.Anything, "ghost").
			Return(nil, domain.NewNotFoundError("analysis run")).Once()

		err := svc.HandleCallback(context.Background(), "ghost", domain.AnalysisResult{HeadSha: "sha-a", Completed: true})

		assert.True(t, errors.Is(err, domain.ErrStaleCallback))
	})

	t.Run("дубль callback-а по терминальному запуску отбрасывается", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunCompleted}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{HeadSha: "sha-a", Completed: true})

		assert.True(t, errors.Is(err, domain.ErrStaleCallback))
	})

	t.Run("проигравший гонку завершения дубль отбрасывается, а не падает", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		// GetByID еще видит INPROGRESS, но параллельный дубль успевает
		// завершить запуск первым: UPDATE не находит строку в INPROGRESS
		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
		mockRepo.On("Complete", mock.Anything, "run-1", "", mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).
			Return(domain.NewNotFoundError("analysis run in progress")).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{HeadSha: "sha-a", Completed: true})

		assert.True(t, errors.Is(err, domain.ErrStaleCallback))
		mockComments.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("гонка при неуспешном callback-е тоже сводится к отбросу", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
		mockRepo.On("Fail", mock.Anything, "run-1", domain.FailReasonAgent, mock.AnythingOfType("time.Time")).
			Return(domain.NewNotFoundError("analysis run in progress")).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{HeadSha: "sha-a", Completed: false})

		assert.True(t, errors.Is(err, domain.ErrStaleCallback))
	})

	t.Run("неуспешный callback переводит запуск в FAILED с причиной агента", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
		mockRepo.On("Fail", mock.Anything, "run-1", "MODEL_OVERLOADED", mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{
			HeadSha:    "sha-a",
			Completed:  false,
			FailReason: "MODEL_OVERLOADED",
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockComments.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("при пустой причине используется AGENT_ERROR", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		run := &domain.AnalysisRun{ID: "run-1", HeadSha: "sha-a", Status: domain.RunInProgress}
		mockRepo.On("GetByID", mock.Anything, "run-1").Return(run, nil).Once()
		mockRepo.On("Fail", mock.Anything, "run-1", domain.FailReasonAgent, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		err := svc.HandleCallback(context.Background(), "run-1", domain.AnalysisResult{HeadSha: "sha-a"})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestAnalysisService_ExpireStalled(t *testing.T) {
	t.Run("зависшие запуски закрываются по порогу", func(t *testing.T) {
		mockRepo := new(MockAnalysisRepository)
		mockComments := new(MockCommentService)
		mockAgent := new(MockAnalysisAgent)

		svc := NewAnalysisService(mockRepo, mockComments, mockAgent, 30*time.Minute, zap.NewNop().Sugar())

		mockRepo.On("FailStalled", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(3, nil).Once()

		expired, err := svc.ExpireStalled(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, expired)
		mockRepo.AssertExpectations(t)
	})
}
