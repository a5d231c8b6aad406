package service

import (
	"context"
	"errors"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/bagdasarian/pr-insight/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type analysisService struct {
	analysisRepo   repository.AnalysisRepository
	commentService CommentService
	agent          AnalysisAgent
	maxDuration    time.Duration
	log            *zap.SugaredLogger
}

// NewAnalysisService создает новый экземпляр AnalysisService
func NewAnalysisService(
	analysisRepo repository.AnalysisRepository,
	commentService CommentService,
	agent AnalysisAgent,
	maxDuration time.Duration,
	log *zap.SugaredLogger,
) AnalysisService {
	return &analysisService{
		analysisRepo:   analysisRepo,
		commentService: commentService,
		agent:          agent,
		maxDuration:    maxDuration,
		log:            log.Named("service.analysis"),
	}
}

// Trigger создает запуск атомарно через уникальный dedup_key в БД,
// поэтому корректен при любом числе конкурирующих инстансов сервиса.
func (s *analysisService) Trigger(ctx context.Context, pr *domain.PullRequest, policy domain.ReviewPolicy) (*domain.AnalysisRun, error) {
	run := &domain.AnalysisRun{
		ID:            uuid.NewString(),
		DedupKey:      domain.DedupKey(pr.Provider, pr.Owner, pr.Repo, pr.Number, pr.HeadSha),
		PullRequestID: pr.ID,
		HeadSha:       pr.HeadSha,
		Status:        domain.RunInProgress,
		StartedAt:     time.Now(),
	}

	created, existing, err := s.analysisRepo.CreateIfAbsent(ctx, run)
	if err != nil {
		return nil, err
	}
	if !created {
		s.log.Debugw("analysis run already exists for revision",
			"runID", existing.ID, "headSha", pr.HeadSha)
		return existing, nil
	}

	submission := domain.AnalysisSubmission{
		Run:         run,
		PullRequest: pr,
		MinSeverity: policy.EffectiveMinSeverity(),
		IgnoreGlobs: policy.Repository.IgnoreGlobs,
		Model:       policy.Workspace.Model,
	}
	if policy.Workspace.APIKey != nil {
		submission.APIKey = *policy.Workspace.APIKey
	}

	if err := s.agent.Submit(ctx, submission); err != nil {
		// Ошибка отправки - состояние запуска, а не ошибка вебхука.
		s.log.Errorw("analysis submission failed", "runID", run.ID, "error", err)
		if failErr := s.analysisRepo.Fail(ctx, run.ID, domain.FailReasonSubmit, time.Now()); failErr != nil {
			s.log.Errorw("failed to mark run as failed", "runID", run.ID, "error", failErr)
		}
	}

	return run, nil
}

// HandleCallback идемпотентен против дублей и опоздавшей доставки:
// callback обязан эхом вернуть headSha, под который был отправлен.
func (s *analysisService) HandleCallback(ctx context.Context, runID string, result domain.AnalysisResult) error {
	run, err := s.analysisRepo.GetByID(ctx, runID)
	if err != nil {
		s.log.Infow("callback for unknown analysis run discarded", "runID", runID)
		return domain.ErrStaleCallback
	}

	if run.HeadSha != result.HeadSha {
		s.log.Infow("callback with mismatched headSha discarded",
			"runID", runID, "want", run.HeadSha, "got", result.HeadSha)
		return domain.ErrStaleCallback
	}
	if run.Terminal() {
		s.log.Infow("callback for terminal analysis run discarded",
			"runID", runID, "status", run.Status)
		return domain.ErrStaleCallback
	}

	now := time.Now()
	if !result.Completed {
		reason := result.FailReason
		if reason == "" {
			reason = domain.FailReasonAgent
		}
		if err := s.analysisRepo.Fail(ctx, runID, reason, now); err != nil {
			return s.terminalRace(runID, err)
		}
		s.log.Infow("analysis run failed", "runID", runID, "reason", reason)
		return nil
	}

	if err := s.analysisRepo.Complete(ctx, runID, result.Summary, result.ModelInfo, result.UsageInfo, now); err != nil {
		return s.terminalRace(runID, err)
	}

	ingest, err := s.commentService.Ingest(ctx, runID, result.Comments)
	if err != nil {
		return err
	}
	s.log.Infow("analysis run completed",
		"runID", runID, "accepted", ingest.Accepted, "rejected", ingest.Rejected)
	return nil
}

// terminalRace превращает исход "ноль строк" от Complete/Fail в
// ErrStaleCallback: значит, параллельный дубль callback-а уже завершил
// запуск, и это штатный отброс, а не ошибка.
func (s *analysisService) terminalRace(runID string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Infow("callback lost terminal race, discarded", "runID", runID)
		return domain.ErrStaleCallback
	}
	return err
}

func (s *analysisService) ExpireStalled(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := s.analysisRepo.FailStalled(ctx, now.Add(-s.maxDuration), now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.log.Warnw("stalled analysis runs timed out", "count", expired)
	}
	return expired, nil
}
