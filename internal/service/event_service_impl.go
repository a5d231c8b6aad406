package service

import (
	"context"
	"errors"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/bagdasarian/pr-insight/internal/repository"
	"go.uber.org/zap"
)

type eventService struct {
	pullRequestRepo repository.PullRequestRepository
	policyRepo      repository.PolicyRepository
	analysisService AnalysisService
	log             *zap.SugaredLogger
}

// NewEventService создает новый экземпляр EventService
func NewEventService(
	pullRequestRepo repository.PullRequestRepository,
	policyRepo repository.PolicyRepository,
	analysisService AnalysisService,
	log *zap.SugaredLogger,
) EventService {
	return &eventService{
		pullRequestRepo: pullRequestRepo,
		policyRepo:      policyRepo,
		analysisService: analysisService,
		log:             log.Named("service.event"),
	}
}

// HandleEvent - точка входа вебхука после нормализации. Никогда не
// возвращает ошибку на устаревшие и неприменимые события: провайдеры
// агрессивно ретраят, и вебхук обязан быстро подтверждаться.
func (s *eventService) HandleEvent(ctx context.Context, event domain.CanonicalEvent) (*domain.PullRequest, error) {
	policy, err := s.policyRepo.GetReviewPolicy(ctx, event.Provider, event.Owner, event.RepoSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Infow("event for unconnected repository skipped",
				"provider", event.Provider, "owner", event.Owner, "repo", event.RepoSlug)
			return nil, nil
		}
		return nil, err
	}
	if !policy.Repository.IsActive {
		s.log.Infow("event for inactive repository skipped",
			"provider", event.Provider, "owner", event.Owner, "repo", event.RepoSlug)
		return nil, nil
	}

	current, err := s.pullRequestRepo.GetByKey(ctx, event.Provider, event.Owner, event.RepoSlug, event.PRNumber)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	transition := ApplyEvent(current, event)
	if transition.Stale {
		s.log.Infow("stale event discarded",
			"provider", event.Provider, "owner", event.Owner, "repo", event.RepoSlug,
			"pr", event.PRNumber, "type", event.Type, "occurredAt", event.OccurredAt)
		return current, nil
	}

	if err := s.pullRequestRepo.Upsert(ctx, transition.PR); err != nil {
		return nil, err
	}

	if transition.AnalysisCandidate {
		// Дедупликация по ревизии - внутри Trigger: повторный запрос
		// для уже известного headSha вернет существующий запуск.
		if _, err := s.analysisService.Trigger(ctx, transition.PR, policy); err != nil {
			return nil, err
		}
	}

	return transition.PR, nil
}
