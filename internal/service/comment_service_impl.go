package service

import (
	"context"
	"errors"

	"github.com/bagdasarian/pr-insight/internal/config"
	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/bagdasarian/pr-insight/internal/repository"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

type commentService struct {
	commentRepo     repository.CommentRepository
	analysisRepo    repository.AnalysisRepository
	pullRequestRepo repository.PullRequestRepository
	policyRepo      repository.PolicyRepository
	cfg             config.MetricsConfig
	log             *zap.SugaredLogger
}

// NewCommentService создает новый экземпляр CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	analysisRepo repository.AnalysisRepository,
	pullRequestRepo repository.PullRequestRepository,
	policyRepo repository.PolicyRepository,
	cfg config.MetricsConfig,
	log *zap.SugaredLogger,
) CommentService {
	return &commentService{
		commentRepo:     commentRepo,
		analysisRepo:    analysisRepo,
		pullRequestRepo: pullRequestRepo,
		policyRepo:      policyRepo,
		cfg:             cfg,
		log:             log.Named("service.comment"),
	}
}

func (s *commentService) Ingest(ctx context.Context, runID string, raw []domain.RawComment) (IngestResult, error) {
	run, err := s.analysisRepo.GetByID(ctx, runID)
	if err != nil {
		return IngestResult{}, err
	}

	pr, err := s.pullRequestRepo.GetByID(ctx, run.PullRequestID)
	if err != nil {
		return IngestResult{}, err
	}

	policy, err := s.policyRepo.GetReviewPolicy(ctx, pr.Provider, pr.Owner, pr.Repo)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return IngestResult{}, err
		}
		// Репозиторий успели отключить: фильтруем по дефолтам.
		s.log.Warnw("repository policy missing, using defaults",
			"owner", pr.Owner, "repo", pr.Repo)
		policy = s.defaultPolicy()
	}

	minSeverity := policy.EffectiveMinSeverity()
	var result IngestResult
	var accepted []*domain.Comment
	var effort float64

	for _, comment := range raw {
		severity, ok := validateComment(comment)
		if !ok {
			result.Rejected++
			continue
		}
		if matchesIgnore(policy.Repository.IgnoreGlobs, comment.FilePath) {
			result.Rejected++
			continue
		}
		if !severity.AtLeast(minSeverity) {
			result.Rejected++
			continue
		}

		accepted = append(accepted, &domain.Comment{
			AnalysisRunID:        run.ID,
			PullRequestID:        pr.ID,
			Owner:                pr.Owner,
			RepositorySlug:       pr.Repo,
			FilePath:             comment.FilePath,
			LineStart:            comment.LineStart,
			LineEnd:              comment.LineEnd,
			Content:              comment.Content,
			CodeSnippet:          comment.CodeSnippet,
			CodeSnippetLineStart: comment.CodeSnippetLineStart,
			Severity:             severity,
			Category:             comment.Category,
			Metadata:             comment.Metadata,
		})
		effort += policy.EffortWeight(severity)
	}

	if err := s.commentRepo.StoreBatch(ctx, run, accepted, effort); err != nil {
		return IngestResult{}, err
	}

	result.Accepted = len(accepted)
	return result, nil
}

func (s *commentService) defaultPolicy() domain.ReviewPolicy {
	return domain.ReviewPolicy{
		Repository: &domain.Repository{IsActive: true},
		Workspace: &domain.Workspace{
			MinSeverity: domain.Severity(s.cfg.DefaultMinSeverity),
			HourlyRate:  s.cfg.DefaultHourlyRate,
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

// validateComment - структурная проверка одной записи агента.
func validateComment(comment domain.RawComment) (domain.Severity, bool) {
	if comment.FilePath == "" || comment.Content == "" || comment.Category == "" {
		return "", false
	}
	if comment.LineStart <= 0 {
		return "", false
	}
	if comment.LineEnd != nil && *comment.LineEnd < comment.LineStart {
		return "", false
	}
	severity, ok := domain.ParseSeverity(comment.Severity)
	if !ok {
		return "", false
	}
	return severity, true
}

func matchesIgnore(globs []string, filePath string) bool {
	for _, glob := range globs {
		if ok, err := doublestar.Match(glob, filePath); err == nil && ok {
			return true
		}
	}
	return false
}
