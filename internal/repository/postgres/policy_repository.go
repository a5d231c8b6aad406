package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bagdasarian/pr-insight/internal/domain"
	"github.com/lib/pq"
)

type policyRepository struct {
	executor DBExecutor
}

func NewPolicyRepository(db *sql.DB) *policyRepository {
	return &policyRepository{executor: db}
}

func (r *policyRepository) GetReviewPolicy(ctx context.Context, provider domain.Provider, owner, repo string) (domain.ReviewPolicy, error) {
	query := `
		SELECT r.id, r.workspace_id, r.slug, r.provider, r.is_active,
			r.ignore_globs, r.min_severity,
			w.id, w.slug, w.provider, w.name, w.min_severity, w.hourly_rate,
			w.model, w.api_key,
			w.weight_info, w.weight_minor, w.weight_major, w.weight_critical, w.weight_blocker
		FROM repositories r
		JOIN workspaces w ON r.workspace_id = w.id
		WHERE r.provider = $1 AND w.slug = $2 AND r.slug = $3
	`

	repository := &domain.Repository{}
	workspace := &domain.Workspace{}
	var repoMinSeverity sql.NullString
	var apiKey sql.NullString
	var ignoreGlobs pq.StringArray
	var weightInfo, weightMinor, weightMajor, weightCritical, weightBlocker float64

	err := r.executor.QueryRowContext(ctx, query, string(provider), owner, repo).Scan(
		&repository.ID,
		&repository.WorkspaceID,
		&repository.Slug,
		&repository.Provider,
		&repository.IsActive,
		&ignoreGlobs,
		&repoMinSeverity,
		&workspace.ID,
		&workspace.Slug,
		&workspace.Provider,
		&workspace.Name,
		&workspace.MinSeverity,
		&workspace.HourlyRate,
		&workspace.Model,
		&apiKey,
		&weightInfo,
		&weightMinor,
		&weightMajor,
		&weightCritical,
		&weightBlocker,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewPolicy{}, domain.NewNotFoundError("repository")
		}
		return domain.ReviewPolicy{}, err
	}

	repository.IgnoreGlobs = ignoreGlobs
	if repoMinSeverity.Valid {
		severity := domain.Severity(repoMinSeverity.String)
		repository.MinSeverity = &severity
	}
	if apiKey.Valid {
		workspace.APIKey = &apiKey.String
	}
	workspace.EffortWeights = map[domain.Severity]float64{
		domain.SeverityInfo:     weightInfo,
		domain.SeverityMinor:    weightMinor,
		domain.SeverityMajor:    weightMajor,
		domain.SeverityCritical: weightCritical,
		domain.SeverityBlocker:  weightBlocker,
	}

	return domain.ReviewPolicy{Repository: repository, Workspace: workspace}, nil
}

func (r *policyRepository) GetWorkspaceBySlug(ctx context.Context, slug string) (*domain.Workspace, error) {
	query := `
		SELECT id, slug, provider, name, min_severity, hourly_rate, model, api_key,
			weight_info, weight_minor, weight_major, weight_critical, weight_blocker
		FROM workspaces
		WHERE slug = $1
	`

	workspace := &domain.Workspace{}
	var apiKey sql.NullString
	var weightInfo, weightMinor, weightMajor, weightCritical, weightBlocker float64
	err := r.executor.QueryRowContext(ctx, query, slug).Scan(
		&workspace.ID,
		&workspace.Slug,
		&workspace.Provider,
		&workspace.Name,
		&workspace.MinSeverity,
		&workspace.HourlyRate,
		&workspace.Model,
		&apiKey,
		&weightInfo,
		&weightMinor,
		&weightMajor,
		&weightCritical,
		&weightBlocker,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("workspace")
		}
		return nil, err
	}

	if apiKey.Valid {
		workspace.APIKey = &apiKey.String
	}
	workspace.EffortWeights = map[domain.Severity]float64{
		domain.SeverityInfo:     weightInfo,
		domain.SeverityMinor:    weightMinor,
		domain.SeverityMajor:    weightMajor,
		domain.SeverityCritical: weightCritical,
		domain.SeverityBlocker:  weightBlocker,
	}
	return workspace, nil
}

func (r *policyRepository) RepositoryExists(ctx context.Context, owner, repo string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM repositories r
			JOIN workspaces w ON r.workspace_id = w.id
			WHERE w.slug = $1 AND r.slug = $2
		)
	`

	var exists bool
	if err := r.executor.QueryRowContext(ctx, query, owner, repo).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
