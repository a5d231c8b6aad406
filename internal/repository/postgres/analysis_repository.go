package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type analysisRepository struct {
	executor DBExecutor
}

func NewAnalysisRepository(db *sql.DB) *analysisRepository {
	return &analysisRepository{executor: db}
}

const analysisColumns = `
	id, dedup_key, pull_request_id, head_sha, status, fail_reason, summary,
	model_info, usage_info, potential_issue_count, estimated_effort,
	started_at, completed_at
`

func scanAnalysisRun(row interface{ Scan(...any) error }) (*domain.AnalysisRun, error) {
	run := &domain.AnalysisRun{}
	var failReason, summary sql.NullString
	var modelInfo, usageInfo []byte
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.DedupKey,
		&run.PullRequestID,
		&run.HeadSha,
		&run.Status,
		&failReason,
		&summary,
		&modelInfo,
		&usageInfo,
		&run.PotentialIssueCount,
		&run.EstimatedEffort,
		&run.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if failReason.Valid {
		run.FailReason = &failReason.String
	}
	if summary.Valid {
		run.Summary = &summary.String
	}
	run.ModelInfo = modelInfo
	run.UsageInfo = usageInfo
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}

// CreateIfAbsent полагается на UNIQUE (dedup_key): при конфликте вставка
// не происходит и возвращается уже существующий запуск. Так гарантия
// "не более одного запуска на ревизию" держится на уровне хранилища,
// а не на координации между инстансами сервиса.
func (r *analysisRepository) CreateIfAbsent(ctx context.Context, run *domain.AnalysisRun) (bool, *domain.AnalysisRun, error) {
	query := `
		INSERT INTO analysis_runs (id, dedup_key, pull_request_id, head_sha, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (dedup_key) DO NOTHING
		RETURNING id
	`

	var insertedID string
	err := r.executor.QueryRowContext(
		ctx,
		query,
		run.ID,
		run.DedupKey,
		run.PullRequestID,
		run.HeadSha,
		string(run.Status),
		run.StartedAt,
	).Scan(&insertedID)
	if err == nil {
		return true, run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, nil, err
	}

	existing, err := r.GetByDedupKey(ctx, run.DedupKey)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analysis_runs
		WHERE id = $1
	`

	run, err := scanAnalysisRun(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("analysis run")
		}
		return nil, err
	}
	return run, nil
}

func (r *analysisRepository) GetByDedupKey(ctx context.Context, dedupKey string) (*domain.AnalysisRun, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analysis_runs
		WHERE dedup_key = $1
	`

	run, err := scanAnalysisRun(r.executor.QueryRowContext(ctx, query, dedupKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("analysis run")
		}
		return nil, err
	}
	return run, nil
}

// Complete переводит запуск в COMPLETED только из INPROGRESS.
func (r *analysisRepository) Complete(ctx context.Context, id string, summary string, modelInfo, usageInfo []byte, completedAt time.Time) error {
	query := `
		UPDATE analysis_runs
		SET status = $2, summary = $3, model_info = $4, usage_info = $5, completed_at = $6
		WHERE id = $1 AND status = $7
	`

	result, err := r.executor.ExecContext(
		ctx,
		query,
		id,
		string(domain.RunCompleted),
		summary,
		nullableJSON(modelInfo),
		nullableJSON(usageInfo),
		completedAt,
		string(domain.RunInProgress),
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *analysisRepository) Fail(ctx context.Context, id string, reason string, completedAt time.Time) error {
	query := `
		UPDATE analysis_runs
		SET status = $2, fail_reason = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.executor.ExecContext(
		ctx,
		query,
		id,
		string(domain.RunFailed),
		reason,
		completedAt,
		string(domain.RunInProgress),
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *analysisRepository) FailStalled(ctx context.Context, startedBefore time.Time, failedAt time.Time) (int, error) {
	query := `
		UPDATE analysis_runs
		SET status = $1, fail_reason = $2, completed_at = $3
		WHERE status = $4 AND started_at < $5
	`

	result, err := r.executor.ExecContext(
		ctx,
		query,
		string(domain.RunFailed),
		domain.FailReasonTimedOut,
		failedAt,
		string(domain.RunInProgress),
		startedBefore,
	)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewNotFoundError("analysis run in progress")
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
