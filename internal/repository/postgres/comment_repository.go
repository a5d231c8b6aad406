package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{db: db}
}

// StoreBatch пишет батч и счетчики в одной транзакции: либо видны все
// пережившие фильтрацию комментарии вместе с обновленными
// potential_issue_count / estimated_effort, либо ничего.
func (r *commentRepository) StoreBatch(ctx context.Context, run *domain.AnalysisRun, comments []*domain.Comment, estimatedEffort float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO analysis_comments (
			analysis_run_id, pull_request_id, owner, repository_slug, file_path,
			line_start, line_end, content, code_snippet, code_snippet_line_start,
			severity, category, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	now := time.Now()
	for _, comment := range comments {
		err := tx.QueryRowContext(
			ctx,
			insertQuery,
			comment.AnalysisRunID,
			comment.PullRequestID,
			comment.Owner,
			comment.RepositorySlug,
			comment.FilePath,
			comment.LineStart,
			comment.LineEnd,
			comment.Content,
			comment.CodeSnippet,
			comment.CodeSnippetLineStart,
			string(comment.Severity),
			comment.Category,
			nullableJSON(comment.Metadata),
			now,
		).Scan(&comment.ID)
		if err != nil {
			return err
		}
		comment.CreatedAt = now
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE analysis_runs SET potential_issue_count = $2, estimated_effort = $3 WHERE id = $1`,
		run.ID,
		len(comments),
		estimatedEffort,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE pull_requests SET issue_count = issue_count + $2 WHERE id = $1`,
		run.PullRequestID,
		len(comments),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *commentRepository) GetByRunID(ctx context.Context, runID string) ([]*domain.Comment, error) {
	query := `
		SELECT id, analysis_run_id, pull_request_id, owner, repository_slug,
			file_path, line_start, line_end, content, code_snippet,
			code_snippet_line_start, severity, category, metadata, created_at
		FROM analysis_comments
		WHERE analysis_run_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment := &domain.Comment{}
		var lineEnd, snippetLineStart sql.NullInt64
		var codeSnippet sql.NullString
		var metadata []byte
		err := rows.Scan(
			&comment.ID,
			&comment.AnalysisRunID,
			&comment.PullRequestID,
			&comment.Owner,
			&comment.RepositorySlug,
			&comment.FilePath,
			&comment.LineStart,
			&lineEnd,
			&comment.Content,
			&codeSnippet,
			&snippetLineStart,
			&comment.Severity,
			&comment.Category,
			&metadata,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if lineEnd.Valid {
			value := int(lineEnd.Int64)
			comment.LineEnd = &value
		}
		if codeSnippet.Valid {
			comment.CodeSnippet = &codeSnippet.String
		}
		if snippetLineStart.Valid {
			value := int(snippetLineStart.Int64)
			comment.CodeSnippetLineStart = &value
		}
		comment.Metadata = metadata
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}
