package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type metricsRepository struct {
	executor DBExecutor
}

func NewMetricsRepository(db *sql.DB) *metricsRepository {
	return &metricsRepository{executor: db}
}

// bucketExpr дает выражение группировки по оси breakdown.
// repository группирует по slug, остальные оси - по date_trunc.
// Временные колонки приводятся к UTC: ключи бакетов обязаны
// совпадать с ключами, которые сервис генерирует для зеро-филла,
// независимо от timezone базы.
func bucketExpr(breakdown domain.Breakdown, repoColumn, timeColumn string) string {
	switch breakdown {
	case domain.BreakdownRepository:
		return repoColumn
	case domain.BreakdownMonth:
		return fmt.Sprintf("to_char(date_trunc('month', %s AT TIME ZONE 'UTC'), 'YYYY-MM')", timeColumn)
	case domain.BreakdownWeek:
		return fmt.Sprintf("to_char(date_trunc('week', %s AT TIME ZONE 'UTC'), 'YYYY-MM-DD')", timeColumn)
	default:
		return fmt.Sprintf("to_char(date_trunc('day', %s AT TIME ZONE 'UTC'), 'YYYY-MM-DD')", timeColumn)
	}
}

func (r *metricsRepository) CountPRsByState(ctx context.Context, filter domain.DashboardFilter) (map[domain.PRState]int, error) {
	query := `
		SELECT state, COUNT(*)
		FROM pull_requests
		WHERE owner = $1 AND created_at >= $2 AND created_at <= $3
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND repo = $4"
		args = append(args, filter.Repo)
	}
	query += " GROUP BY state"

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.PRState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[domain.PRState(state)] = count
	}
	return counts, rows.Err()
}

func (r *metricsRepository) PRStateSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.PRStateBucket, error) {
	query := `
		SELECT ` + bucketExpr(filter.Breakdown, "repo", "created_at") + ` AS bucket,
			COUNT(*) FILTER (WHERE state = 'OPEN') AS opened,
			COUNT(*) FILTER (WHERE state = 'MERGED') AS merged,
			COUNT(*) FILTER (WHERE state = 'DECLINED') AS declined,
			COUNT(*) AS total
		FROM pull_requests
		WHERE owner = $1 AND created_at >= $2 AND created_at <= $3
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND repo = $4"
		args = append(args, filter.Repo)
	}
	query += " GROUP BY bucket ORDER BY bucket"

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.PRStateBucket
	for rows.Next() {
		var bucket domain.PRStateBucket
		if err := rows.Scan(&bucket.Bucket, &bucket.Opened, &bucket.Merged, &bucket.Declined, &bucket.Total); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

func (r *metricsRepository) CountCommentsBySeverity(ctx context.Context, filter domain.DashboardFilter) (map[domain.Severity]int, error) {
	query := `
		SELECT severity, COUNT(*)
		FROM analysis_comments
		WHERE owner = $1 AND created_at >= $2 AND created_at <= $3
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND repository_slug = $4"
		args = append(args, filter.Repo)
	}
	query += " GROUP BY severity"

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Severity]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		counts[domain.Severity(severity)] = count
	}
	return counts, rows.Err()
}

func (r *metricsRepository) CountCommentsByCategory(ctx context.Context, filter domain.DashboardFilter) (map[string]int, error) {
	query := `
		SELECT category, COUNT(*)
		FROM analysis_comments
		WHERE owner = $1 AND created_at >= $2 AND created_at <= $3
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND repository_slug = $4"
		args = append(args, filter.Repo)
	}
	query += " GROUP BY category"

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func (r *metricsRepository) SumCompletedEffort(ctx context.Context, filter domain.DashboardFilter) (float64, error) {
	query := `
		SELECT COALESCE(SUM(ar.estimated_effort), 0)
		FROM analysis_runs ar
		JOIN pull_requests pr ON ar.pull_request_id = pr.id
		WHERE ar.status = 'COMPLETED'
			AND ar.completed_at >= $2 AND ar.completed_at <= $3
			AND pr.owner = $1
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND pr.repo = $4"
		args = append(args, filter.Repo)
	}

	var total float64
	if err := r.executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *metricsRepository) CompletedEffortSeries(ctx context.Context, filter domain.DashboardFilter) ([]domain.EffortBucket, error) {
	query := `
		SELECT ` + bucketExpr(filter.Breakdown, "pr.repo", "ar.completed_at") + ` AS bucket,
			COALESCE(SUM(ar.estimated_effort), 0)
		FROM analysis_runs ar
		JOIN pull_requests pr ON ar.pull_request_id = pr.id
		WHERE ar.status = 'COMPLETED'
			AND ar.completed_at >= $2 AND ar.completed_at <= $3
			AND pr.owner = $1
	`
	args := []any{filter.Owner, filter.From, filter.To}
	if filter.Repo != "" {
		query += " AND pr.repo = $4"
		args = append(args, filter.Repo)
	}
	query += " GROUP BY bucket ORDER BY bucket"

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []domain.EffortBucket
	for rows.Next() {
		var bucket domain.EffortBucket
		if err := rows.Scan(&bucket.Bucket, &bucket.HoursSaved); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

// issueWhere собирает условия фильтрации списка замечаний.
// includeSeverity=false нужен для сводки по серьезности, которая
// считается без фильтра severity.
func issueWhere(filter domain.IssueFilter, includeSeverity bool) (string, []any) {
	clauses := []string{"c.owner = $1", "c.created_at >= $2", "c.created_at <= $3"}
	args := []any{filter.Owner, filter.From, filter.To}

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Repo != "" {
		add("c.repository_slug = $%d", filter.Repo)
	}
	if filter.PRUser != "" {
		add("pr.author = $%d", filter.PRUser)
	}
	if filter.PRState != "" {
		add("pr.state = $%d", string(filter.PRState))
	}
	if filter.PullRequestID != 0 {
		add("c.pull_request_id = $%d", filter.PullRequestID)
	}
	if includeSeverity && filter.Severity != "" {
		add("c.severity = $%d", string(filter.Severity))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *metricsRepository) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueRow, int, error) {
	where, args := issueWhere(filter, true)

	countQuery := `
		SELECT COUNT(*)
		FROM analysis_comments c
		JOIN pull_requests pr ON c.pull_request_id = pr.id
		WHERE ` + where

	var totalDocs int
	if err := r.executor.QueryRowContext(ctx, countQuery, args...).Scan(&totalDocs); err != nil {
		return nil, 0, err
	}

	// Сортировка (created_at DESC, id) дает стабильную границу страниц
	// даже при конкурентной записи новых батчей.
	listQuery := fmt.Sprintf(`
		SELECT c.id, c.repository_slug, c.file_path, c.line_start, c.line_end,
			c.content, c.code_snippet, c.severity, c.category,
			pr.pr_number, pr.title, pr.state, pr.author, pr.url, c.created_at
		FROM analysis_comments c
		JOIN pull_requests pr ON c.pull_request_id = pr.id
		WHERE `+where+`
		ORDER BY c.created_at DESC, c.id
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.executor.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var issues []domain.IssueRow
	for rows.Next() {
		var issue domain.IssueRow
		var lineEnd sql.NullInt64
		var codeSnippet sql.NullString
		err := rows.Scan(
			&issue.CommentID,
			&issue.RepositorySlug,
			&issue.FilePath,
			&issue.LineStart,
			&lineEnd,
			&issue.Content,
			&codeSnippet,
			&issue.Severity,
			&issue.Category,
			&issue.PRNumber,
			&issue.PRTitle,
			&issue.PRState,
			&issue.PRAuthor,
			&issue.PRURL,
			&issue.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		if lineEnd.Valid {
			value := int(lineEnd.Int64)
			issue.LineEnd = &value
		}
		if codeSnippet.Valid {
			issue.CodeSnippet = &codeSnippet.String
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return issues, totalDocs, nil
}

func (r *metricsRepository) IssueSeverityTotals(ctx context.Context, filter domain.IssueFilter) (map[domain.Severity]int, error) {
	where, args := issueWhere(filter, false)

	query := `
		SELECT c.severity, COUNT(*)
		FROM analysis_comments c
		JOIN pull_requests pr ON c.pull_request_id = pr.id
		WHERE ` + where + `
		GROUP BY c.severity
	`

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[domain.Severity]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		totals[domain.Severity(severity)] = count
	}
	return totals, rows.Err()
}
