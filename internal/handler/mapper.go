package handler

import (
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

func domainPRCardToHTTP(card *domain.PRAnalysisCard) PRAnalysisResponse {
	buckets := make([]PRStateBucketResponse, 0, len(card.GraphChart))
	for _, bucket := range card.GraphChart {
		buckets = append(buckets, PRStateBucketResponse{
			Bucket:   bucket.Bucket,
			Opened:   bucket.Opened,
			Merged:   bucket.Merged,
			Declined: bucket.Declined,
			Total:    bucket.Total,
		})
	}

	return PRAnalysisResponse{
		GraphChart: buckets,
		Opened:     card.Opened,
		Merged:     card.Merged,
		Declined:   card.Declined,
		Total:      card.Total,
	}
}

func domainIssueCardToHTTP(card *domain.IssueAnalysisCard) IssueAnalysisResponse {
	byCategory := card.ByCategory
	if byCategory == nil {
		byCategory = map[string]int{}
	}

	return IssueAnalysisResponse{
		Info:       card.Info,
		Minor:      card.Minor,
		Major:      card.Major,
		Critical:   card.Critical,
		Blocker:    card.Blocker,
		Total:      card.Total,
		ByCategory: byCategory,
	}
}

func domainTimeMoneyToHTTP(card *domain.TimeMoneyCard) TimeMoneySavedResponse {
	buckets := make([]EffortBucketResponse, 0, len(card.GraphChart))
	for _, bucket := range card.GraphChart {
		buckets = append(buckets, EffortBucketResponse{
			Bucket:     bucket.Bucket,
			HoursSaved: bucket.HoursSaved,
		})
	}

	return TimeMoneySavedResponse{
		GraphChart: buckets,
		HoursSaved: card.HoursSaved,
		MoneySaved: card.MoneySaved,
		HourlyRate: card.HourlyRate,
	}
}

func domainIssuePageToHTTP(page *domain.IssuePage) IssuePageResponse {
	docs := make([]IssueResponse, 0, len(page.Docs))
	for _, row := range page.Docs {
		docs = append(docs, IssueResponse{
			ID:          row.CommentID,
			Repository:  row.RepositorySlug,
			FilePath:    row.FilePath,
			LineStart:   row.LineStart,
			LineEnd:     row.LineEnd,
			Content:     row.Content,
			CodeSnippet: row.CodeSnippet,
			Severity:    string(row.Severity),
			Category:    row.Category,
			PRNumber:    row.PRNumber,
			PRTitle:     row.PRTitle,
			PRState:     string(row.PRState),
			PRAuthor:    row.PRAuthor,
			PRURL:       row.PRURL,
			CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		})
	}

	totals := make(map[string]int, len(page.SeverityTotals))
	for severity, count := range page.SeverityTotals {
		totals[string(severity)] = count
	}

	return IssuePageResponse{
		Docs:           docs,
		SeverityTotals: totals,
		TotalDocs:      page.TotalDocs,
		Page:           page.Page,
		Limit:          page.Limit,
		TotalPages:     page.TotalPages,
		HasNextPage:    page.HasNextPage,
		HasPrevPage:    page.HasPrevPage,
	}
}
