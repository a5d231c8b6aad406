package handler

import (
	"encoding/json"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WebhookAckResponse - квитанция о приеме события. Статусы:
// processed, skipped.
type WebhookAckResponse struct {
	Status   string `json:"status"`
	PRNumber int    `json:"prNumber,omitempty"`
	PRState  string `json:"prState,omitempty"`
}

type AnalysisCallbackRequest struct {
	AnalysisID string              `json:"pullRequestAnalysisId"`
	HeadSha    string              `json:"headSha"`
	Completed  bool                `json:"completed"`
	FailReason string              `json:"failReason,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	ModelInfo  json.RawMessage     `json:"modelInfo,omitempty"`
	UsageInfo  json.RawMessage     `json:"usageInfo,omitempty"`
	Comments   []domain.RawComment `json:"comments"`
}

type AnalysisCallbackResponse struct {
	Status string `json:"status"`
}

type PRStateBucketResponse struct {
	Bucket   string `json:"bucket"`
	Opened   int    `json:"opened"`
	Merged   int    `json:"merged"`
	Declined int    `json:"declined"`
	Total    int    `json:"total"`
}

type PRAnalysisResponse struct {
	GraphChart []PRStateBucketResponse `json:"graphChart"`
	Opened     int                     `json:"opened"`
	Merged     int                     `json:"merged"`
	Declined   int                     `json:"declined"`
	Total      int                     `json:"total"`
}

type IssueAnalysisResponse struct {
	Info       int            `json:"info"`
	Minor      int            `json:"minor"`
	Major      int            `json:"major"`
	Critical   int            `json:"critical"`
	Blocker    int            `json:"blocker"`
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

type EffortBucketResponse struct {
	Bucket     string  `json:"bucket"`
	HoursSaved float64 `json:"hoursSaved"`
}

type TimeMoneySavedResponse struct {
	GraphChart []EffortBucketResponse `json:"graphChart"`
	HoursSaved float64                `json:"hoursSaved"`
	MoneySaved float64                `json:"moneySaved"`
	HourlyRate float64                `json:"hourlyRate"`
}

type IssueResponse struct {
	ID          int     `json:"id"`
	Repository  string  `json:"repository"`
	FilePath    string  `json:"filePath"`
	LineStart   int     `json:"lineStart"`
	LineEnd     *int    `json:"lineEnd,omitempty"`
	Content     string  `json:"content"`
	CodeSnippet *string `json:"codeSnippet,omitempty"`
	Severity    string  `json:"severity"`
	Category    string  `json:"category"`
	PRNumber    int     `json:"prNumber"`
	PRTitle     string  `json:"prTitle"`
	PRState     string  `json:"prState"`
	PRAuthor    string  `json:"prAuthor"`
	PRURL       string  `json:"prUrl"`
	CreatedAt   string  `json:"createdAt"`
}

type IssuePageResponse struct {
	Docs           []IssueResponse `json:"docs"`
	SeverityTotals map[string]int  `json:"severityTotals"`
	TotalDocs      int             `json:"totalDocs"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	TotalPages     int             `json:"totalPages"`
	HasNextPage    bool            `json:"hasNextPage"`
	HasPrevPage    bool            `json:"hasPrevPage"`
}
