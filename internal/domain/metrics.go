package domain

import "time"

// Breakdown - ось группировки агрегатов дашборда.
type Breakdown string

const (
	BreakdownDay        Breakdown = "day"
	BreakdownWeek       Breakdown = "week"
	BreakdownMonth      Breakdown = "month"
	BreakdownRepository Breakdown = "repository"
)

func (b Breakdown) Valid() bool {
	switch b {
	case BreakdownDay, BreakdownWeek, BreakdownMonth, BreakdownRepository:
		return true
	}
	return false
}

// DashboardFilter - общие параметры запросов дашборда.
type DashboardFilter struct {
	Owner     string
	Repo      string
	From      time.Time
	To        time.Time
	Breakdown Breakdown
}

// PRStateBucket - строка графика: количество PR по состояниям в бакете.
type PRStateBucket struct {
	Bucket   string
	Opened   int
	Merged   int
	Declined int
	Total    int
}

type PRAnalysisCard struct {
	GraphChart []PRStateBucket
	Opened     int
	Merged     int
	Declined   int
	Total      int
}

type IssueAnalysisCard struct {
	Info       int
	Minor      int
	Major      int
	Critical   int
	Blocker    int
	Total      int
	ByCategory map[string]int
}

// EffortBucket - строка графика сэкономленного времени (в часах).
type EffortBucket struct {
	Bucket     string
	HoursSaved float64
}

type TimeMoneyCard struct {
	GraphChart []EffortBucket
	HoursSaved float64
	MoneySaved float64
	HourlyRate float64
}

// IssueFilter - параметры постраничного списка замечаний.
type IssueFilter struct {
	Owner         string
	Repo          string
	From          time.Time
	To            time.Time
	PRUser        string
	PRState       PRState
	Severity      Severity
	PullRequestID int
	Page          int
	Limit         int
}

// IssueRow - замечание вместе с контекстом его PR.
type IssueRow struct {
	CommentID      int
	RepositorySlug string
	FilePath       string
	LineStart      int
	LineEnd        *int
	Content        string
	CodeSnippet    *string
	Severity       Severity
	Category       string
	PRNumber       int
	PRTitle        string
	PRState        PRState
	PRAuthor       string
	PRURL          string
	CreatedAt      time.Time
}

// IssuePage - страница списка замечаний с метаданными пагинации.
type IssuePage struct {
	Docs           []IssueRow
	SeverityTotals map[Severity]int
	TotalDocs      int
	Page           int
	Limit          int
	TotalPages     int
	HasNextPage    bool
	HasPrevPage    bool
}
