package domain

import "time"

type PullRequest struct {
	ID           int
	Provider     Provider
	Owner        string
	Repo         string
	Number       int
	ProviderPRID string
	Title        string
	Author       string
	AuthorAvatar string
	URL          string
	State        PRState
	IsActive     bool
	HeadSha      string
	BaseSha      string
	IssueCount   int
	EventAt      time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type PRState string

const (
	StateOpen     PRState = "OPEN"
	StateMerged   PRState = "MERGED"
	StateDeclined PRState = "DECLINED"
)
