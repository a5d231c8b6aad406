package domain

import "time"

type Provider string

const (
	ProviderGitHub    Provider = "github"
	ProviderBitbucket Provider = "bitbucket"
)

type EventType string

const (
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventApproved   EventType = "approved"
	EventUnapproved EventType = "unapproved"
	EventMerged     EventType = "merged"
	EventDeclined   EventType = "declined"
	EventDeleted    EventType = "deleted"
)

// CanonicalEvent - провайдеро-независимое представление webhook-события.
// Дополнительные поля (Title, Actor и т.д.) денормализуются в PullRequest.
type CanonicalEvent struct {
	Provider    Provider
	Type        EventType
	PRID        string
	PRNumber    int
	Owner       string
	RepoSlug    string
	HeadSha     string
	BaseSha     string
	Title       string
	Actor       string
	ActorAvatar string
	URL         string
	OccurredAt  time.Time
}
