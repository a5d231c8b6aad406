package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type bitbucketPayload struct {
	PullRequest struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		Author struct {
			DisplayName string `json:"display_name"`
			Nickname    string `json:"nickname"`
			Links       struct {
				Avatar struct {
					Href string `json:"href"`
				} `json:"avatar"`
			} `json:"links"`
		} `json:"author"`
		Source struct {
			Commit struct {
				Hash string `json:"hash"`
			} `json:"commit"`
		} `json:"source"`
		Destination struct {
			Commit struct {
				Hash string `json:"hash"`
			} `json:"commit"`
		} `json:"destination"`
		Links struct {
			HTML struct {
				Href string `json:"href"`
			} `json:"html"`
		} `json:"links"`
		UpdatedOn time.Time `json:"updated_on"`
	} `json:"pullrequest"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Ключи событий Bitbucket Cloud (заголовок X-Event-Key).
var bitbucketEvents = map[string]domain.EventType{
	"pullrequest:created":    domain.EventCreated,
	"pullrequest:updated":    domain.EventUpdated,
	"pullrequest:approved":   domain.EventApproved,
	"pullrequest:unapproved": domain.EventUnapproved,
	"pullrequest:fulfilled":  domain.EventMerged,
	"pullrequest:rejected":   domain.EventDeclined,
	"pullrequest:deleted":    domain.EventDeleted,
}

type bitbucketParser struct{}

func (bitbucketParser) Parse(eventKey string, payload json.RawMessage) (domain.CanonicalEvent, error) {
	eventType, ok := bitbucketEvents[eventKey]
	if !ok {
		return domain.CanonicalEvent{}, unsupported(fmt.Sprintf("bitbucket event %q", eventKey))
	}

	var body bitbucketPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return domain.CanonicalEvent{}, invalid("bitbucket payload is not valid JSON")
	}

	owner, repo, found := strings.Cut(body.Repository.FullName, "/")
	if !found || body.PullRequest.ID == 0 {
		return domain.CanonicalEvent{}, invalid("bitbucket payload is missing pull request identity")
	}

	actor := body.PullRequest.Author.Nickname
	if actor == "" {
		actor = body.PullRequest.Author.DisplayName
	}

	return domain.CanonicalEvent{
		Provider:    domain.ProviderBitbucket,
		Type:        eventType,
		PRID:        fmt.Sprintf("%d", body.PullRequest.ID),
		PRNumber:    body.PullRequest.ID,
		Owner:       owner,
		RepoSlug:    repo,
		HeadSha:     body.PullRequest.Source.Commit.Hash,
		BaseSha:     body.PullRequest.Destination.Commit.Hash,
		Title:       body.PullRequest.Title,
		Actor:       actor,
		ActorAvatar: body.PullRequest.Author.Links.Avatar.Href,
		URL:         body.PullRequest.Links.HTML.Href,
		OccurredAt:  body.PullRequest.UpdatedOn,
	}, nil
}
