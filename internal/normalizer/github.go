package normalizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

type githubPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		ID     int64  `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
		State  string `json:"state"`
		Merged bool   `json:"merged"`
		URL    string `json:"html_url"`
		User   struct {
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user"`
		Head struct {
			Sha string `json:"sha"`
		} `json:"head"`
		Base struct {
			Sha string `json:"sha"`
		} `json:"base"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"pull_request"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	Review struct {
		State string `json:"state"`
	} `json:"review"`
}

type githubParser struct{}

// Parse разбирает события GitHub App: pull_request и pull_request_review.
// eventKey - значение заголовка X-GitHub-Event.
func (githubParser) Parse(eventKey string, payload json.RawMessage) (domain.CanonicalEvent, error) {
	var body githubPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return domain.CanonicalEvent{}, invalid("github payload is not valid JSON")
	}

	var eventType domain.EventType
	switch eventKey {
	case "pull_request":
		switch body.Action {
		case "opened":
			eventType = domain.EventCreated
		case "synchronize", "edited", "reopened":
			eventType = domain.EventUpdated
		case "closed":
			if body.PullRequest.Merged {
				eventType = domain.EventMerged
			} else {
				eventType = domain.EventDeclined
			}
		default:
			return domain.CanonicalEvent{}, unsupported(fmt.Sprintf("github pull_request action %q", body.Action))
		}
	case "pull_request_review":
		switch {
		case body.Action == "submitted" && body.Review.State == "approved":
			eventType = domain.EventApproved
		case body.Action == "dismissed":
			eventType = domain.EventUnapproved
		default:
			return domain.CanonicalEvent{}, unsupported(fmt.Sprintf("github review action %q state %q", body.Action, body.Review.State))
		}
	default:
		return domain.CanonicalEvent{}, unsupported(fmt.Sprintf("github event %q", eventKey))
	}

	if body.PullRequest.Number == 0 || body.Repository.Owner.Login == "" || body.Repository.Name == "" {
		return domain.CanonicalEvent{}, invalid("github payload is missing pull request identity")
	}

	return domain.CanonicalEvent{
		Provider:    domain.ProviderGitHub,
		Type:        eventType,
		PRID:        fmt.Sprintf("%d", body.PullRequest.ID),
		PRNumber:    body.PullRequest.Number,
		Owner:       body.Repository.Owner.Login,
		RepoSlug:    body.Repository.Name,
		HeadSha:     body.PullRequest.Head.Sha,
		BaseSha:     body.PullRequest.Base.Sha,
		Title:       body.PullRequest.Title,
		Actor:       body.PullRequest.User.Login,
		ActorAvatar: body.PullRequest.User.AvatarURL,
		URL:         body.PullRequest.URL,
		OccurredAt:  body.PullRequest.UpdatedAt,
	}, nil
}
