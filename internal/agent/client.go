// Package agent содержит HTTP-клиент внешнего AI-агента.
// Агент принимает задание и асинхронно возвращает результат
// на callback-эндпоинт сервиса.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bagdasarian/pr-insight/internal/config"
	"github.com/bagdasarian/pr-insight/internal/domain"
	"go.uber.org/zap"
)

type Client struct {
	httpClient *http.Client
	url        string
	log        *zap.SugaredLogger
}

func NewClient(cfg config.AgentConfig, log *zap.SugaredLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.SubmitTimeout},
		url:        cfg.URL,
		log:        log.Named("agent.client"),
	}
}

type submitRequest struct {
	AnalysisID  string   `json:"pullRequestAnalysisId"`
	Provider    string   `json:"provider"`
	Owner       string   `json:"owner"`
	Repo        string   `json:"repo"`
	PRNumber    int      `json:"prNumber"`
	PRURL       string   `json:"prUrl"`
	HeadSha     string   `json:"headSha"`
	BaseSha     string   `json:"baseSha"`
	MinSeverity string   `json:"minSeverity"`
	IgnoreGlobs []string `json:"ignoreGlobs,omitempty"`
	Model       string   `json:"model,omitempty"`
	APIKey      string   `json:"apiKey,omitempty"`
}

// Submit ставит ревизию PR в очередь анализа у внешнего агента.
// Ответ с кодом вне 2xx считается ошибкой отправки.
func (c *Client) Submit(ctx context.Context, submission domain.AnalysisSubmission) error {
	body, err := json.Marshal(submitRequest{
		AnalysisID:  submission.Run.ID,
		Provider:    string(submission.PullRequest.Provider),
		Owner:       submission.PullRequest.Owner,
		Repo:        submission.PullRequest.Repo,
		PRNumber:    submission.PullRequest.Number,
		PRURL:       submission.PullRequest.URL,
		HeadSha:     submission.PullRequest.HeadSha,
		BaseSha:     submission.PullRequest.BaseSha,
		MinSeverity: string(submission.MinSeverity),
		IgnoreGlobs: submission.IgnoreGlobs,
		Model:       submission.Model,
		APIKey:      submission.APIKey,
	})
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Тело ответа короткое, читаем целиком для диагностики.
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: agent responded %d: %s", domain.ErrExternalAgent, resp.StatusCode, payload)
	}

	c.log.Debugw("analysis submitted",
		"runID", submission.Run.ID,
		"headSha", submission.PullRequest.HeadSha,
		"took", time.Since(start))
	return nil
}
