package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

type RunStatus string

const (
	RunInProgress RunStatus = "INPROGRESS"
	RunCompleted  RunStatus = "COMPLETED"
	RunFailed     RunStatus = "FAILED"
)

// Причины перевода анализа в FAILED.
const (
	FailReasonAgent    = "AGENT_ERROR"
	FailReasonSubmit   = "SUBMIT_FAILED"
	FailReasonTimedOut = "TIMED_OUT"
)

// AnalysisRun - один запуск анализа для конкретной ревизии (headSha) PR.
// После перехода в терминальный статус запись не изменяется.
type AnalysisRun struct {
	ID                  string
	DedupKey            string
	PullRequestID       int
	HeadSha             string
	Status              RunStatus
	FailReason          *string
	Summary             *string
	ModelInfo           json.RawMessage
	UsageInfo           json.RawMessage
	PotentialIssueCount int
	EstimatedEffort     float64
	StartedAt           time.Time
	CompletedAt         *time.Time
}

// Terminal сообщает, достиг ли запуск конечного статуса.
func (r *AnalysisRun) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// DedupKey вычисляет ключ дедупликации по кортежу
// (provider, owner, repo, prNumber, headSha). Уникальность ключа
// обеспечивается constraint-ом в БД, а не блокировкой в процессе.
func DedupKey(provider Provider, owner, repo string, prNumber int, headSha string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d|%s", provider, owner, repo, prNumber, headSha)))
	return hex.EncodeToString(sum[:])
}

// AnalysisSubmission - снимок PR и политики, отправляемый AI-агенту.
type AnalysisSubmission struct {
	Run         *AnalysisRun
	PullRequest *PullRequest
	MinSeverity Severity
	IgnoreGlobs []string
	Model       string
	APIKey      string
}

// AnalysisResult - содержимое callback-а от AI-агента.
type AnalysisResult struct {
	HeadSha    string
	Completed  bool
	FailReason string
	Summary    string
	ModelInfo  json.RawMessage
	UsageInfo  json.RawMessage
	Comments   []RawComment
}
