package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Severity - полностью упорядоченный уровень серьезности замечания.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityMinor    Severity = "Minor"
	SeverityMajor    Severity = "Major"
	SeverityCritical Severity = "Critical"
	SeverityBlocker  Severity = "Blocker"
)

var severityRanks = map[Severity]int{
	SeverityInfo:     0,
	SeverityMinor:    1,
	SeverityMajor:    2,
	SeverityCritical: 3,
	SeverityBlocker:  4,
}

// Rank возвращает позицию в порядке Info < Minor < Major < Critical < Blocker.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Valid проверяет, что значение входит в известный набор.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// AtLeast сообщает, что серьезность не ниже порога min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity нормализует строку агента ("major", "Major") к enum.
func ParseSeverity(raw string) (Severity, bool) {
	for severity := range severityRanks {
		if strings.EqualFold(raw, string(severity)) {
			return severity, true
		}
	}
	return "", false
}

// Comment - сохраненное замечание ревью, принадлежит ровно одному AnalysisRun.
// После записи батча никогда не изменяется.
type Comment struct {
	ID                   int
	AnalysisRunID        string
	PullRequestID        int
	Owner                string
	RepositorySlug       string
	FilePath             string
	LineStart            int
	LineEnd              *int
	Content              string
	CodeSnippet          *string
	CodeSnippetLineStart *int
	Severity             Severity
	Category             string
	Metadata             json.RawMessage
	CreatedAt            time.Time
}

// RawComment - замечание из callback-а агента до валидации и фильтрации.
type RawComment struct {
	FilePath             string          `json:"filePath"`
	LineStart            int             `json:"lineStart"`
	LineEnd              *int            `json:"lineEnd,omitempty"`
	Content              string          `json:"content"`
	CodeSnippet          *string         `json:"codeSnippet,omitempty"`
	CodeSnippetLineStart *int            `json:"codeSnippetLineStart,omitempty"`
	Severity             string          `json:"severity"`
	Category             string          `json:"category"`
	Metadata             json.RawMessage `json:"metadata,omitempty"`
}
