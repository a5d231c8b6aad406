package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

// Parser разбирает сырой payload провайдера в каноническое событие.
// Реализации - чистые функции: без I/O и побочных эффектов, одинаковый
// вход всегда дает одинаковый выход.
type Parser interface {
	Parse(eventKey string, payload json.RawMessage) (domain.CanonicalEvent, error)
}

var parsers = map[domain.Provider]Parser{
	domain.ProviderGitHub:    githubParser{},
	domain.ProviderBitbucket: bitbucketParser{},
}

// ForProvider выбирает парсер по тегу провайдера.
func ForProvider(provider domain.Provider) (Parser, error) {
	parser, ok := parsers[provider]
	if !ok {
		return nil, unsupported(fmt.Sprintf("provider %q", provider))
	}
	return parser, nil
}

// Normalize - удобная обертка: выбор парсера и разбор за один вызов.
func Normalize(provider domain.Provider, eventKey string, payload json.RawMessage) (domain.CanonicalEvent, error) {
	parser, err := ForProvider(provider)
	if err != nil {
		return domain.CanonicalEvent{}, err
	}
	return parser.Parse(eventKey, payload)
}

func unsupported(detail string) error {
	return &domain.DomainError{
		Code:    "UNSUPPORTED_EVENT",
		Message: fmt.Sprintf("unsupported provider event: %s", detail),
	}
}

func invalid(detail string) error {
	return &domain.DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("malformed webhook payload: %s", detail),
	}
}
