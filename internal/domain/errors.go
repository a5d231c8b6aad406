package domain

import "fmt"

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Это позволяет использовать errors.Is()
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	// ErrValidation - некорректный payload вебхука или комментария
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "payload failed validation",
	}

	// ErrStaleEvent - событие старше сохраненного состояния PR
	ErrStaleEvent = &DomainError{
		Code:    "STALE_EVENT",
		Message: "event is older than stored pull request state",
	}

	// ErrUnsupportedEvent - провайдер или тип события не поддерживается
	ErrUnsupportedEvent = &DomainError{
		Code:    "UNSUPPORTED_EVENT",
		Message: "unsupported provider event",
	}

	// ErrAnalysisExists - анализ для этой ревизии уже существует
	// (не ошибка: планировщик возвращает существующий запуск)
	ErrAnalysisExists = &DomainError{
		Code:    "ANALYSIS_EXISTS",
		Message: "analysis run already exists for this revision",
	}

	// ErrStaleCallback - callback ссылается на устаревший или чужой запуск
	ErrStaleCallback = &DomainError{
		Code:    "STALE_CALLBACK",
		Message: "analysis callback is stale and was discarded",
	}

	// ErrExternalAgent - внешний агент сообщил об ошибке
	ErrExternalAgent = &DomainError{
		Code:    "EXTERNAL_AGENT",
		Message: "external analysis agent reported a failure",
	}

	// ErrBadQuery - некорректные параметры запроса дашборда
	ErrBadQuery = &DomainError{
		Code:    "BAD_QUERY",
		Message: "invalid dashboard query parameters",
	}

	// ErrNotFound - ресурс не найден
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
)

// NewNotFoundError создает ошибку NOT_FOUND с дополнительным контекстом
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadQueryError создает ошибку BAD_QUERY с описанием параметра
func NewBadQueryError(detail string) *DomainError {
	return &DomainError{
		Code:    "BAD_QUERY",
		Message: detail,
	}
}
