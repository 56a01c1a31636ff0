package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeValidation   ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Authorization errors
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeNotSelf          ErrorCode = "NOT_SELF"

	// Attempt errors
	CodeQuizNotFound             ErrorCode = "QUIZ_NOT_FOUND"
	CodeEmptyAnswer              ErrorCode = "EMPTY_ANSWER"
	CodeInsufficientQuestions    ErrorCode = "INSUFFICIENT_QUESTIONS"
	CodeQuizUnavailable          ErrorCode = "QUIZ_UNAVAILABLE"
	CodeAttemptPersistenceFailed ErrorCode = "ATTEMPT_PERSISTENCE_FAILED"

	// Export errors
	CodeInvalidExportFormat ErrorCode = "INVALID_EXPORT_FORMAT"
	CodeExportFailed        ErrorCode = "EXPORT_FAILED"

	// Dependency errors
	CodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Cause   error             `json:"-"`
	Context map[string]string `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Context map[string]string `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a key/value pair that is rendered in error responses.
func (e *DomainError) WithContext(key, value string) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewPermissionDeniedError(message string) *DomainError {
	return NewError(CodePermissionDenied, message, nil)
}

func NewNotSelfError() *DomainError {
	return NewError(CodeNotSelf, "you can only access your own results", nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewEmptyAnswerError() *DomainError {
	return NewError(CodeEmptyAnswer, "at least one answer is required", nil)
}

func NewInsufficientQuestionsError(quizID string, count int) *DomainError {
	return NewError(CodeInsufficientQuestions,
		fmt.Sprintf("quiz %s has %d questions, at least %d are required", quizID, count, MinQuestionsPerQuiz), nil)
}

func NewQuizUnavailableError(message string) *DomainError {
	return NewError(CodeQuizUnavailable, message, nil)
}

func NewAttemptPersistenceError(cause error) *DomainError {
	return NewError(CodeAttemptPersistenceFailed, "failed to persist quiz result", cause)
}

func NewInvalidExportFormatError(format string) *DomainError {
	return NewError(CodeInvalidExportFormat, fmt.Sprintf("unsupported export format: %s", format), nil)
}

func NewExportFailedError(message string, cause error) *DomainError {
	return NewError(CodeExportFailed, message, cause)
}

func NewDependencyError(message string, cause error) *DomainError {
	return NewError(CodeDependencyUnavailable, message, cause)
}

// HasCode reports whether err is a DomainError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by request validators and rendered as a 400.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	return "validation failed: " + v[0].Error()
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: "invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max), Value: value}
}
