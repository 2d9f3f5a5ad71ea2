package utils

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultErrorMessage is returned when a failure carries no usable message.
const DefaultErrorMessage = "Something went wrong."

type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindExtractionParse ErrorKind = "extraction_parse"
	KindExternalService ErrorKind = "external_service"
	KindExternalTimeout ErrorKind = "external_timeout"
	KindInternal        ErrorKind = "internal"
)

// AppError is an error that knows how it should be surfaced over HTTP.
type AppError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Kind:       KindInvalidInput,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Kind:       KindInternal,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
	}
}

// NewInvalidInputError reports a missing or unusable request payload.
func NewInvalidInputError(message string) *AppError {
	return NewBadRequestError(message)
}

// NewExtractionParseError reports a model reply that did not yield the expected JSON object.
func NewExtractionParseError(message string, cause error) *AppError {
	return &AppError{
		Kind:       KindExtractionParse,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        cause,
	}
}

// NewExternalServiceError wraps a failed model call. The cause's text becomes the
// client-facing message.
func NewExternalServiceError(cause error) *AppError {
	message := DefaultErrorMessage
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	return &AppError{
		Kind:       KindExternalService,
		StatusCode: http.StatusInternalServerError,
		Message:    message,
		Err:        cause,
	}
}

func NewExternalTimeoutError(timeout time.Duration, cause error) *AppError {
	return &AppError{
		Kind:       KindExternalTimeout,
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("The extraction model did not respond within %s.", timeout),
		Err:        cause,
	}
}

// KindOf returns the kind of an AppError anywhere in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
