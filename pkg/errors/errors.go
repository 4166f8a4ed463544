package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure. Each code maps to one HTTP status and one
// client-facing error type.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
	// CodeInfrastructure marks a required in-process channel that was never started.
	CodeInfrastructure Code = "INFRASTRUCTURE_UNAVAILABLE"
	// CodeNotification marks a failed outbound notification. It is logged and
	// retried by workers and never written to an HTTP response.
	CodeNotification Code = "NOTIFICATION_FAILURE"
)

// Metadata describes how a code is rendered at the HTTP boundary. ErrorType is
// the client-facing taxonomy name carried in the error envelope. When
// ShowMessage is set the caller's message replaces PublicMessage.
type Metadata struct {
	HTTPStatus     int
	ErrorType      string
	Retryable      bool
	PublicMessage  string
	ShowMessage    bool
	DetailsAllowed bool
}

type exposure uint8

const (
	showMessage exposure = 1 << iota
	showDetails

	hidden exposure = 0
)

func meta(status int, errorType, public string, retry bool, expose exposure) Metadata {
	return Metadata{
		HTTPStatus:     status,
		ErrorType:      errorType,
		Retryable:      retry,
		PublicMessage:  public,
		ShowMessage:    expose&showMessage != 0,
		DetailsAllowed: expose&showDetails != 0,
	}
}

const (
	permanent = false
	retryable = true
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:     meta(http.StatusBadRequest, "BadRequest", "validation failed", permanent, showMessage|showDetails),
	CodeUnauthorized:   meta(http.StatusUnauthorized, "Unauthorized", "authentication required", permanent, showMessage),
	CodeForbidden:      meta(http.StatusForbidden, "Forbidden", "access denied", permanent, showMessage),
	CodeNotFound:       meta(http.StatusNotFound, "NotFound", "resource not found", permanent, showMessage),
	CodeConflict:       meta(http.StatusConflict, "Conflict", "conflict detected", permanent, showMessage),
	CodeStateConflict:  meta(http.StatusUnprocessableEntity, "StateConflict", "state transition disallowed", permanent, showMessage|showDetails),
	CodeIdempotency:    meta(http.StatusConflict, "Conflict", "idempotency key reused", permanent, showMessage|showDetails),
	CodeInternal:       meta(http.StatusInternalServerError, "InternalError", "internal server error", retryable, hidden),
	CodeDependency:     meta(http.StatusServiceUnavailable, "DependencyUnavailable", "dependency unavailable", retryable, showDetails),
	CodeInfrastructure: meta(http.StatusInternalServerError, "InfrastructureUnavailable", "infrastructure unavailable", retryable, showMessage),
	CodeNotification:   meta(http.StatusInternalServerError, "NotificationFailure", "notification failed", retryable, hidden),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded failure with an optional cause and client details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error with the same code, so callers can test with
// errors.Is(err, errors.New(CodeNotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.code == e.code
}

// As returns the outermost *Error in the chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	return As(err).Code()
}

// IsCode reports whether the outermost *Error in the chain carries code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// IsRetryable reports whether the failure may succeed when retried. Untyped
// errors are treated as internal and therefore retryable.
func IsRetryable(err error) bool {
	return err != nil && MetadataFor(CodeOf(err)).Retryable
}
