package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUpstream        = errors.New("upstream failure")
	ErrInternal        = errors.New("internal error")
)

var statusByKind = map[error]int{
	ErrBadRequest:      fiber.StatusBadRequest,
	ErrUnauthorized:    fiber.StatusUnauthorized,
	ErrForbidden:       fiber.StatusForbidden,
	ErrNotFound:        fiber.StatusNotFound,
	ErrConflict:        fiber.StatusConflict,
	ErrTooManyRequests: fiber.StatusTooManyRequests,
	ErrUpstream:        fiber.StatusBadGateway,
	ErrInternal:        fiber.StatusInternalServerError,
}

// AppError carries a client-safe message next to one of the sentinel kinds.
// Cause is logged, never rendered.
type AppError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func (e *AppError) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

func BadRequest(format string, args ...any) error {
	return &AppError{Kind: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &AppError{Kind: ErrUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &AppError{Kind: ErrForbidden, Message: msg}
}

func NotFound(format string, args ...any) error {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) error {
	return &AppError{Kind: ErrConflict, Message: msg}
}

func TooManyRequests(msg string) error {
	return &AppError{Kind: ErrTooManyRequests, Message: msg}
}

func Upstream(msg string, cause error) error {
	return &AppError{Kind: ErrUpstream, Message: msg, Cause: cause}
}

func Internal(msg string, cause error) error {
	return &AppError{Kind: ErrInternal, Message: msg, Cause: cause}
}

// StatusAndMessage resolves any error into the status code and the message
// that may be shown to the client.
func StatusAndMessage(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Status() >= fiber.StatusInternalServerError && msg == "" {
			msg = appErr.Kind.Error()
		}
		return appErr.Status(), msg
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for kind, status := range statusByKind {
		if errors.Is(err, kind) {
			return status, kind.Error()
		}
	}
	return fiber.StatusInternalServerError, "internal server error"
}
