// Package errors defines the sentinel errors and AppError wrapper shared
// across the engine's public surface.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat   = errors.New("invalid or corrupt index file")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrCancelled       = errors.New("operation cancelled")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotBuilt        = errors.New("inverted lists not built")
)

// Kind classifies an AppError for callers that want to branch on failure
// category without string-matching Message.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidFormat
	KindOutOfMemory
	KindCancelled
	KindInvalidArgument
	KindNotBuilt
)

// AppError wraps a sentinel error with a human-readable message and a
// Kind, the way the teacher's AppError wraps a sentinel with an HTTP
// status code — there is no HTTP surface here, so Kind replaces
// StatusCode as the thing callers switch on.
type AppError struct {
	Err     error
	Message string
	Kind    Kind
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, kind Kind, message string) *AppError {
	return &AppError{Err: sentinel, Message: message, Kind: kind}
}

func Newf(sentinel error, kind Kind, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...), Kind: kind}
}

// KindOf returns the Kind an error maps to: the Kind of an *AppError if
// err is (or wraps) one, or the Kind matching the nearest sentinel err
// wraps, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrOutOfMemory):
		return KindOutOfMemory
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotBuilt):
		return KindNotBuilt
	default:
		return KindUnknown
	}
}
