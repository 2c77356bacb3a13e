package league

import (
	"errors"
	"fmt"

	"league-app/internal/store"
)

// Code classifies engine failures for callers.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConsistency     Code = "CONSISTENCY"
)

// Error is returned by every public engine operation.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// works for every not-found failure.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConsistency     = &Error{Code: CodeConsistency, Message: "ledger and aggregates diverged"}
)

func invalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func consistency(cause error, format string, args ...any) *Error {
	return &Error{Code: CodeConsistency, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// lookup maps a store miss on a caller-named entity to ErrNotFound.
func lookup(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}

// CodeOf returns the engine code of err, or "" for infrastructure failures.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
