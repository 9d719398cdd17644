package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error identifier. Codes are part of the
// API contract and must not change between releases.
type Code string

const (
	CodeValidation    Code = "VALIDATION"
	CodeNotFound      Code = "NOT_FOUND"
	CodeSessionFull   Code = "SESSION_FULL"
	CodeConflictRetry Code = "CONFLICT_RETRY"
)

type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is makes two *Error values match on code alone, so sentinel-style
// comparisons like errors.Is(err, apperr.SessionFull("")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// SessionFull is an expected business outcome, not a failure: the caller
// should refresh availability rather than retry blindly.
func SessionFull(msg string) *Error {
	if msg == "" {
		msg = "session is full"
	}
	return &Error{Code: CodeSessionFull, Message: msg}
}

// ConflictRetry marks a serialization conflict surfaced by the store after
// the internal retry budget is spent.
func ConflictRetry(msg string, err error) *Error {
	if msg == "" {
		msg = "concurrent update conflict, try again"
	}
	return &Error{Code: CodeConflictRetry, Message: msg, err: err}
}

// CodeOf extracts the stable code from err, or "" when err is not tagged.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
