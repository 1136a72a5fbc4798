package services

import (
	"errors"
	"fmt"
)

// Error codes understood by the HTTP layer and the CLI.
const (
	EInternal        = "internal error"
	ENotFound        = "not found"
	EConflict        = "conflict" // action cannot be performed in the current state
	EInvalid         = "invalid"  // validation failed
	ETooManyRequests = "too many requests"
	EUnauthorized    = "unauthorized"
)

// Error is a coded service error. Op names the failing operation,
// Err chains the underlying cause.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode returns the code of the outermost *Error in err's chain, EInternal otherwise.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return EInternal
}

// ErrorMessage is the caller-safe message; internal causes are not exposed.
func ErrorMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Code == EInternal {
		return "An internal error has occurred"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code
}

func invalidf(op, format string, args ...any) *Error {
	return &Error{Code: EInvalid, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op, what string, id int64) *Error {
	return &Error{Code: ENotFound, Op: op, Msg: fmt.Sprintf("%s %d not found", what, id)}
}

func internal(op string, err error) *Error {
	return &Error{Code: EInternal, Op: op, Err: err}
}
