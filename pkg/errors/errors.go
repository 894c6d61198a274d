package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies why a run failed. The CLI renders each kind differently.
type Kind string

const (
	// KindInput means the request was rejected before any network call.
	KindInput Kind = "input"
	// KindUpstream means the external actor failed or answered with a non-2xx status.
	KindUpstream Kind = "upstream"
	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// Error is a classified failure of an export run
type Error struct {
	Kind    Kind
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	switch {
	case e.Kind == KindUpstream && e.Code > 0:
		return fmt.Sprintf("apify error %d: %s", e.Code, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Input creates an input validation error
func Input(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Upstream creates an error for a non-success response from the actor
func Upstream(code int, body string) *Error {
	return &Error{Kind: KindUpstream, Code: code, Message: body}
}

// UpstreamErr wraps a transport or decoding failure talking to the actor
func UpstreamErr(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// Internal wraps an unexpected failure
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusCode returns the upstream HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// Is reports whether err is of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
