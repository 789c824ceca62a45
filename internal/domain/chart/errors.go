package chart

import (
	"context"
	"errors"
	"fmt"
)

// Chart-level failures abort assembly. Body-level failures become Diagnostics.
var (
	ErrMissingBody   = errors.New("required body missing")
	ErrAscendant     = errors.New("ascendant unavailable")
	ErrNotProvided   = errors.New("no ephemeris provided")
	ErrDuplicateBody = errors.New("body provided more than once")
)

// AssemblyError is a chart-level failure. It matches its Kind and the
// underlying cause with errors.Is.
type AssemblyError struct {
	Body string
	Kind error
	Err  error
}

func (e *AssemblyError) Error() string {
	msg := e.Kind.Error()
	if e.Body != "" {
		msg = e.Body + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "chart: " + msg
}

func (e *AssemblyError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Reason classifies an Assemble error for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingBody):
		return "missing_body"
	case errors.Is(err, ErrAscendant):
		return "ascendant"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
