package ephemeris

import (
	"errors"
	"fmt"
)

// Sentinel kinds for parse errors. A *ParseError matches its kind with errors.Is.
var (
	ErrMissingMarkers     = errors.New("missing $$SOE/$$EOE markers")
	ErrEmptyData          = errors.New("no data rows between markers")
	ErrInsufficientFields = errors.New("insufficient fields in data row")
	ErrNumericFormat      = errors.New("malformed numeric field")
	ErrUnsupportedValue   = errors.New("unsupported ephemeris value")
)

// ParseError describes why one ephemeris block could not be read.
type ParseError struct {
	// Body is the provider key or header name, when known.
	Body  string
	Kind  error
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("ephemeris %s: %s", e.Body, msg)
	}
	return "ephemeris: " + msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
