package helper

import (
	"errors"
	"strings"
)

// Error wraps an original error with the trace of operations it passed through.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the given trace step. If err already is an *Error,
// the step is prepended to its trace instead of nesting another wrapper.
func NewError(trace string, err error) error {
	if err == nil {
		err = errors.New("unknown error")
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Original: existing.Original,
			Trace:    append([]string{trace}, existing.Trace...),
		}
	}

	return &Error{
		Original: err,
		Trace:    []string{trace},
	}
}

// Error joins the trace and the original error message.
func (e *Error) Error() string {
	if len(e.Trace) == 0 {
		return e.Original.Error()
	}
	return strings.Join(e.Trace, ": ") + ": " + e.Original.Error()
}

// Unwrap returns the original error so errors.Is and errors.As see through the trace.
func (e *Error) Unwrap() error {
	return e.Original
}
