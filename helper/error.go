package helper

import (
	"errors"
	"fmt"
)

// Error carries the original error together with a trace of the
// operations it passed through on the way up.
type Error struct {
	Original error
	Trace    string
}

// NewError wraps err with the given trace. If err already is an Error the
// traces are chained so the outermost operation comes first.
func NewError(trace string, err error) error {
	if err == nil {
		err = errors.New("unknown error")
	}

	var inner Error
	if errors.As(err, &inner) {
		return Error{
			Original: inner.Original,
			Trace:    fmt.Sprintf("%s: %s", trace, inner.Trace),
		}
	}

	return Error{
		Original: err,
		Trace:    trace,
	}
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Trace, e.Original)
}

// Unwrap exposes the original error to errors.Is and errors.As.
func (e Error) Unwrap() error {
	return e.Original
}
