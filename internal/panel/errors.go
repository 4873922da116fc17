package panel

import (
	"errors"

	"webpanel/internal/engine"
)

// instanceNotFoundError is returned by verbs addressed to an id with no live record.
type instanceNotFoundError struct{ id string }

func (e instanceNotFoundError) Error() string { return "instance not found: " + e.id }

// ErrInstanceNotFound constructs an instanceNotFoundError.
func ErrInstanceNotFound(id string) error { return instanceNotFoundError{id: id} }

// IsInstanceNotFound reports whether err indicates a missing instance.
func IsInstanceNotFound(err error) bool {
	var e instanceNotFoundError
	return errors.As(err, &e)
}

// invalidURLError is returned when navigation input cannot be classified.
type invalidURLError struct{ raw string }

func (e invalidURLError) Error() string { return "invalid url: " + e.raw }

// IsInvalidURL reports whether err indicates rejected navigation input.
func IsInvalidURL(err error) bool {
	var e invalidURLError
	return errors.As(err, &e)
}

// invalidRequestError is returned for contradictory verb arguments.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return "invalid request: " + e.msg }

// IsInvalidRequest reports whether err indicates rejected verb arguments.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// IsEngineUnavailable reports whether err wraps engine.ErrUnavailable.
func IsEngineUnavailable(err error) bool {
	return errors.Is(err, engine.ErrUnavailable)
}

// ErrClosed is returned after Shutdown.
var ErrClosed = errors.New("registry closed")
