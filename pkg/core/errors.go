package core

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrValidation         = errors.New("document failed structural validation")
	ErrMissingTimeline    = errors.New("timeline not found")
	ErrMissingStream      = errors.New("stream not found")
	ErrMissingEnvironment = errors.New("environment not found")
	ErrMissingTag         = errors.New("no event with tag")
	ErrInvalidTimeline    = errors.New("invalid timeline")
	ErrInvalidStream      = errors.New("invalid stream")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidTime        = errors.New("invalid time")
	ErrInvalidRange       = errors.New("invalid range")
	ErrInsufficientData   = errors.New("insufficient data")
	ErrEmptyContainer     = errors.New("container has no timelines or events")
	ErrOutOfRange         = errors.New("index out of range")
)

// InsufficientDataError reports which required entries a preflight check could not find.
type InsufficientDataError struct {
	Kind      string // "streams" or "environments"
	Required  []string
	Available []string
	Missing   []string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%v: missing %s [%s] (required [%s], available [%s])",
		ErrInsufficientData, e.Kind,
		strings.Join(e.Missing, ", "),
		strings.Join(e.Required, ", "),
		strings.Join(e.Available, ", "))
}

func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}
