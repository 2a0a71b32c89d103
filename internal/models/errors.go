package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput reports an order record that cannot be ingested.
	ErrMalformedInput = errors.New("malformed input")
	// ErrWeatherUnavailable reports a failed weather lookup. It never reaches scoring.
	ErrWeatherUnavailable = errors.New("weather unavailable")
	// ErrNoSignal means a strategy produced no positive score and the fallback ladder applies.
	ErrNoSignal = errors.New("no signal")
)

// InputError describes a malformed order line. Index is the position of the
// order in the payload and Line the position of the item within that order;
// both are -1 when not applicable.
type InputError struct {
	Index  int
	Line   int
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	switch {
	case e.Index >= 0 && e.Line >= 0:
		return fmt.Sprintf("order %d line %d: %s %s", e.Index, e.Line, e.Field, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("order %d: %s %s", e.Index, e.Field, e.Reason)
	default:
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
}

// Unwrap lets errors.Is match ErrMalformedInput.
func (e *InputError) Unwrap() error {
	return ErrMalformedInput
}
