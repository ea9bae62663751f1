package weights

import (
	"errors"
	"fmt"
)

// ErrMalformedWeights is returned when a weight blob cannot produce a valid layer.
var ErrMalformedWeights = errors.New("malformed weights")

// LoadError describes why a layer failed to load.
type LoadError struct {
	Layer  string // Layer name (e.g. "fc1")
	Reason string // Human readable reason
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("%v: %s", ErrMalformedWeights, e.Reason)
	}
	return fmt.Sprintf("%v: layer %q: %s", ErrMalformedWeights, e.Layer, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformedWeights) hold for every LoadError.
func (e *LoadError) Unwrap() error {
	return ErrMalformedWeights
}

func malformed(layer, format string, args ...any) error {
	return &LoadError{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}
