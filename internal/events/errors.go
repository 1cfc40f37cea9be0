package events

import (
	"errors"
	"fmt"
)

// ErrCancelled marks a fetch superseded by a newer request for the same
// scope. Callers drop it silently instead of surfacing a failure.
var ErrCancelled = errors.New("fetch cancelled")

// ConfigError reports a missing configuration value that disables one
// retrieval strategy. It is never retryable.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Field)
}

// DecodeError wraps a log that could not be decoded into a normalized event.
type DecodeError struct {
	TxHash   string
	LogIndex uint64
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode log %s:%d: %v", e.TxHash, e.LogIndex, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
