package network

import (
	"errors"
	"fmt"
)

// ErrInvalidModel is matched by every ConfigError.
var ErrInvalidModel = errors.New("network: invalid model")

// ConfigError is a fatal model or parameter error detected before any
// integration. Index is -1 when the error is not tied to one entry.
type ConfigError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("network: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("network: %s[%d]: %s", e.Field, e.Index, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidModel }
