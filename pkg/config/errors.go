// Package config loads the server registry and the credential/environment document.
package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound indicates a configuration document does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfig indicates a configuration document failed to parse or validate.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrServerNotFound indicates no server is registered under the given key.
	ErrServerNotFound = errors.New("server not found")

	// ErrEnvironmentNotFound indicates the credentials document has no such environment.
	ErrEnvironmentNotFound = errors.New("environment not found")
)

// Error wraps a configuration failure with the document it came from.
type Error struct {
	Op   string // Operation being performed (e.g., "load", "validate")
	Path string // Document path
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}
