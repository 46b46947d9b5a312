package migration

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionFailed    = errors.New("connection test failed")
	ErrNoProjects          = errors.New("no projects found")
	ErrProjectsUnsupported = errors.New("server does not support projects")
	ErrNoBackups           = errors.New("no backups available")
	ErrNoServers           = errors.New("no servers configured")
	ErrUnknownAction       = errors.New("unknown action")
	ErrProjectNotFound     = errors.New("project not found")
)

// Error is a fatal failure of one orchestrator operation.
type Error struct {
	Op     string
	Server string
	Err    error
}

func (e *Error) Error() string {
	if e.Server == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s on %s: %v", e.Op, e.Server, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}
