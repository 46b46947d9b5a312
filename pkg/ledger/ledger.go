// Package ledger records, per n8n instance, the resources this tool created so that
// cleanup only ever deletes what it owns.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/n8nmigrate/pkg/models"
)

// DefaultPath is the file ledger used when no ledger URL is configured.
const DefaultPath = "resource_mapping.json"

var (
	// ErrInstanceRequired indicates an empty instance URL was given.
	ErrInstanceRequired = errors.New("instance url is required")

	// ErrIDRequired indicates an empty remote id was given.
	ErrIDRequired = errors.New("resource id is required")

	// ErrInvalidKind indicates an unknown resource kind.
	ErrInvalidKind = errors.New("invalid resource kind")
)

// Store is the durable resource ledger. Every mutation is flushed before it returns.
// Absent instances list as an empty set.
type Store interface {
	Record(ctx context.Context, instanceURL string, kind models.ResourceKind, id, name string) error
	Forget(ctx context.Context, instanceURL string, kind models.ResourceKind, id string) error
	ListFor(ctx context.Context, instanceURL string) (*models.ResourceSet, error)
	// Instances lists every instance with at least one tracked resource, sorted.
	Instances(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// Error wraps a ledger failure with the operation and instance it concerns.
type Error struct {
	Op       string // Operation being performed (e.g., "record", "forget", "list")
	Instance string // Instance URL
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Instance == "" {
		return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("ledger %s for %s: %v", e.Op, e.Instance, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NormalizeInstance strips trailing slashes so "http://h/" and "http://h" share an entry.
func NormalizeInstance(instanceURL string) string {
	return strings.TrimRight(strings.TrimSpace(instanceURL), "/")
}

func checkArgs(op, instanceURL string, kind models.ResourceKind, id string) (string, error) {
	instance := NormalizeInstance(instanceURL)

	switch {
	case instance == "":
		return "", &Error{Op: op, Err: ErrInstanceRequired}
	case !kind.Valid():
		return "", &Error{Op: op, Instance: instance, Err: fmt.Errorf("%w: %q", ErrInvalidKind, kind)}
	case id == "":
		return "", &Error{Op: op, Instance: instance, Err: ErrIDRequired}
	}

	return instance, nil
}
