// Package store keeps a history of finished simulation runs for the HTTP API.
//
// Runs are immutable once saved. The store never feeds anything back into a
// simulation; it only lets clients fetch a report again by ID.
//
// Two implementations are provided:
//   - [MongoStore]: a MongoDB collection, for deployments
//   - [MemoryStore]: a bounded in-process map, used when no MongoDB URI is
//     configured and in tests
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/report"
)

// Limits for [Store.Recent].
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// Run is one stored simulation.
type Run struct {
	ID        string         `json:"id" bson:"_id"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Report    *report.Report `json:"report" bson:"report"`
}

// NewRun wraps a report in a run with a fresh ID.
func NewRun(rep *report.Report) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Report:    rep,
	}
}

// Store persists runs. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a run. Saving an ID twice is an error.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID, or a RUN_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]*Run, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// ValidateID checks that id is a UUID as produced by [NewRun].
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid run id %q", id)
	}
	return nil
}

// ClampLimit maps a requested limit into [1, MaxRecentLimit], using
// DefaultRecentLimit for zero or negative values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
}
