// Package runstore persists alignment pipeline run records: the input
// hash, the configuration used, timing, and the resulting report. It
// re-purposes the teacher's session-store shape (a small Store interface
// with interchangeable backends) for run history instead of user
// sessions — a Mongo-backed store for shared/multi-instance deployments
// (the HTTP API) and a file-backed store for standalone CLI use.
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"structuralign/pkg/config"
	"structuralign/pkg/report"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("runstore: run not found")

// Status is a run's lifecycle state. The HTTP API records a run as
// StatusRunning before the pipeline finishes; the CLI only ever
// persists a run after Execute returns, so it goes straight to
// StatusCompleted or StatusFailed.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one persisted pipeline invocation.
type Run struct {
	ID        string
	InputPath string
	InputHash string
	Config    config.Config
	StartedAt time.Time
	Duration  time.Duration
	Report    report.Report
	Status    Status
	Error     string
}

// Store is the interface every run-history backend implements.
type Store interface {
	// Save persists a run, overwriting any existing record with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns the most recent runs, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases resources held by the store.
	Close() error
}

// NewID generates a new run ID. Every run, whether triggered from the
// CLI or the HTTP API, gets one of these.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
