// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. The app layer depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"time"

	"github.com/corey/fpvcompat/internal/domain/compat"
)

// SnapshotStore persists evaluated runs so they can be summarized later
// without reloading the sources. The backing store (bbolt) keeps each run
// under its own ID.
//
// Crash safety: SaveRun must be transactional. A crash mid-write must not
// corrupt previously committed runs.
type SnapshotStore interface {
	// SaveRun persists a run. A run with an existing ID is replaced.
	SaveRun(run *Run) error

	// LoadRun retrieves one run by ID.
	LoadRun(id string) (*Run, error)

	// LatestRun retrieves the most recently created run.
	LatestRun() (*Run, error)

	// ListRuns returns run headers, newest first.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes a run. Deleting a nonexistent run is not an error.
	DeleteRun(id string) error

	Close() error
}

// RunInfo is the header of a stored run.
type RunInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Headroom  float64   `json:"headroom"`
	Sources   []string  `json:"sources"`
	Parts     int       `json:"parts"`
}

// Run is one complete evaluation: its header plus every result table.
type Run struct {
	RunInfo
	Results compat.Results
}
