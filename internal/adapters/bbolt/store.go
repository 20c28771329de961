// Package bbolt implements the ports.SnapshotStore interface using bbolt
// (embedded B+ tree). Every run gets its own bucket under "runs": an "info"
// key holds the JSON header and a "tables" sub-bucket holds one encoded
// table per pair key. Writes are transactional, so a crash mid-write cannot
// corrupt previously committed runs.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/ports"
)

// ErrNoSnapshot is returned when the requested run (or any run) does not
// exist.
var ErrNoSnapshot = errors.New("no snapshot")

// Bucket keys
var (
	bucketRuns   = []byte("runs")
	bucketTables = []byte("tables")
	keyInfo      = []byte("info")
)

// Store implements ports.SnapshotStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.SnapshotStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// tableKey keeps tables in rule order under bbolt's sorted keys.
func tableKey(i int, key string) []byte {
	return []byte(fmt.Sprintf("%03d:%s", i, key))
}

// SaveRun persists a run, replacing any run with the same ID.
func (s *Store) SaveRun(run *ports.Run) error {
	if run == nil {
		return fmt.Errorf("nil run")
	}
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}

	info, err := json.Marshal(run.RunInfo)
	if err != nil {
		return fmt.Errorf("marshal run info: %w", err)
	}
	blobs := make([][]byte, len(run.Results))
	for i, t := range run.Results {
		if blobs[i], err = encodeTable(t); err != nil {
			return err
		}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		runs, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		id := []byte(run.ID)
		if runs.Bucket(id) != nil {
			if err := runs.DeleteBucket(id); err != nil {
				return err
			}
		}
		rb, err := runs.CreateBucket(id)
		if err != nil {
			return err
		}
		if err := rb.Put(keyInfo, info); err != nil {
			return err
		}
		tb, err := rb.CreateBucket(bucketTables)
		if err != nil {
			return err
		}
		for i, t := range run.Results {
			if err := tb.Put(tableKey(i, t.Key), blobs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadRun retrieves one run by ID.
func (s *Store) LoadRun(id string) (*ports.Run, error) {
	var info []byte
	var blobs [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		rb := runs.Bucket([]byte(id))
		if rb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := rb.Get(keyInfo); v != nil {
			info = append([]byte(nil), v...)
		}
		tb := rb.Bucket(bucketTables)
		if tb == nil {
			return nil
		}
		return tb.ForEach(func(_, v []byte) error {
			blobs = append(blobs, append([]byte(nil), v...))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("run %q: %w", id, ErrNoSnapshot)
	}

	run := &ports.Run{Results: make(compat.Results, 0, len(blobs))}
	if err := json.Unmarshal(info, &run.RunInfo); err != nil {
		return nil, fmt.Errorf("unmarshal run info: %w", err)
	}
	for _, b := range blobs {
		t, err := decodeTable(b)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", id, err)
		}
		run.Results = append(run.Results, t)
	}
	return run, nil
}

// ListRuns returns every run header, newest first. Runs created in the
// same instant are ordered by ID.
func (s *Store) ListRuns() ([]ports.RunInfo, error) {
	var out []ports.RunInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		return runs.ForEachBucket(func(k []byte) error {
			rb := runs.Bucket(k)
			v := rb.Get(keyInfo)
			if v == nil {
				return nil
			}
			var info ports.RunInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("unmarshal run %q: %w", k, err)
			}
			out = append(out, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) > 0
	})
	return out, nil
}

// LatestRun retrieves the most recently created run.
func (s *Store) LatestRun() (*ports.Run, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoSnapshot
	}
	return s.LoadRun(runs[0].ID)
}

// DeleteRun removes a run. Idempotent: deleting a nonexistent run is not
// an error.
func (s *Store) DeleteRun(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		if runs == nil {
			return nil
		}
		if err := runs.DeleteBucket([]byte(id)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}
