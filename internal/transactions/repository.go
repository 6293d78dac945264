// Package transactions stores the work logs used to estimate a worker's
// personal hourly rate.
package transactions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Repository errors.
var (
	ErrInvalidRecord = errors.New("invalid work log record")
	ErrMissingUserID = errors.New("user id is required")
)

// Record is one logged shift.
type Record struct {
	Income      float64   `json:"income"`
	HoursWorked float64   `json:"hoursWorked"`
	LoggedAt    time.Time `json:"loggedAt"`
}

// Validate checks that the record can be stored.
func (r Record) Validate() error {
	if r.Income < 0 || r.HoursWorked < 0 {
		return ErrInvalidRecord
	}
	return nil
}

// Repository defines the interface for work log persistence.
type Repository interface {
	// History returns every record for the user, most recent first.
	// An unknown user has an empty history.
	History(ctx context.Context, userID string) ([]Record, error)

	// Add appends a record to the user's history.
	Add(ctx context.Context, userID string, rec Record) error
}

// InMemoryRepository is an in-memory implementation of Repository for tests
// and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string][]Record),
	}
}

// History returns a copy of the user's records, most recent first.
func (r *InMemoryRepository) History(_ context.Context, userID string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]Record, len(r.records[userID]))
	copy(recs, r.records[userID])

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].LoggedAt.After(recs[j].LoggedAt)
	})
	return recs, nil
}

// Add appends a record.
func (r *InMemoryRepository) Add(_ context.Context, userID string, rec Record) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[userID] = append(r.records[userID], rec)
	return nil
}
