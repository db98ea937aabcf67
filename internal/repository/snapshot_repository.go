package repository

import (
	"sync"

	"treasury_dashboard/internal/domain/entity"
)

// SnapshotRepository stores the latest aggregate snapshot. Serving reads the
// last stored snapshot even while a refresh is in flight; a refresh replaces
// it atomically only once fully built.
type SnapshotRepository interface {
	Store(snapshot entity.AggregateSnapshot)
	Latest() (entity.AggregateSnapshot, bool)
}

type inMemorySnapshotRepository struct {
	mu       sync.RWMutex
	snapshot entity.AggregateSnapshot
	stored   bool
}

// NewInMemorySnapshotRepository creates an empty in-memory snapshot store.
func NewInMemorySnapshotRepository() SnapshotRepository {
	return &inMemorySnapshotRepository{}
}

func (r *inMemorySnapshotRepository) Store(snapshot entity.AggregateSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot
	r.stored = true
}

func (r *inMemorySnapshotRepository) Latest() (entity.AggregateSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot, r.stored
}
