package batch

import (
	"sync"

	"github.com/snapquery/snapquery/internal/domain"
)

// Registry is a concurrency-safe in-memory batch store. Batches are only
// ever added; reads after Add are safe from any goroutine because a batch's
// contents never change once registered.
type Registry struct {
	mu      sync.RWMutex
	batches map[string]*Batch
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{batches: make(map[string]*Batch)}
}

// Add registers a processed batch.
func (r *Registry) Add(b *Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = b
	r.order = append(r.order, b.ID)
}

// Get returns a batch by ID.
func (r *Registry) Get(id string) (*Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return b, nil
}

// Latest returns the most recently added batch, or false when none exists.
func (r *Registry) Latest() (*Batch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, false
	}
	return r.batches[r.order[len(r.order)-1]], true
}

// Count returns the number of registered batches.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches)
}

// TotalRecords returns the record count summed across all batches.
func (r *Registry) TotalRecords() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, b := range r.batches {
		total += len(b.Records)
	}
	return total
}
