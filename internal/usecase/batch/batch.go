// Package batch holds the in-memory state of processed image batches.
//
// Each batch owns its own records and retriever, replacing the shared
// mutable processor/retriever globals of the system this service replaced.
// Nothing here survives a restart.
package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/usecase/search"
)

// Batch is one processed upload batch: the records extracted from its images
// and the retriever built over them. Records are immutable once set.
type Batch struct {
	ID        string
	CreatedAt time.Time
	Records   []domain.ImageRecord
	Retriever *search.Retriever
}

// New creates a batch with a fresh identifier.
func New(records []domain.ImageRecord) *Batch {
	return &Batch{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Records:   records,
	}
}
