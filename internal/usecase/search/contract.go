package search

import (
	"context"

	"github.com/snapquery/snapquery/internal/domain"
)

// VectorIndex is the external embeddings/vector-store collaborator. It is a
// best-effort accelerator: any failure degrades searches to the keyword
// scorer, never to an error for the caller.
type VectorIndex interface {
	Build(ctx context.Context, batchID string, docs []domain.SearchDocument) error
	Search(ctx context.Context, batchID, query string, k int) ([]domain.SearchResult, error)
	Drop(ctx context.Context, batchID string)
}

// Referencer resolves a stored image name into the public reference exposed
// on search results.
type Referencer interface {
	Ref(name string) string
}
