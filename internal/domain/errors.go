package domain

import "errors"

var (
	// ErrBatchNotFound signals an unknown batch identifier.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrNotIndexed signals a search against a batch with no built documents.
	// Distinct from an empty result set, which is a normal outcome.
	ErrNotIndexed = errors.New("no processed images to search")
	// ErrNoValidImages signals a processing batch where no image yielded a record.
	ErrNoValidImages = errors.New("no images could be processed")
	// ErrEmptyQuery signals a search request without a query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrDescribeFailed signals that every description provider failed for an image.
	ErrDescribeFailed = errors.New("image description failed")
	// ErrVisionProviderError signals a single vision provider failure.
	ErrVisionProviderError = errors.New("vision provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorIndexUnavailable signals that the vector store cannot serve the
	// semantic index; callers degrade to keyword search.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
