// Package search ranks processed image documents against free-text queries.
//
// Each processed batch owns one Retriever. Semantic similarity search over
// the external vector store is attempted first when the index built; on any
// failure or empty result the deterministic keyword scorer answers instead,
// within the same call.
package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/metrics"
)

// DefaultLimit is the result cap applied when a request leaves limit unset.
const DefaultLimit = 5

// Retriever owns the document store of a single processed batch. It starts
// empty and transitions to indexed exactly once, when BuildIndex runs; a new
// batch constructs a fresh Retriever rather than reindexing this one.
type Retriever struct {
	batchID string
	docs    []domain.SearchDocument
	index   VectorIndex
	refs    Referencer
	logger  *zap.Logger

	semanticReady bool
}

// NewRetriever creates a retriever over the batch's documents. index may be
// nil when no vector store is configured.
func NewRetriever(
	batchID string,
	docs []domain.SearchDocument,
	index VectorIndex,
	refs Referencer,
	logger *zap.Logger,
) *Retriever {
	return &Retriever{
		batchID: batchID,
		docs:    docs,
		index:   index,
		refs:    refs,
		logger:  logger,
	}
}

// BuildIndex attempts to build the semantic index once. Failure is recorded
// and logged, not returned: the retriever stays usable via keyword search.
func (r *Retriever) BuildIndex(ctx context.Context) {
	if r.index == nil || len(r.docs) == 0 {
		return
	}
	if err := r.index.Build(ctx, r.batchID, r.docs); err != nil {
		r.logger.Warn("semantic index build failed, keyword search only",
			zap.String("batch_id", r.batchID),
			zap.Int("documents", len(r.docs)),
			zap.Error(err))
		return
	}
	r.semanticReady = true
	r.logger.Info("semantic index built",
		zap.String("batch_id", r.batchID),
		zap.Int("documents", len(r.docs)))
}

// SemanticReady reports whether the semantic index build succeeded.
func (r *Retriever) SemanticReady() bool { return r.semanticReady }

// DocumentCount returns the number of indexed documents.
func (r *Retriever) DocumentCount() int { return len(r.docs) }

// Search ranks documents against the query and returns at most limit
// results. An empty result list is a normal outcome; ErrNotIndexed and
// ErrEmptyQuery are the only error cases.
func (r *Retriever) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if len(r.docs) == 0 {
		return nil, domain.ErrNotIndexed
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if r.semanticReady {
		results, err := r.index.Search(ctx, r.batchID, query, limit)
		switch {
		case err != nil:
			metrics.SearchFallbackTotal.WithLabelValues("error").Inc()
			r.logger.Warn("semantic search failed, falling back to keyword scoring",
				zap.String("batch_id", r.batchID), zap.Error(err))
		case len(results) == 0:
			metrics.SearchFallbackTotal.WithLabelValues("empty").Inc()
		default:
			for i := range results {
				results[i].ImageRef = r.refs.Ref(results[i].Record.ImageName)
			}
			return results, nil
		}
	} else {
		metrics.SearchFallbackTotal.WithLabelValues("unindexed").Inc()
	}

	return KeywordSearch(r.docs, query, limit, r.refs.Ref), nil
}

// Close drops the batch's semantic index if one was built.
func (r *Retriever) Close(ctx context.Context) {
	if r.semanticReady && r.index != nil {
		r.index.Drop(ctx, r.batchID)
	}
}
