// Package vector persists search documents into a RediSearch vector index
// and serves semantic KNN lookups over them.
package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/db"
	"github.com/snapquery/snapquery/internal/domain"
)

const (
	fieldContent = "content"
	fieldVector  = "vector"
)

// store is the subset of db.Store this repository consumes.
type store interface {
	db.HashStore
	db.IndexManager
	db.Searcher
}

// Repo implements the vector index contract over a Redis-backed store.
type Repo struct {
	store    store
	embedder domain.Embedder
	batch    domain.BatchEmbedder
	vectors  domain.VectorConfig
	logger   *zap.Logger
}

// New creates a Repo. batch may be nil; Build then embeds one call per
// document via domain.BatchFallback.
func New(s store, embedder domain.Embedder, batch domain.BatchEmbedder, vectors domain.VectorConfig, logger *zap.Logger) *Repo {
	return &Repo{
		store:    s,
		embedder: embedder,
		batch:    batch,
		vectors:  vectors,
		logger:   logger,
	}
}

func indexName(batchID string) string {
	return domain.KeyPrefix + "idx:" + batchID
}

func keyPrefix(batchID string) string {
	return domain.KeyPrefix + "batch:" + batchID + ":"
}

// Build creates the per-batch index and writes one hash document per search
// document, embedding all bodies in a single provider call when possible.
func (r *Repo) Build(ctx context.Context, batchID string, docs []domain.SearchDocument) error {
	if len(docs) == 0 {
		return fmt.Errorf("build index %s: no documents", batchID)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Body
	}
	embeddings, err := r.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	def := &db.IndexDefinition{
		Name:   indexName(batchID),
		Prefix: keyPrefix(batchID),
		Fields: []db.IndexField{
			{Name: fieldContent, Type: db.FieldTypeText},
			{Name: "image_name", Type: db.FieldTypeTag},
			{
				Name:         fieldVector,
				Type:         db.FieldTypeVector,
				VectorDim:    r.vectors.Dimensions,
				VectorMetric: r.vectors.DistanceMetric,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		items[i] = db.HashSetItem{
			Key:    keyPrefix(batchID) + doc.Record.ImageName,
			Fields: docFields(doc, embeddings[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store documents: %w", err)
	}

	r.logger.Info("vector index built",
		zap.String("batch_id", batchID),
		zap.Int("documents", len(docs)))
	return nil
}

// Search embeds the query and returns the k nearest documents, best first.
func (r *Repo) Search(ctx context.Context, batchID, query string, k int) ([]domain.SearchResult, error) {
	res, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrEmbeddingProviderError, err)
	}

	found, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName(batchID),
		Vector:    res.Embedding,
		K:         k,
		ReturnFields: []string{
			fieldContent, "image_name", "number_of_people", "sign_used",
			"landscape_description", "weather", "mood",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %v", domain.ErrVectorIndexUnavailable, err)
	}

	results := make([]domain.SearchResult, 0, len(found.Entries))
	for _, entry := range found.Entries {
		results = append(results, domain.NewSearchResult(
			"", recordFromFields(entry.Fields), entry.Fields[fieldContent], entry.Score))
	}
	return results, nil
}

// Drop removes the batch index and its documents. Best effort.
func (r *Repo) Drop(ctx context.Context, batchID string) {
	if err := r.store.DropIndex(ctx, indexName(batchID)); err != nil {
		r.logger.Warn("drop index failed",
			zap.String("batch_id", batchID), zap.Error(err))
	}
	keys, err := r.store.Scan(ctx, keyPrefix(batchID)+"*")
	if err != nil {
		r.logger.Warn("scan batch keys failed",
			zap.String("batch_id", batchID), zap.Error(err))
		return
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		r.logger.Warn("delete batch keys failed",
			zap.String("batch_id", batchID), zap.Error(err))
	}
}

func (r *Repo) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if r.batch != nil {
		res, err := r.batch.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, err
		}
		return res.Embeddings, nil
	}
	res, err := domain.BatchFallback(ctx, r.embedder, texts)
	if err != nil {
		return nil, err
	}
	return res.Embeddings, nil
}

func docFields(doc domain.SearchDocument, vec []float32) map[string]string {
	rec := doc.Record
	return map[string]string{
		fieldContent:            doc.Body,
		fieldVector:             string(encodeVector(vec)),
		"image_name":            rec.ImageName,
		"number_of_people":      strconv.Itoa(rec.NumberOfPeople),
		"sign_used":             rec.SignUsed,
		"landscape_description": rec.LandscapeDescription,
		"weather":               rec.Weather,
		"mood":                  rec.Mood,
	}
}

func recordFromFields(fields map[string]string) domain.ImageRecord {
	people, _ := strconv.Atoi(fields["number_of_people"])
	rec := domain.ImageRecord{
		ImageName:            fields["image_name"],
		NumberOfPeople:       people,
		SignUsed:             fields["sign_used"],
		LandscapeDescription: fields["landscape_description"],
		Weather:              fields["weather"],
		Mood:                 fields["mood"],
	}
	rec.Normalize()
	return rec
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
