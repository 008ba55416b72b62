package vector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/db"
	"github.com/snapquery/snapquery/internal/domain"
)

type fakeStore struct {
	createdDef *db.IndexDefinition
	createErr  error
	items      []db.HashSetItem
	hsetErr    error
	searchQ    *db.KNNQuery
	searchRes  *db.SearchResult
	searchErr  error
	dropped    []string
	scanKeys   []string
	deleted    []string
}

func (f *fakeStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return nil
}

func (f *fakeStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	f.items = items
	return f.hsetErr
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	return f.scanKeys, nil
}

func (f *fakeStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	f.createdDef = def
	return f.createErr
}

func (f *fakeStore) DropIndex(ctx context.Context, name string) error {
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeStore) IndexExists(ctx context.Context, name string) (bool, error) {
	return f.createdDef != nil && f.createdDef.Name == name, nil
}

func (f *fakeStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.searchQ = q
	return f.searchRes, f.searchErr
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type fakeBatchEmbedder struct {
	texts []string
}

func (f *fakeBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.texts = texts
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{float32(i), float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

func sampleDocs() []domain.SearchDocument {
	return domain.BuildDocuments([]domain.ImageRecord{
		{ImageName: "a.jpg", NumberOfPeople: 3, SignUsed: "thumbs up", LandscapeDescription: "beach", Weather: "sunny", Mood: "happy"},
		{ImageName: "b.jpg", NumberOfPeople: 0, SignUsed: "none", LandscapeDescription: "office", Weather: "indoor", Mood: "calm"},
	})
}

func TestBuild_CreatesIndexAndDocuments(t *testing.T) {
	store := &fakeStore{}
	batch := &fakeBatchEmbedder{}
	repo := New(store, &fakeEmbedder{}, batch, domain.DefaultVectorConfig(), zap.NewNop())

	if err := repo.Build(context.Background(), "batch1", sampleDocs()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.createdDef == nil {
		t.Fatal("expected index to be created")
	}
	if store.createdDef.Name != domain.KeyPrefix+"idx:batch1" {
		t.Errorf("unexpected index name: %s", store.createdDef.Name)
	}
	if store.createdDef.Prefix != domain.KeyPrefix+"batch:batch1:" {
		t.Errorf("unexpected prefix: %s", store.createdDef.Prefix)
	}
	var vecField *db.IndexField
	for i := range store.createdDef.Fields {
		if store.createdDef.Fields[i].Type == db.FieldTypeVector {
			vecField = &store.createdDef.Fields[i]
		}
	}
	if vecField == nil {
		t.Fatal("expected a vector field in the schema")
	}
	if vecField.VectorDim != 1536 || vecField.VectorMetric != "COSINE" {
		t.Errorf("unexpected vector options: dim=%d metric=%s", vecField.VectorDim, vecField.VectorMetric)
	}

	if len(batch.texts) != 2 {
		t.Fatalf("expected 2 texts embedded in one batch, got %d", len(batch.texts))
	}
	if len(store.items) != 2 {
		t.Fatalf("expected 2 hash documents, got %d", len(store.items))
	}
	if store.items[0].Key != domain.KeyPrefix+"batch:batch1:a.jpg" {
		t.Errorf("unexpected document key: %s", store.items[0].Key)
	}
	fields := store.items[0].Fields
	if fields["image_name"] != "a.jpg" || fields["number_of_people"] != "3" {
		t.Errorf("unexpected document fields: %v", fields)
	}
	if !strings.Contains(fields["content"], "Setting: beach") {
		t.Errorf("expected document body in content field, got %q", fields["content"])
	}
	if fields["vector"] == "" {
		t.Error("expected encoded vector in document fields")
	}
}

func TestBuild_NoDocuments(t *testing.T) {
	repo := New(&fakeStore{}, &fakeEmbedder{}, nil, domain.DefaultVectorConfig(), zap.NewNop())
	if err := repo.Build(context.Background(), "batch1", nil); err == nil {
		t.Fatal("expected error for empty document list")
	}
}

func TestBuild_FallsBackToPerDocumentEmbedding(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	repo := New(store, emb, nil, domain.DefaultVectorConfig(), zap.NewNop())

	if err := repo.Build(context.Background(), "batch1", sampleDocs()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("expected one embed call per document, got %d", emb.calls)
	}
}

func TestBuild_CreateIndexError(t *testing.T) {
	store := &fakeStore{createErr: errors.New("boom")}
	repo := New(store, &fakeEmbedder{}, &fakeBatchEmbedder{}, domain.DefaultVectorConfig(), zap.NewNop())

	if err := repo.Build(context.Background(), "batch1", sampleDocs()); err == nil {
		t.Fatal("expected error")
	}
	if store.items != nil {
		t.Error("documents should not be written when index creation fails")
	}
}

func TestSearch_ReturnsRankedResults(t *testing.T) {
	store := &fakeStore{
		searchRes: &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{{
				Key:   domain.KeyPrefix + "batch:batch1:a.jpg",
				Score: 0.87,
				Fields: map[string]string{
					"content":               "Setting: beach",
					"image_name":            "a.jpg",
					"number_of_people":      "3",
					"sign_used":             "thumbs up",
					"landscape_description": "beach",
					"weather":               "sunny",
					"mood":                  "happy",
				},
			}},
		},
	}
	repo := New(store, &fakeEmbedder{}, nil, domain.DefaultVectorConfig(), zap.NewNop())

	results, err := repo.Search(context.Background(), "batch1", "people on a beach", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.searchQ.IndexName != domain.KeyPrefix+"idx:batch1" {
		t.Errorf("unexpected index searched: %s", store.searchQ.IndexName)
	}
	if store.searchQ.K != 5 {
		t.Errorf("expected k=5, got %d", store.searchQ.K)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Record.ImageName != "a.jpg" || r.Record.NumberOfPeople != 3 {
		t.Errorf("unexpected record: %+v", r.Record)
	}
	if r.MatchedContent != "Setting: beach" {
		t.Errorf("unexpected content: %q", r.MatchedContent)
	}
	if r.Score == nil || *r.Score != 0.87 {
		t.Errorf("unexpected score: %v", r.Score)
	}
}

func TestSearch_EmbedError(t *testing.T) {
	repo := New(&fakeStore{}, &fakeEmbedder{err: errors.New("quota")}, nil, domain.DefaultVectorConfig(), zap.NewNop())

	_, err := repo.Search(context.Background(), "batch1", "query", 5)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestSearch_IndexError(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("index gone")}
	repo := New(store, &fakeEmbedder{}, nil, domain.DefaultVectorConfig(), zap.NewNop())

	_, err := repo.Search(context.Background(), "batch1", "query", 5)
	if !errors.Is(err, domain.ErrVectorIndexUnavailable) {
		t.Errorf("expected ErrVectorIndexUnavailable, got %v", err)
	}
}

func TestDrop_RemovesIndexAndKeys(t *testing.T) {
	store := &fakeStore{scanKeys: []string{"k1", "k2"}}
	repo := New(store, &fakeEmbedder{}, nil, domain.DefaultVectorConfig(), zap.NewNop())

	repo.Drop(context.Background(), "batch1")

	if len(store.dropped) != 1 || store.dropped[0] != domain.KeyPrefix+"idx:batch1" {
		t.Errorf("unexpected dropped indexes: %v", store.dropped)
	}
	if len(store.deleted) != 2 {
		t.Errorf("expected 2 keys deleted, got %v", store.deleted)
	}
}

func TestRecordFromFields_NormalizesMissing(t *testing.T) {
	rec := recordFromFields(map[string]string{
		"image_name":       "x.jpg",
		"number_of_people": "not-a-number",
	})
	if rec.NumberOfPeople != 0 {
		t.Errorf("expected 0 people for unparsable count, got %d", rec.NumberOfPeople)
	}
	if rec.Weather != domain.UnknownValue || rec.Mood != domain.UnknownValue {
		t.Errorf("expected defaults applied, got %+v", rec)
	}
}

func TestEncodeVector_RoundTripLength(t *testing.T) {
	if got := len(encodeVector([]float32{1, 2, 3})); got != 12 {
		t.Errorf("expected 12 bytes, got %d", got)
	}
}
