package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
)

type fakeIndex struct {
	buildErr   error
	searchRes  []domain.SearchResult
	searchErr  error
	buildCalls int
	dropCalls  int
}

func (f *fakeIndex) Build(ctx context.Context, batchID string, docs []domain.SearchDocument) error {
	f.buildCalls++
	return f.buildErr
}

func (f *fakeIndex) Search(ctx context.Context, batchID, query string, k int) ([]domain.SearchResult, error) {
	return f.searchRes, f.searchErr
}

func (f *fakeIndex) Drop(ctx context.Context, batchID string) {
	f.dropCalls++
}

func testDocs() []domain.SearchDocument {
	return domain.BuildDocuments([]domain.ImageRecord{
		{ImageName: "a.jpg", NumberOfPeople: 2, SignUsed: "thumbs up", LandscapeDescription: "outdoor beach", Weather: "sunny", Mood: "happy"},
		{ImageName: "b.jpg", SignUsed: "none", LandscapeDescription: "indoor office", Weather: "unknown", Mood: "calm"},
	})
}

func TestRetriever_EmptyStore(t *testing.T) {
	r := NewRetriever("batch-1", nil, nil, refFn(publicRef), zap.NewNop())

	_, err := r.Search(context.Background(), "beach", 5)
	if !errors.Is(err, domain.ErrNotIndexed) {
		t.Errorf("expected ErrNotIndexed, got %v", err)
	}
}

func TestRetriever_EmptyQuery(t *testing.T) {
	r := NewRetriever("batch-1", testDocs(), nil, refFn(publicRef), zap.NewNop())

	_, err := r.Search(context.Background(), "   ", 5)
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestRetriever_NoIndexUsesKeywordScorer(t *testing.T) {
	docs := testDocs()
	r := NewRetriever("batch-1", docs, nil, refFn(publicRef), zap.NewNop())

	got, err := r.Search(context.Background(), "thumbs up", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := KeywordSearch(docs, "thumbs up", 5, publicRef)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected pure keyword results\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestRetriever_BuildFailureDegradesToKeyword(t *testing.T) {
	docs := testDocs()
	idx := &fakeIndex{buildErr: errors.New("store down")}
	r := NewRetriever("batch-1", docs, idx, refFn(publicRef), zap.NewNop())

	r.BuildIndex(context.Background())
	if r.SemanticReady() {
		t.Fatal("expected semanticReady false after build failure")
	}

	got, err := r.Search(context.Background(), "sunny beach", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := KeywordSearch(docs, "sunny beach", 5, publicRef)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("degraded search must equal direct fallback\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestRetriever_BuildRunsOnce(t *testing.T) {
	idx := &fakeIndex{}
	r := NewRetriever("batch-1", testDocs(), idx, refFn(publicRef), zap.NewNop())

	r.BuildIndex(context.Background())
	if !r.SemanticReady() {
		t.Fatal("expected semanticReady after successful build")
	}
	if idx.buildCalls != 1 {
		t.Errorf("expected 1 build call, got %d", idx.buildCalls)
	}
}

func TestRetriever_SemanticResultsGetImageRefs(t *testing.T) {
	score := 0.93
	idx := &fakeIndex{
		searchRes: []domain.SearchResult{{
			Record:         domain.ImageRecord{ImageName: "a.jpg"},
			MatchedContent: "Setting: beach",
			Score:          &score,
		}},
	}
	r := NewRetriever("batch-1", testDocs(), idx, refFn(publicRef), zap.NewNop())
	r.BuildIndex(context.Background())

	got, err := r.Search(context.Background(), "beach", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 semantic result, got %d", len(got))
	}
	if got[0].ImageRef != "/public/a.jpg" {
		t.Errorf("expected image reference filled in, got %q", got[0].ImageRef)
	}
}

func TestRetriever_SemanticErrorFallsBack(t *testing.T) {
	docs := testDocs()
	idx := &fakeIndex{searchErr: errors.New("index gone")}
	r := NewRetriever("batch-1", docs, idx, refFn(publicRef), zap.NewNop())
	r.BuildIndex(context.Background())

	got, err := r.Search(context.Background(), "thumbs up", 5)
	if err != nil {
		t.Fatalf("semantic failure must not surface: %v", err)
	}
	want := KeywordSearch(docs, "thumbs up", 5, publicRef)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected keyword fallback results\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestRetriever_SemanticEmptyFallsBack(t *testing.T) {
	docs := testDocs()
	idx := &fakeIndex{searchRes: nil}
	r := NewRetriever("batch-1", docs, idx, refFn(publicRef), zap.NewNop())
	r.BuildIndex(context.Background())

	got, err := r.Search(context.Background(), "thumbs up", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected keyword fallback to produce results")
	}
}

func TestRetriever_DefaultLimit(t *testing.T) {
	records := make([]domain.ImageRecord, 8)
	for i := range records {
		records[i] = domain.ImageRecord{ImageName: "x.jpg", LandscapeDescription: "outdoor beach"}
	}
	r := NewRetriever("batch-1", domain.BuildDocuments(records), nil, refFn(publicRef), zap.NewNop())

	got, err := r.Search(context.Background(), "beach", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, len(got))
	}
}

func TestRetriever_CloseDropsBuiltIndex(t *testing.T) {
	idx := &fakeIndex{}
	r := NewRetriever("batch-1", testDocs(), idx, refFn(publicRef), zap.NewNop())
	r.BuildIndex(context.Background())

	r.Close(context.Background())
	if idx.dropCalls != 1 {
		t.Errorf("expected 1 drop call, got %d", idx.dropCalls)
	}
}

// refFn adapts a plain function to Referencer for tests.
type refFn func(name string) string

func (f refFn) Ref(name string) string { return f(name) }
