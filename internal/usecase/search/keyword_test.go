package search

import (
	"testing"

	"github.com/snapquery/snapquery/internal/domain"
)

func publicRef(name string) string { return "/public/" + name }

func docOf(rec domain.ImageRecord) domain.SearchDocument {
	return domain.BuildDocuments([]domain.ImageRecord{rec})[0]
}

func TestKeywordSearch_OccurrenceOrdering(t *testing.T) {
	docs := []domain.SearchDocument{
		{Body: "beach", Record: domain.ImageRecord{ImageName: "once.jpg"}},
		{Body: "beach beach", Record: domain.ImageRecord{ImageName: "twice.jpg"}},
	}

	results := KeywordSearch(docs, "beach", 5, publicRef)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.ImageName != "twice.jpg" {
		t.Errorf("expected double occurrence first, got %q", results[0].Record.ImageName)
	}
	if *results[0].Score != 4 || *results[1].Score != 2 {
		t.Errorf("expected scores 4 and 2, got %v and %v", *results[0].Score, *results[1].Score)
	}
}

func TestKeywordSearch_ZeroScoreExcluded(t *testing.T) {
	docs := []domain.SearchDocument{
		{Body: "mountain hike", Record: domain.ImageRecord{ImageName: "m.jpg"}},
	}

	results := KeywordSearch(docs, "submarine", 10, publicRef)
	if len(results) != 0 {
		t.Errorf("expected empty result for non-matching document, got %d", len(results))
	}
}

func TestKeywordSearch_StructuredBonuses(t *testing.T) {
	tests := []struct {
		name  string
		rec   domain.ImageRecord
		query string
		bonus int
	}{
		{"thumbs sign", domain.ImageRecord{SignUsed: "thumbs up"}, "thumbs", signBonus},
		{"peace sign", domain.ImageRecord{SignUsed: "peace sign"}, "peace", signBonus},
		{"people scales with count", domain.ImageRecord{NumberOfPeople: 4}, "people", 4 * perPersonBonus},
		{"outdoor field", domain.ImageRecord{LandscapeDescription: "outdoor park"}, "outdoor", fieldBonus},
		{"indoor field", domain.ImageRecord{LandscapeDescription: "indoor hall"}, "indoor", fieldBonus},
		{"sunny weather", domain.ImageRecord{Weather: "sunny"}, "sunny", fieldBonus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Body left empty so the score is purely the structured bonus.
			docs := []domain.SearchDocument{{Body: "", Record: tt.rec}}

			results := KeywordSearch(docs, tt.query, 5, publicRef)
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if int(*results[0].Score) != tt.bonus {
				t.Errorf("expected bonus %d, got %v", tt.bonus, *results[0].Score)
			}
		})
	}
}

func TestKeywordSearch_BonusWithoutQueryTermNotApplied(t *testing.T) {
	docs := []domain.SearchDocument{
		{Body: "", Record: domain.ImageRecord{SignUsed: "thumbs up", NumberOfPeople: 3}},
	}

	// Query mentions neither "thumbs" nor "people"; no bonus applies and the
	// empty body matches nothing.
	results := KeywordSearch(docs, "beach", 5, publicRef)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestKeywordSearch_TieKeepsInsertionOrder(t *testing.T) {
	docs := []domain.SearchDocument{
		{Body: "sunset", Record: domain.ImageRecord{ImageName: "first.jpg"}},
		{Body: "sunset", Record: domain.ImageRecord{ImageName: "second.jpg"}},
	}

	results := KeywordSearch(docs, "sunset", 5, publicRef)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.ImageName != "first.jpg" || results[1].Record.ImageName != "second.jpg" {
		t.Errorf("equal scores must keep insertion order, got %q then %q",
			results[0].Record.ImageName, results[1].Record.ImageName)
	}
}

func TestKeywordSearch_LimitApplied(t *testing.T) {
	docs := make([]domain.SearchDocument, 10)
	for i := range docs {
		docs[i] = domain.SearchDocument{Body: "forest", Record: domain.ImageRecord{ImageName: "f.jpg"}}
	}

	results := KeywordSearch(docs, "forest", 3, publicRef)
	if len(results) != 3 {
		t.Errorf("expected limit cut to 3, got %d", len(results))
	}
}

func TestKeywordSearch_EndToEndScenario(t *testing.T) {
	beach := domain.ImageRecord{
		NumberOfPeople: 2, SignUsed: "thumbs up",
		LandscapeDescription: "outdoor beach", Weather: "sunny",
		Mood: "happy", ImageName: "a.jpg",
	}
	office := domain.ImageRecord{
		NumberOfPeople: 0, SignUsed: "none",
		LandscapeDescription: "indoor office", Weather: "unknown",
		Mood: "calm", ImageName: "b.jpg",
	}
	docs := []domain.SearchDocument{docOf(beach), docOf(office)}

	results := KeywordSearch(docs, "people giving thumbs up", 5, publicRef)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Record.ImageName != "a.jpg" {
		t.Fatalf("expected a.jpg ranked first, got %q", results[0].Record.ImageName)
	}
	if *results[0].Score <= 0 {
		t.Errorf("expected positive score for a.jpg, got %v", *results[0].Score)
	}
	if results[0].ImageRef != "/public/a.jpg" {
		t.Errorf("expected image reference built by ref, got %q", results[0].ImageRef)
	}
	if len(results) > 1 && *results[1].Score >= *results[0].Score {
		t.Errorf("expected a.jpg to outrank b.jpg, scores %v vs %v",
			*results[0].Score, *results[1].Score)
	}
}
