package search

import (
	"sort"
	"strings"

	"github.com/snapquery/snapquery/internal/domain"
)

// Scoring constants. These are tuned values carried over from the system this
// service replaced; changing any of them is a deliberate ranking decision,
// not a cleanup.
const (
	termOccurrenceWeight = 2
	signBonus            = 10
	perPersonBonus       = 3
	fieldBonus           = 5
)

// KeywordSearch runs the deterministic fallback scorer over the documents.
// Documents scoring zero are excluded; the rest are ordered by descending
// score with ties broken by document insertion order. Returns at most limit
// results with image references built by ref.
func KeywordSearch(
	docs []domain.SearchDocument, query string, limit int, ref func(name string) string,
) []domain.SearchResult {
	queryLower := strings.ToLower(query)
	expanded := ExpandQuery(queryLower)

	type scoredDoc struct {
		doc   domain.SearchDocument
		score float64
	}

	scored := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		score := scoreDocument(doc, queryLower, expanded)
		if score > 0 {
			scored = append(scored, scoredDoc{doc: doc, score: score})
		}
	}

	// Stable: equal scores keep insertion order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	results := make([]domain.SearchResult, len(scored))
	for i, s := range scored {
		results[i] = domain.NewSearchResult(
			ref(s.doc.Record.ImageName), s.doc.Record, s.doc.Body, s.score,
		)
	}
	return results
}

func scoreDocument(doc domain.SearchDocument, queryLower string, expanded map[string]struct{}) float64 {
	content := strings.ToLower(doc.Body)
	rec := doc.Record

	score := 0
	for term := range expanded {
		score += strings.Count(content, term) * termOccurrenceWeight
	}

	// Structured bonuses are independently additive.
	if strings.Contains(queryLower, "thumbs") && strings.Contains(strings.ToLower(rec.SignUsed), "thumbs") {
		score += signBonus
	}
	if strings.Contains(queryLower, "peace") && strings.Contains(strings.ToLower(rec.SignUsed), "peace") {
		score += signBonus
	}
	if strings.Contains(queryLower, "people") && rec.NumberOfPeople > 0 {
		score += rec.NumberOfPeople * perPersonBonus
	}
	if strings.Contains(queryLower, "outdoor") &&
		strings.Contains(strings.ToLower(rec.LandscapeDescription), "outdoor") {
		score += fieldBonus
	}
	if strings.Contains(queryLower, "indoor") &&
		strings.Contains(strings.ToLower(rec.LandscapeDescription), "indoor") {
		score += fieldBonus
	}
	if strings.Contains(queryLower, "sunny") && strings.Contains(strings.ToLower(rec.Weather), "sunny") {
		score += fieldBonus
	}

	return float64(score)
}
