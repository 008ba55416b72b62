package domain

import (
	"fmt"
	"strings"
)

// SearchDocument pairs a synthesized searchable text body with the record it
// was derived from. Built once per record at indexing time; never mutated.
type SearchDocument struct {
	Body   string
	Record ImageRecord
}

// BuildDocuments converts records into search documents, 1:1 and order
// preserving. The body combines label:value lines with derived vocabulary so
// downstream matching works on terms a user would actually type.
func BuildDocuments(records []ImageRecord) []SearchDocument {
	docs := make([]SearchDocument, len(records))
	for i, rec := range records {
		docs[i] = SearchDocument{
			Body:   buildBody(rec),
			Record: rec,
		}
	}
	return docs
}

func buildBody(rec ImageRecord) string {
	parts := []string{
		"Setting: " + rec.LandscapeDescription,
		"Mood: " + rec.Mood,
		"Weather: " + rec.Weather,
		fmt.Sprintf("People count: %d", rec.NumberOfPeople),
		"Hand signs: " + rec.SignUsed,
	}
	parts = append(parts, derivedTerms(rec)...)
	return strings.Join(parts, " ")
}

// derivedTerms applies the fixed enrichment rules. Categories are independent
// of each other; within a category the first matching branch wins.
func derivedTerms(rec ImageRecord) []string {
	var terms []string

	switch {
	case rec.NumberOfPeople == 0:
		terms = append(terms, "no people")
	case rec.NumberOfPeople == 1:
		terms = append(terms, "single person")
	default:
		terms = append(terms, "multiple people", "group")
	}

	sign := strings.ToLower(rec.SignUsed)
	switch {
	case strings.Contains(sign, "thumbs"):
		terms = append(terms, "thumbs up", "positive gesture", "approval")
	case strings.Contains(sign, "peace") || strings.Contains(sign, "v-sign"):
		terms = append(terms, "peace sign", "v sign", "victory")
	case sign != NoSign && sign != "":
		terms = append(terms, "hand gesture")
	}

	switch strings.ToLower(rec.Weather) {
	case "sunny", "clear", "bright":
		terms = append(terms, "sunny", "bright", "good weather", "clear sky")
	case "cloudy", "overcast":
		terms = append(terms, "cloudy", "overcast", "gray sky")
	}

	landscape := strings.ToLower(rec.LandscapeDescription)
	switch {
	case strings.Contains(landscape, "outdoor") || strings.Contains(landscape, "outside"):
		terms = append(terms, "outdoor", "outside", "nature")
	case strings.Contains(landscape, "indoor") || strings.Contains(landscape, "inside"):
		terms = append(terms, "indoor", "inside")
	}

	switch {
	case strings.Contains(landscape, "beach"):
		terms = append(terms, "beach", "sand", "ocean", "seaside")
	case strings.Contains(landscape, "mountain"):
		terms = append(terms, "mountain", "hills", "elevation")
	case strings.Contains(landscape, "city"):
		terms = append(terms, "city", "urban", "buildings")
	}

	return terms
}
