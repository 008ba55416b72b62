package domain

// SearchResult is a single ranked hit for a query. Ephemeral, produced per
// search call. Score is nil when the ranking backend does not expose one.
type SearchResult struct {
	ImageRef       string      `json:"image_url"`
	Record         ImageRecord `json:"metadata"`
	MatchedContent string      `json:"content"`
	Score          *float64    `json:"score,omitempty"`
}

// NewSearchResult creates a result with an explicit score.
func NewSearchResult(imageRef string, rec ImageRecord, content string, score float64) SearchResult {
	return SearchResult{
		ImageRef:       imageRef,
		Record:         rec,
		MatchedContent: content,
		Score:          &score,
	}
}
