package extract

import (
	"strings"

	"github.com/snapquery/snapquery/internal/domain"
)

var (
	personWords  = []string{"person", "people", "man", "woman", "child", "boy", "girl"}
	signKeywords = []string{"v-sign", "peace", "thumbs up", "victory"}
	// weatherWords are checked in priority order; the first match wins.
	weatherWords = []string{"sunny", "cloudy", "rainy", "clear", "overcast", "bright"}
)

const landscapeMaxLen = 100

// FallbackRecord derives a best-effort record from raw description text
// without any JSON parsing. Pure, total, and deterministic: the same input
// always yields the same record.
func FallbackRecord(description, imageName string) domain.ImageRecord {
	lower := strings.ToLower(description)

	peopleCount := 0
	for _, word := range personWords {
		peopleCount += strings.Count(lower, word)
	}
	if peopleCount > domain.MaxPeopleCount {
		peopleCount = domain.MaxPeopleCount
	}

	sign := domain.NoSign
	for _, kw := range signKeywords {
		if strings.Contains(lower, kw) {
			sign = "hand signs detected"
			break
		}
	}

	weather := domain.UnknownValue
	for _, word := range weatherWords {
		if strings.Contains(lower, word) {
			weather = word
			break
		}
	}

	landscape := description
	if runes := []rune(landscape); len(runes) > landscapeMaxLen {
		landscape = string(runes[:landscapeMaxLen]) + "..."
	}

	return domain.ImageRecord{
		ImageName:            imageName,
		NumberOfPeople:       peopleCount,
		SignUsed:             sign,
		LandscapeDescription: landscape,
		Weather:              weather,
		Mood:                 domain.NeutralMood,
	}
}
