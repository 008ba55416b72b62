package domain

// Default field values applied when extraction leaves a field empty.
const (
	UnknownValue = "unknown"
	NoSign       = "none"
	NeutralMood  = "neutral"
)

// MaxPeopleCount caps the people counter derived by the fallback heuristic.
const MaxPeopleCount = 10

// ImageRecord is the structured per-image metadata derived from a free-text
// description. Immutable after creation; a new processing batch replaces the
// whole in-memory store, individual records are never mutated.
type ImageRecord struct {
	ImageName            string `json:"image_name"`
	NumberOfPeople       int    `json:"number_of_people"`
	SignUsed             string `json:"sign_used"`
	LandscapeDescription string `json:"landscape_description"`
	Weather              string `json:"weather"`
	Mood                 string `json:"mood"`
}

// Normalize fills empty fields with defaults and clamps the people count to a
// non-negative value. Called once at construction, not at read sites.
func (r *ImageRecord) Normalize() {
	if r.NumberOfPeople < 0 {
		r.NumberOfPeople = 0
	}
	if r.SignUsed == "" {
		r.SignUsed = UnknownValue
	}
	if r.LandscapeDescription == "" {
		r.LandscapeDescription = UnknownValue
	}
	if r.Weather == "" {
		r.Weather = UnknownValue
	}
	if r.Mood == "" {
		r.Mood = UnknownValue
	}
}
