package domain

// KeyPrefix namespaces every Redis key written by this service.
const KeyPrefix = "snapquery:"

// VectorConfig describes the embedding vector layout for the semantic index.
type VectorConfig struct {
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the embedding defaults used when the
// vectorizer config leaves dimensions unset.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Dimensions:     1536,
		DistanceMetric: "COSINE",
	}
}
