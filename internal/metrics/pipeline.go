package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics: vision, extraction, embedding, and search.
var (
	VisionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "vision_requests_total",
			Help:      "Total number of image description requests",
		},
		[]string{"provider", "status"},
	)

	VisionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapquery",
			Name:      "vision_request_duration_seconds",
			Help:      "Image description request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	ExtractionFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "extraction_fallback_total",
			Help:      "Total structured extractions that used the keyword heuristic",
		},
	)

	ImagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "images_processed_total",
			Help:      "Total images handled by batch processing",
		},
		[]string{"status"}, // "ok" / "skipped"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "snapquery",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapquery",
			Name:      "search_fallback_total",
			Help:      "Searches answered by the keyword scorer instead of the semantic index",
		},
		[]string{"reason"}, // "error" / "empty" / "unindexed"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(VisionRequestsTotal)
	prometheus.MustRegister(VisionRequestDuration)
	prometheus.MustRegister(ExtractionFallbackTotal)
	prometheus.MustRegister(ImagesProcessedTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	pipelineMetricsRegistered = true
}
