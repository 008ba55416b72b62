// Package chi exposes the HTTP API: batch upload and processing, per-batch
// search, status, image serving, health and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
	logpkg "github.com/snapquery/snapquery/internal/logger"
	batchuc "github.com/snapquery/snapquery/internal/usecase/batch"
	healthuc "github.com/snapquery/snapquery/internal/usecase/health"
	processuc "github.com/snapquery/snapquery/internal/usecase/process"
	searchuc "github.com/snapquery/snapquery/internal/usecase/search"
)

const maxUploadBytes = 64 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	process       *processuc.Service
	registry      *batchuc.Registry
	health        *healthuc.Service
	logger        *zap.Logger
	publicDir     string
	maxBatchSize  int
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server. publicDir is the local image
// directory served under /public; empty disables local serving (object
// storage backends expose their own URLs).
func NewServer(
	process *processuc.Service,
	registry *batchuc.Registry,
	health *healthuc.Service,
	publicDir string,
	maxBatchSize int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		process:      process,
		registry:     registry,
		health:       health,
		logger:       logger,
		publicDir:    publicDir,
		maxBatchSize: maxBatchSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBatchNotFound, http.StatusNotFound, "batch_not_found"),
		sentinelHandler(domain.ErrNoValidImages, http.StatusBadRequest, "no_valid_images"),
		sentinelHandler(domain.ErrNotIndexed, http.StatusBadRequest, "not_indexed"),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, "empty_query"),
		sentinelHandler(domain.ErrDescribeFailed, http.StatusBadGateway, "vision_provider_error"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrVectorIndexUnavailable, http.StatusBadGateway, "vector_index_unavailable"),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/batches", s.CreateBatch)
		r.Get("/batches/{batchID}", s.GetBatch)
		r.Post("/batches/{batchID}/search", s.SearchBatch)
	})
	r.Get("/status", s.Status)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	if s.publicDir != "" {
		fs := http.StripPrefix("/public/", http.FileServer(http.Dir(s.publicDir)))
		r.Get("/public/*", fs.ServeHTTP)
	}
}

type batchResponse struct {
	BatchID        string               `json:"batch_id"`
	CreatedAt      time.Time            `json:"created_at"`
	ProcessedCount int                  `json:"processed_count"`
	Metadata       []domain.ImageRecord `json:"metadata"`
	SemanticIndex  bool                 `json:"semantic_index"`
}

func batchToResponse(b *batchuc.Batch) batchResponse {
	return batchResponse{
		BatchID:        b.ID,
		CreatedAt:      b.CreatedAt,
		ProcessedCount: len(b.Records),
		Metadata:       b.Records,
		SemanticIndex:  b.Retriever.SemanticReady(),
	}
}

// CreateBatch handles POST /api/v1/batches: multipart "images" files are
// processed into a new searchable batch.
func (s *Server) CreateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid multipart body: "+err.Error())
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no_valid_images", "At least one image file is required")
		return
	}
	if len(files) > s.maxBatchSize {
		writeError(w, http.StatusBadRequest, "batch_too_large",
			fmt.Sprintf("At most %d images per batch", s.maxBatchSize))
		return
	}

	uploads := make([]processuc.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Open upload "+fh.Filename+": "+err.Error())
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Read upload "+fh.Filename+": "+err.Error())
			return
		}
		uploads = append(uploads, processuc.Upload{
			Name: fh.Filename,
			MIME: uploadMIME(fh.Header.Get("Content-Type")),
			Data: data,
		})
	}

	b, err := s.process.Process(r.Context(), uploads)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, batchToResponse(b))
}

// GetBatch handles GET /api/v1/batches/{batchID}.
func (s *Server) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.registry.Get(chi.URLParam(r, "batchID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResponse(b))
}

// DefaultLimit mirrors the retriever default so clients see a stable value
// in API docs.
const DefaultLimit = searchuc.DefaultLimit

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

// SearchBatch handles POST /api/v1/batches/{batchID}/search.
func (s *Server) SearchBatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.registry.Get(chi.URLParam(r, "batchID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	results, err := b.Retriever.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Results: results})
}

type statusResponse struct {
	Batches              int    `json:"batches"`
	MetadataCount        int    `json:"metadata_count"`
	RetrieverInitialized bool   `json:"retriever_initialized"`
	SemanticIndex        bool   `json:"semantic_index"`
	LatestBatchID        string `json:"latest_batch_id,omitempty"`
}

// Status handles GET /status with processing counters.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Batches:       s.registry.Count(),
		MetadataCount: s.registry.TotalRecords(),
	}
	if latest, ok := s.registry.Latest(); ok {
		resp.RetrieverInitialized = true
		resp.SemanticIndex = latest.Retriever.SemanticReady()
		resp.LatestBatchID = latest.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBatchNotFound,
		domain.ErrNoValidImages,
		domain.ErrNotIndexed,
		domain.ErrEmptyQuery,
		domain.ErrDescribeFailed,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// log returns the request-scoped logger installed by the wide-event
// middleware, falling back to the server logger outside a request scope.
func (s *Server) log(r *http.Request) *zap.Logger {
	if l, ok := logpkg.LoggerFromContext(r.Context()); ok {
		return l
	}
	return s.logger
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func uploadMIME(header string) string {
	if header == "" {
		return "image/jpeg"
	}
	return header
}
