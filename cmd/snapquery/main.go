package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/config"
	"github.com/snapquery/snapquery/internal/db"
	dbRedis "github.com/snapquery/snapquery/internal/db/redis"
	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/extract"
	logpkg "github.com/snapquery/snapquery/internal/logger"
	"github.com/snapquery/snapquery/internal/metrics"
	"github.com/snapquery/snapquery/internal/repository/embcache"
	vectorrepo "github.com/snapquery/snapquery/internal/repository/vector"
	"github.com/snapquery/snapquery/internal/storage"
	chiTransport "github.com/snapquery/snapquery/internal/transport/chi"
	geminiTransport "github.com/snapquery/snapquery/internal/transport/gemini"
	openaiTransport "github.com/snapquery/snapquery/internal/transport/openai"
	"github.com/snapquery/snapquery/internal/usecase/batch"
	healthuc "github.com/snapquery/snapquery/internal/usecase/health"
	"github.com/snapquery/snapquery/internal/usecase/process"
	searchuc "github.com/snapquery/snapquery/internal/usecase/search"
	"github.com/snapquery/snapquery/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting snapquery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("db_addr", cfg.Database.Addr),
	)

	ctx := context.Background()

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Image storage
	images, publicDir, err := buildStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create image storage", zap.Error(err))
	}

	// Vector store is optional: without it every search uses the keyword scorer.
	var store db.Store
	if cfg.Database.Addr != "" {
		redisStore, err := dbRedis.New(dbRedis.Config{
			Addr:     cfg.Database.Addr,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create vector store", zap.Error(err))
		}
		defer redisStore.Close()

		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			logger.Warn("Vector store not ready, continuing with keyword search only", zap.Error(err))
		} else {
			store = redisStore
			logger.Info("Connected to vector store")
		}
	}

	// Gemini first, the original provider; OpenAI-compatible as alternate.
	var gemini *geminiTransport.Client
	if cfg.Vision.Gemini.APIKey != "" {
		gemini, err = geminiTransport.New(ctx, cfg.Vision.Gemini.APIKey, cfg.Vision.Gemini.Model, logger)
		if err != nil {
			logger.Fatal("Failed to create gemini client", zap.Error(err))
		}
		defer func() { _ = gemini.Close() }()
	}

	openaiCfg := &openaiTransport.Config{
		APIKey:      cfg.Vision.OpenAI.APIKey,
		BaseURL:     cfg.Vision.OpenAI.BaseURL,
		Model:       cfg.Embedding.Model,
		VisionModel: cfg.Vision.OpenAI.Model,
		Dimensions:  cfg.Embedding.Dimensions,
		Provider:    "openai",
		Logger:      logger,
	}

	var describers []domain.Describer
	if gemini != nil {
		describers = append(describers, gemini)
	}
	if cfg.Vision.OpenAI.APIKey != "" {
		describers = append(describers, openaiTransport.NewVision(openaiCfg))
	}
	if len(describers) == 0 {
		logger.Warn("No vision provider configured, metadata will come from the fallback heuristic only")
	}
	describer := process.NewChain(describers, logger)

	var generator domain.Generator
	switch {
	case gemini != nil:
		generator = gemini
	case cfg.Vision.OpenAI.APIKey != "":
		generator = openaiTransport.NewGenerator(openaiCfg)
	}
	extractor := extract.New(generator, logger)

	// Semantic index, only when both a vector store and an embedding key exist.
	var index searchuc.VectorIndex
	var embChecker healthuc.ProviderChecker
	if store != nil && cfg.Embedding.APIKey != "" {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		embChecker = base

		var embedder domain.Embedder = base
		if cfg.Embedding.Cache {
			embedder = embcache.New(base, store, logger)
		}

		vectors := domain.VectorConfig{
			Dimensions:     cfg.Embedding.Dimensions,
			DistanceMetric: domain.DefaultVectorConfig().DistanceMetric,
		}
		index = vectorrepo.New(store, embedder, base, vectors, logger)
		logger.Info("Semantic index enabled",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions))
	} else {
		logger.Info("Semantic index disabled, keyword search only")
	}

	registry := batch.NewRegistry()
	processSvc := process.New(describer, extractor, images, index, registry, logger).
		WithConcurrency(cfg.Process.Concurrency)

	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	var visionChecker healthuc.ProviderChecker
	if gemini != nil {
		visionChecker = gemini
	}
	healthSvc := healthuc.New(dbPinger, embChecker, visionChecker)

	server := chiTransport.NewServer(processSvc, registry, healthSvc, publicDir, cfg.Process.MaxBatchSize, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	// The original served a separate browser frontend; keep CORS open.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildStorage creates the configured image store. The second return value
// is the local directory to serve under /public, empty for object storage.
func buildStorage(ctx context.Context, cfg config.Config) (process.ImageStore, string, error) {
	switch cfg.Storage.Backend {
	case "minio":
		m, err := storage.NewMinio(ctx, storage.MinioConfig{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			Bucket:    cfg.Storage.Minio.Bucket,
			UseSSL:    cfg.Storage.Minio.UseSSL,
		})
		if err != nil {
			return nil, "", err
		}
		return m, "", nil
	default:
		l, err := storage.NewLocal(cfg.Storage.Dir, cfg.HTTP.BaseURL)
		if err != nil {
			return nil, "", err
		}
		return l, l.Dir(), nil
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
