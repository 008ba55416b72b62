// Package process turns uploaded images into a searchable batch: store the
// bytes, describe each image, extract structured metadata, build documents,
// and hand the batch a retriever with a best-effort semantic index.
package process

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/snapquery/snapquery/internal/domain"
	"github.com/snapquery/snapquery/internal/metrics"
	"github.com/snapquery/snapquery/internal/usecase/batch"
	"github.com/snapquery/snapquery/internal/usecase/search"
)

// DefaultConcurrency bounds parallel description calls per batch.
const DefaultConcurrency = 4

// Upload is one incoming image file.
type Upload struct {
	Name string
	MIME string
	Data []byte
}

// Service processes upload batches. Description calls for different images
// are independent and run concurrently; record order always follows upload
// order so document indices stay deterministic.
type Service struct {
	describer   Describer
	extractor   Extractor
	images      ImageStore
	index       search.VectorIndex
	registry    *batch.Registry
	logger      *zap.Logger
	concurrency int
}

// New creates a processing service. index may be nil when no vector store
// is configured.
func New(
	describer Describer,
	extractor Extractor,
	images ImageStore,
	index search.VectorIndex,
	registry *batch.Registry,
	logger *zap.Logger,
) *Service {
	return &Service{
		describer:   describer,
		extractor:   extractor,
		images:      images,
		index:       index,
		registry:    registry,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// WithConcurrency overrides the description parallelism.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Process runs the full pipeline over a batch of uploads. Per-image failures
// (storage, description) skip the image and continue; the batch fails only
// when no image yields a record.
func (s *Service) Process(ctx context.Context, uploads []Upload) (*batch.Batch, error) {
	if len(uploads) == 0 {
		return nil, domain.ErrNoValidImages
	}

	records := s.extractRecords(ctx, uploads)
	if len(records) == 0 {
		return nil, domain.ErrNoValidImages
	}

	docs := domain.BuildDocuments(records)

	b := batch.New(records)
	retr := search.NewRetriever(b.ID, docs, s.index, refFunc(s.images.Ref), s.logger)
	retr.BuildIndex(ctx)
	b.Retriever = retr

	s.registry.Add(b)

	s.logger.Info("batch processed",
		zap.String("batch_id", b.ID),
		zap.Int("uploaded", len(uploads)),
		zap.Int("processed", len(records)),
		zap.Bool("semantic_index", retr.SemanticReady()))
	return b, nil
}

// extractRecords stores, describes, and extracts every upload. The result
// slice preserves upload order with failed images removed.
func (s *Service) extractRecords(ctx context.Context, uploads []Upload) []domain.ImageRecord {
	type slot struct {
		rec domain.ImageRecord
		ok  bool
	}

	slots := make([]slot, len(uploads))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, u := range uploads {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u Upload) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, ok := s.processOne(ctx, u)
			slots[i] = slot{rec: rec, ok: ok}
		}(i, u)
	}
	wg.Wait()

	records := make([]domain.ImageRecord, 0, len(uploads))
	for _, sl := range slots {
		if sl.ok {
			records = append(records, sl.rec)
		}
	}
	return records
}

func (s *Service) processOne(ctx context.Context, u Upload) (domain.ImageRecord, bool) {
	storedName, err := s.images.Save(ctx, u.Name, u.Data)
	if err != nil {
		metrics.ImagesProcessedTotal.WithLabelValues("skipped").Inc()
		s.logger.Warn("image store failed, skipping image",
			zap.String("image", u.Name), zap.Error(err))
		return domain.ImageRecord{}, false
	}

	desc, err := s.describer.Describe(ctx, domain.Image{Name: storedName, MIME: u.MIME, Data: u.Data})
	if err != nil {
		metrics.ImagesProcessedTotal.WithLabelValues("skipped").Inc()
		s.logger.Warn("description failed, skipping image",
			zap.String("image", storedName), zap.Error(err))
		return domain.ImageRecord{}, false
	}

	rec := s.extractor.Extract(ctx, desc, storedName)
	metrics.ImagesProcessedTotal.WithLabelValues("ok").Inc()
	return rec, true
}

// refFunc adapts a Ref method to search.Referencer.
type refFunc func(name string) string

func (f refFunc) Ref(name string) string { return f(name) }
