package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Embedding batch shape used during ingest.
const (
	DefaultEmbedBatchSize   = 32
	DefaultEmbedConcurrency = 4
)

// IngestService runs the ingest pipeline:
// parse, structure, chunk, embed, commit, catalogue.
type IngestService struct {
	parsers     driven.ParserRegistry
	structurer  *DocumentStructurer
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	session     *Session
	docStore    driven.DocumentStore
	batchSize   int
	concurrency int
	now         func() time.Time
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithEmbedBatching sets the batch size and the number of batches embedded concurrently.
func WithEmbedBatching(size, concurrency int) IngestOption {
	return func(s *IngestService) {
		if size > 0 {
			s.batchSize = size
		}
		if concurrency > 0 {
			s.concurrency = concurrency
		}
	}
}

// NewIngestService creates a new ingest service.
// The document store is optional; without it ingests are not catalogued.
func NewIngestService(
	parsers driven.ParserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	session *Session,
	docStore driven.DocumentStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		parsers:     parsers,
		structurer:  NewDocumentStructurer(),
		pipeline:    pipeline,
		embedder:    embedder,
		session:     session,
		docStore:    docStore,
		batchSize:   DefaultEmbedBatchSize,
		concurrency: DefaultEmbedConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest adds one document to the index. Input and external-call failures
// abort before the index is touched.
func (s *IngestService) Ingest(ctx context.Context, raw *domain.RawDocument) (*driving.IngestReport, error) {
	if raw == nil {
		return nil, fmt.Errorf("ingest: nil document: %w", domain.ErrInvalidInput)
	}
	logger.Section("Ingest " + raw.Source)

	if len(raw.Content) == 0 {
		return nil, fmt.Errorf("ingest %s: %w", raw.Source, domain.ErrEmptyDocument)
	}

	parsed, err := s.parsers.Parse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", raw.Source, err)
	}
	logger.Debug("Parsed %s as %s: %d units", raw.Source, parsed.Format, len(parsed.Units))

	blocks, err := s.structurer.Structure(parsed)
	if err != nil {
		return nil, err
	}

	chunks, err := s.pipeline.Process(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", raw.Source, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ingest %s: no chunks above minimum length: %w", raw.Source, domain.ErrEmptyDocument)
	}
	logger.Debug("Chunked %d blocks into %d chunks", len(blocks), len(chunks))

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	previous := s.previousEntries(ctx, raw.Source)

	records := make([]domain.EvidenceRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.RecordFromChunk(c)
	}
	if err := s.session.Commit(vectors, records); err != nil {
		return nil, fmt.Errorf("commit %s: %w", raw.Source, err)
	}
	logger.Info("Committed %d records from %s", len(records), raw.Source)

	report := &driving.IngestReport{
		Document:  s.catalogueEntry(raw, parsed, blocks, len(chunks)),
		Units:     len(parsed.Units),
		TableRows: countTableRows(blocks),
		Previous:  previous,
	}

	if s.docStore != nil {
		if err := s.docStore.SaveDocument(ctx, &report.Document); err != nil {
			return nil, fmt.Errorf("record %s in catalogue: %w", raw.Source, err)
		}
	}

	return report, nil
}

// previousEntries counts catalogue entries for source. Lookup failures are
// logged and treated as none.
func (s *IngestService) previousEntries(ctx context.Context, source string) int {
	if s.docStore == nil {
		return 0
	}
	docs, err := s.docStore.FindBySource(ctx, source)
	if err != nil {
		logger.Warn("Catalogue lookup for %s failed: %v", source, err)
		return 0
	}
	if len(docs) > 0 {
		logger.Warn("%s was ingested %d time(s) before; its earlier evidence is kept", source, len(docs))
	}
	return len(docs)
}

// embed computes vectors in fixed-size batches, several batches at a time.
// Results keep chunk order.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embed chunks: %w", domain.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Text
			}
			batch, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w: %w", start, end, domain.ErrEmbeddingUnavailable, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors: %w", start, end, len(batch), domain.ErrShapeMismatch)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (s *IngestService) catalogueEntry(
	raw *domain.RawDocument, parsed *domain.ParsedDocument, blocks []domain.Block, chunks int,
) domain.Document {
	doc := domain.Document{
		ID:         uuid.New().String(),
		Source:     raw.Source,
		URI:        raw.URI,
		MIMEType:   raw.MIMEType,
		Title:      parsed.Title,
		Blocks:     len(blocks),
		Chunks:     chunks,
		IngestedAt: s.now(),
	}
	for _, b := range blocks {
		if b.DocMetadata == nil {
			continue
		}
		if doc.Title == "" {
			doc.Title = b.DocMetadata.TitleHint
		}
		doc.YearHint = b.DocMetadata.YearHint
		break
	}
	if doc.Title == "" {
		doc.Title = raw.Source
	}
	return doc
}

func countTableRows(blocks []domain.Block) int {
	n := 0
	for _, b := range blocks {
		if b.IsTableRow() {
			n++
		}
	}
	return n
}
