package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts listed in vectors get that vector; everything else gets fallback.
type mockEmbeddingService struct {
	dims     int
	vectors  map[string][]float32
	fallback []float32
	embedErr error
	batchErr error

	mu          sync.Mutex
	batchSizes  []int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	embedCalls  atomic.Int32
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	if m.fallback != nil {
		return m.fallback
	}
	v := make([]float32, m.Dimensions())
	v[0] = 1
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()

	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastSystem, m.lastUser, m.lastOpts = system, user, opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockScorer implements driven.RelevanceScorer for testing.
// Texts missing from scores get zero.
type mockScorer struct {
	scores map[string]float64
	err    error
	short  bool
	calls  int
	texts  []string
}

func (m *mockScorer) ScorePairs(_ context.Context, _ string, texts []string) ([]float64, error) {
	m.calls++
	m.texts = texts
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(texts))
	for i, t := range texts {
		out[i] = m.scores[t]
	}
	if m.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockScorer) ModelName() string { return "mock-scorer" }

func (m *mockScorer) Close() error { return nil }

// mockParserRegistry implements driven.ParserRegistry for testing.
type mockParserRegistry struct {
	doc *domain.ParsedDocument
	err error
}

func (m *mockParserRegistry) Parse(_ context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc != nil {
		return m.doc, nil
	}
	return &domain.ParsedDocument{
		Source: raw.Source,
		Format: domain.FormatText,
		Units:  []domain.Unit{{Text: string(raw.Content)}},
	}, nil
}

func (m *mockParserRegistry) Register(_ driven.Parser) {}

func (m *mockParserRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockPipeline implements driven.PostProcessorPipeline by emitting one chunk per block.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, blocks []domain.Block) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	chunks := make([]domain.Chunk, 0, len(blocks))
	for _, b := range blocks {
		if len(b.Text) < 30 && !b.IsTableRow() {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID: "c-" + b.ID, BlockID: b.ID, Text: b.Text, Type: b.Type,
			Source: b.Source, Page: b.Page, DocLevel: b.DocLevel, Table: b.Table,
		})
	}
	return chunks, nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("prompt not found")
}

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embedErr  error
	llmErr    error
	lastEmbed *domain.ProviderSettings
	lastLLM   *domain.ProviderSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.ProviderSettings) error {
	m.lastEmbed = cfg
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.ProviderSettings) error {
	m.lastLLM = cfg
	return m.llmErr
}

// failingSaveIndex is a flat index whose Save always fails.
type failingSaveIndex struct {
	*flat.Index
}

func (f failingSaveIndex) Save(string) error {
	return domain.ErrPersistence
}

// --- Test helpers ---

func newFlatIndex(t *testing.T, dim int) *flat.Index {
	t.Helper()
	x, err := flat.New(dim)
	require.NoError(t, err)
	return x
}

// seedSession commits records with the given vectors into an in-memory session.
func seedSession(t *testing.T, dim int, vectors [][]float32, records []domain.EvidenceRecord) *Session {
	t.Helper()
	s := NewSession(newFlatIndex(t, dim), "")
	if len(records) > 0 {
		require.NoError(t, s.Commit(vectors, records))
	}
	return s
}

func narrativeRecord(id, text string) domain.EvidenceRecord {
	return domain.EvidenceRecord{ChunkID: id, Text: text, Type: domain.BlockNarrative, Source: "manual.pdf", Page: 1}
}

func tableRecord(id, text string) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		ChunkID: id, Text: text, Type: domain.BlockTableRow, Source: "specs.xlsx", Page: 1,
		Table: &domain.TableRef{TableID: "p1-t1-s1"},
	}
}

func candidate(rec domain.EvidenceRecord, score float64) domain.Candidate {
	return domain.Candidate{Record: rec, Score: score}
}

func chunkIDs(cs []domain.Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.Record.ChunkID
	}
	return ids
}
