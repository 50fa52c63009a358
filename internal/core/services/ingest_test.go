package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/veritas/internal/core/domain"
)

func newTestIngest(t *testing.T, parsers *mockParserRegistry, embedder *mockEmbeddingService, opts ...IngestOption) (*IngestService, *Session, *memory.DocumentStore) {
	t.Helper()
	session := NewSession(newFlatIndex(t, 3), "")
	docs := memory.NewDocumentStore()
	svc := NewIngestService(parsers, &mockPipeline{}, embedder, session, docs, opts...)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, session, docs
}

func TestIngestService_TextDocument(t *testing.T) {
	svc, session, docs := newTestIngest(t, &mockParserRegistry{}, &mockEmbeddingService{})
	raw := &domain.RawDocument{
		Source:   "guide.txt",
		URI:      "/tmp/guide.txt",
		MIMEType: "text/plain",
		Content:  []byte("Pump Installation Guide, revision 2018\n\nMount the pump on a level concrete base before wiring."),
	}

	report, err := svc.Ingest(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 2, session.Count())
	assert.Equal(t, 1, report.Units)
	assert.Zero(t, report.TableRows)
	assert.Equal(t, "Pump Installation Guide, revision 2018", report.Document.Title)
	assert.Equal(t, "2018", report.Document.YearHint)
	assert.Equal(t, 2, report.Document.Blocks)
	assert.Equal(t, 2, report.Document.Chunks)

	stored, err := docs.GetDocument(context.Background(), report.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Document, *stored)
}

func TestIngestService_ReingestCountsPrevious(t *testing.T) {
	svc, session, docs := newTestIngest(t, &mockParserRegistry{}, &mockEmbeddingService{})
	raw := &domain.RawDocument{
		Source:  "notes.txt",
		Content: []byte("The maintenance interval for the pump is six months."),
	}

	first, err := svc.Ingest(context.Background(), raw)
	require.NoError(t, err)
	assert.Zero(t, first.Previous)

	second, err := svc.Ingest(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Previous)
	assert.NotEqual(t, first.Document.ID, second.Document.ID)
	assert.Equal(t, 2, session.Count())

	all, err := docs.FindBySource(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestIngestService_NameValTable(t *testing.T) {
	parsers := &mockParserRegistry{doc: &domain.ParsedDocument{
		Source: "t.csv",
		Format: domain.FormatCSV,
		Title:  "Values",
		Units: []domain.Unit{{
			Tables: []domain.Table{{Rows: [][]string{{"Name", "Val"}, {"x", "1"}, {"y", "2"}}}},
		}},
	}}
	svc, session, _ := newTestIngest(t, parsers, &mockEmbeddingService{})

	report, err := svc.Ingest(context.Background(), &domain.RawDocument{Source: "t.csv", Content: []byte("Name,Val\nx,1\ny,2")})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TableRows)
	assert.Equal(t, "Values", report.Document.Title)
	assert.Equal(t, 2, session.Count())
}

func TestIngestService_ShortTextHasNoChunks(t *testing.T) {
	embedder := &mockEmbeddingService{}
	svc, session, docs := newTestIngest(t, &mockParserRegistry{}, embedder)

	_, err := svc.Ingest(context.Background(), &domain.RawDocument{Source: "hello.txt", Content: []byte("Hello world.")})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Zero(t, session.Count())
	assert.Empty(t, embedder.batchSizes)

	all, _ := docs.ListDocuments(context.Background())
	assert.Empty(t, all)
}

func TestIngestService_EmbedsInBoundedBatches(t *testing.T) {
	var paras []string
	for i := range 10 {
		paras = append(paras, fmt.Sprintf("Paragraph number %d carries enough words to be kept.", i))
	}
	embedder := &mockEmbeddingService{}
	svc, session, _ := newTestIngest(t, &mockParserRegistry{}, embedder, WithEmbedBatching(3, 2))

	_, err := svc.Ingest(context.Background(), &domain.RawDocument{Source: "long.txt", Content: []byte(strings.Join(paras, "\n\n"))})
	require.NoError(t, err)

	assert.Equal(t, 10, session.Count())
	assert.ElementsMatch(t, []int{3, 3, 3, 1}, embedder.batchSizes)
	assert.LessOrEqual(t, embedder.maxInFlight.Load(), int32(2))
}

func TestIngestService_PreservesChunkOrder(t *testing.T) {
	texts := []string{
		"First paragraph about the impeller design.",
		"Second paragraph about the volute casing.",
		"Third paragraph about the shaft seal kit.",
	}
	embedder := &mockEmbeddingService{vectors: map[string][]float32{
		texts[0]: {1, 0, 0},
		texts[1]: {0, 1, 0},
		texts[2]: {0, 0, 1},
	}}
	svc, session, _ := newTestIngest(t, &mockParserRegistry{}, embedder, WithEmbedBatching(1, 3))

	_, err := svc.Ingest(context.Background(), &domain.RawDocument{Source: "p.txt", Content: []byte(strings.Join(texts, "\n\n"))})
	require.NoError(t, err)

	for i, q := range [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		got, err := session.Search(q, 1)
		require.NoError(t, err)
		assert.Equal(t, texts[i], got[0].Record.Text)
	}
}

func TestIngestService_FailuresDoNotMutateIndex(t *testing.T) {
	content := []byte("A paragraph that is long enough to become a chunk.")

	tests := []struct {
		name     string
		parsers  *mockParserRegistry
		embedder *mockEmbeddingService
		wantErr  error
	}{
		{"unsupported format", &mockParserRegistry{err: domain.ErrUnsupportedFormat}, &mockEmbeddingService{}, domain.ErrUnsupportedFormat},
		{"embedding failure", &mockParserRegistry{}, &mockEmbeddingService{batchErr: errors.New("boom")}, domain.ErrEmbeddingUnavailable},
		{"dimension mismatch", &mockParserRegistry{}, &mockEmbeddingService{fallback: []float32{1, 0}}, domain.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, session, docs := newTestIngest(t, tt.parsers, tt.embedder)

			_, err := svc.Ingest(context.Background(), &domain.RawDocument{Source: "a.txt", Content: content})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, session.Count())
			all, _ := docs.ListDocuments(context.Background())
			assert.Empty(t, all)
		})
	}
}

func TestIngestService_InputErrors(t *testing.T) {
	svc, _, _ := newTestIngest(t, &mockParserRegistry{}, &mockEmbeddingService{})

	_, err := svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), &domain.RawDocument{Source: "empty.txt"})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngestService_SaveFailureRollsBack(t *testing.T) {
	idx := failingSaveIndex{newFlatIndex(t, 3)}
	session := NewSession(idx, filepath.Join(t.TempDir(), "veritas"))
	docs := memory.NewDocumentStore()
	svc := NewIngestService(&mockParserRegistry{}, &mockPipeline{}, &mockEmbeddingService{}, session, docs)

	_, err := svc.Ingest(context.Background(), &domain.RawDocument{
		Source:  "a.txt",
		Content: []byte("A paragraph that is long enough to become a chunk."),
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, session.Count())
}
