// Package chunker provides a boundary-preferring recursive text splitter.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 150

// DefaultMinLength is the shortest trimmed narrative chunk that is kept.
const DefaultMinLength = 30

// separators are tried in order: paragraph, line, sentence, word, hard cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor turns blocks into chunks.
// Table rows and doc-level blocks are emitted whole; narrative blocks are
// split recursively at the coarsest boundary that fits.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	minLength int
	splitter  textsplitter.RecursiveCharacter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinLength sets the minimum trimmed length of a narrative chunk.
func WithMinLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		minLength: DefaultMinLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	p.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators(separators),
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.overlap),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
		textsplitter.WithKeepSeparator(true),
	)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process converts blocks to chunks in block order.
// Input chunks are ignored; this processor creates new chunks from the blocks.
func (p *Processor) Process(ctx context.Context, blocks []domain.Block, _ []domain.Chunk) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0, len(blocks))

	for i := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b := &blocks[i]
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}

		switch {
		case b.IsTableRow():
			chunks = append(chunks, newChunk(b, text))
		case b.DocLevel:
			if p.longEnough(text) {
				chunks = append(chunks, newChunk(b, text))
			}
		default:
			pieces, err := p.Split(text)
			if err != nil {
				return nil, err
			}
			for _, piece := range pieces {
				piece = strings.TrimSpace(piece)
				if p.longEnough(piece) {
					chunks = append(chunks, newChunk(b, piece))
				}
			}
		}
	}

	return chunks, nil
}

func (p *Processor) longEnough(s string) bool {
	return utf8.RuneCountInString(s) >= p.minLength
}

func newChunk(b *domain.Block, text string) domain.Chunk {
	return domain.Chunk{
		ID:       uuid.New().String(),
		BlockID:  b.ID,
		Text:     text,
		Type:     b.Type,
		Source:   b.Source,
		Page:     b.Page,
		DocLevel: b.DocLevel,
		Table:    b.Table,
	}
}

// Split breaks text into pieces of at most chunkSize characters, preferring
// paragraph, then line, then sentence, then word boundaries. Separators stay
// attached to the text that follows them. Adjacent pieces share up to
// overlap characters of trailing context.
func (p *Processor) Split(text string) ([]string, error) {
	pieces, err := p.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split narrative: %w", err)
	}
	return pieces, nil
}
