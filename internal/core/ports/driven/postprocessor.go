package driven

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// PostProcessor turns structural blocks into chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the blocks of one document and the chunks produced so
	// far. A creating processor (e.g., chunker) receives nil chunks.
	Process(ctx context.Context, blocks []domain.Block, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the blocks through all processors in order.
	Process(ctx context.Context, blocks []domain.Block) ([]domain.Chunk, error)
}
