package mcp

import (
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search selects evidence without generating.
	Search driving.SearchService

	// Answer answers questions from evidence. Optional: without it the
	// ask tool is not offered.
	Answer driving.AnswerService

	// Document exposes the ingest catalogue. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
