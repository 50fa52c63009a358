// Package mcp provides an MCP (Model Context Protocol) server adapter for veritas.
// It lets AI assistants ask grounded questions and inspect the evidence index.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// toolError adds a hint an assistant can act on to failures it cannot fix itself.
func toolError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Errorf("%s: index and embedding model disagree, re-ingest into a new collection: %w", op, err)
	case errors.Is(err, domain.ErrExternalCall):
		return fmt.Errorf("%s: model service unavailable: %w", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
