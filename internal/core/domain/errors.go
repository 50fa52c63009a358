package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Input Errors.

	// ErrUnsupportedFormat indicates the document type is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEmptyDocument indicates the document has no extractable text.
	ErrEmptyDocument = errors.New("empty document")

	// ErrShapeMismatch indicates vectors, texts and metadata disagree in length
	// or a vector does not have the index dimension.
	ErrShapeMismatch = errors.New("shape mismatch")

	// Configuration Errors.

	// ErrDimensionMismatch indicates the embedding dimension differs from the
	// index dimension. It is fatal: vectors are never truncated or padded.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding dimension does not match index", ErrShapeMismatch)

	// Persistence Errors.

	// ErrPersistence indicates the paired index artifacts could not be
	// written or read. On load, callers treat it as "no prior index".
	ErrPersistence = errors.New("index persistence failed")

	// External Call Errors.

	// ErrExternalCall is matched by every external collaborator failure.
	ErrExternalCall = errors.New("external call failed")

	// ErrEmbeddingUnavailable indicates the embedding service failed or is not configured.
	ErrEmbeddingUnavailable = fmt.Errorf("embedding service unavailable: %w", ErrExternalCall)

	// ErrScorerUnavailable indicates the relevance scorer failed.
	ErrScorerUnavailable = fmt.Errorf("relevance scorer unavailable: %w", ErrExternalCall)

	// ErrLLMUnavailable indicates the generation model failed or is not configured.
	ErrLLMUnavailable = fmt.Errorf("LLM service unavailable: %w", ErrExternalCall)
)
