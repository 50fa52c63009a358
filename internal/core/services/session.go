package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Session owns the process-wide vector index and its persisted artifacts.
// One exclusive lock serialises every search and every add+save commit.
// Embedding, scoring and generation run outside the lock.
type Session struct {
	mu     sync.Mutex
	index  driven.VectorIndex
	prefix string
}

// NewSession wraps an index. An empty prefix keeps the index in memory only.
func NewSession(index driven.VectorIndex, prefix string) *Session {
	return &Session{index: index, prefix: prefix}
}

// Load restores the persisted pair. Any failure leaves the index empty and is
// returned so the caller can report "no prior index".
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefix == "" {
		return nil
	}
	if err := s.index.Load(s.prefix); err != nil {
		logger.Warn("No prior index at %s: %v", s.prefix, err)
		return err
	}
	logger.Info("Loaded index %s: %d records", s.prefix, s.index.Count())
	return nil
}

// Search runs a nearest-neighbour query under the lock.
func (s *Session) Search(query []float32, k int) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index.Count() == 0 {
		return []domain.Candidate{}, nil
	}
	return s.index.Search(query, k)
}

// Commit appends one ingest batch and persists it as a single atomic step.
// If saving fails the appended records are dropped again, so the in-memory
// index never holds records the artifacts do not.
func (s *Session) Commit(vectors [][]float32, records []domain.EvidenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.index.Count()
	if err := s.index.Add(vectors, records); err != nil {
		return fmt.Errorf("add to index: %w", err)
	}

	if s.prefix == "" {
		return nil
	}

	if err := s.index.Save(s.prefix); err != nil {
		if terr := s.index.Truncate(before); terr != nil {
			return fmt.Errorf("save index: %w", errors.Join(err, terr))
		}
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Count returns the number of committed records.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Count()
}

// Dimensions returns the fixed vector size of the index.
func (s *Session) Dimensions() int {
	return s.index.Dimensions()
}

// Prefix returns the artifact path prefix.
func (s *Session) Prefix() string {
	return s.prefix
}
