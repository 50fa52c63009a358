package mcp

import (
	"context"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result   *domain.SearchResult
	err      error
	gotOpts  domain.SearchOptions
	gotQuery string
}

func (m *mockSearchService) Search(
	_ context.Context,
	question string,
	opts domain.SearchOptions,
) (*domain.SearchResult, error) {
	m.gotQuery = question
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.SearchResult{Class: domain.QueryFactual}, nil
	}
	return m.result, nil
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  *domain.Answer
	err     error
	gotOpts domain.SearchOptions
}

func (m *mockAnswerService) Ask(_ context.Context, _ string, opts domain.SearchOptions) (*domain.Answer, error) {
	m.gotOpts = opts
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	stats     driving.IndexStats
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) IndexStats(_ context.Context) (driving.IndexStats, error) {
	return m.stats, m.err
}
