package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions from evidence and validates the result.
type AnswerService struct {
	search    driving.SearchService
	llm       driven.LLMService
	prompts   promptBuilder
	validator *Validator
}

// NewAnswerService creates a new answer service.
// The prompt store is optional; built-in prompts are used when nil.
func NewAnswerService(search driving.SearchService, llm driven.LLMService, prompts driven.PromptStore) *AnswerService {
	return &AnswerService{
		search:    search,
		llm:       llm,
		prompts:   promptBuilder{store: prompts},
		validator: NewValidator(),
	}
}

// Ask answers a question or returns the canonical refusal.
func (s *AnswerService) Ask(ctx context.Context, question string, opts domain.SearchOptions) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		ans := domain.Refusal(domain.QueryFactual, nil)
		return &ans, nil
	}

	result, err := s.search.Search(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	// Nothing to ground on: refuse without generating.
	if len(result.Evidence) == 0 {
		logger.Info("No evidence for %q, refusing", question)
		ans := domain.Refusal(result.Class, result.Evidence)
		return &ans, nil
	}

	if s.llm == nil {
		return nil, fmt.Errorf("generate answer: %w", domain.ErrLLMUnavailable)
	}

	logger.Section("Generation")
	text, err := s.llm.Generate(ctx, s.prompts.system(), s.prompts.user(question, result.Evidence), driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer with %s: %w: %w", s.llm.ModelName(), domain.ErrLLMUnavailable, err)
	}
	logger.Debug("Generated %d characters", len(text))

	ans := s.validator.Validate(text, result.Evidence, result.Class)
	logger.Info("Validation: accepted=%t coverage=%.2f confidence=%.2f", ans.Accepted, ans.Coverage, ans.Confidence)
	return &ans, nil
}
