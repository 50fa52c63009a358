package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driven"
	"github.com/custodia-labs/veritas/internal/logger"
)

// MaxContextChars bounds the information section of the user prompt.
const MaxContextChars = 12000

// Generation settings for grounded answers.
const (
	answerMaxTokens   = 500
	answerTemperature = 0.0
)

// BuildContext renders evidence as labelled blocks, narrative first under
// "TEXT EXPLANATIONS:" and table rows under "TABLE FACTS:". Blocks are added
// in evidence order until maxChars would be exceeded.
func BuildContext(evidence []domain.Candidate, maxChars int) string {
	var narrative, tables []string
	total := 0

	for _, c := range evidence {
		text := strings.TrimSpace(c.Record.Text)
		if text == "" {
			continue
		}

		source := c.Record.Source
		if source == "" {
			source = "unknown"
		}
		page := "unknown"
		if c.Record.Page > 0 {
			page = strconv.Itoa(c.Record.Page)
		}

		block := fmt.Sprintf("[Source: %s, Page: %s]\n%s\n", source, page, text)
		if total+len(block) > maxChars {
			break
		}
		total += len(block)

		if c.Record.IsTableRow() {
			tables = append(tables, block)
		} else {
			narrative = append(narrative, block)
		}
	}

	var b strings.Builder
	if len(narrative) > 0 {
		b.WriteString("TEXT EXPLANATIONS:\n")
		b.WriteString(strings.Join(narrative, "\n"))
		b.WriteString("\n\n")
	}
	if len(tables) > 0 {
		b.WriteString("TABLE FACTS:\n")
		b.WriteString(strings.Join(tables, "\n"))
	}
	return b.String()
}

// promptBuilder resolves prompt templates, falling back to built-in defaults.
type promptBuilder struct {
	store driven.PromptStore
}

func (p promptBuilder) load(name, fallback string) string {
	if p.store == nil {
		return fallback
	}
	prompt, err := p.store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Debug("Using built-in %s prompt: %v", name, err)
		return fallback
	}
	return prompt
}

func (p promptBuilder) system() string {
	return p.load(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt)
}

func (p promptBuilder) user(question string, evidence []domain.Candidate) string {
	tmpl := p.load(driven.PromptAnswerUser, domain.DefaultAnswerUserPrompt)
	if strings.Count(tmpl, "%s") != 2 {
		logger.Warn("Prompt %s must contain two %%s placeholders, using built-in", driven.PromptAnswerUser)
		tmpl = domain.DefaultAnswerUserPrompt
	}
	return fmt.Sprintf(tmpl, question, BuildContext(evidence, MaxContextChars))
}
