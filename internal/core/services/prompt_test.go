package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

func TestBuildContext_GroupsNarrativeAndTables(t *testing.T) {
	row := tableRecord("row", "model: p200 | flow: 40")
	note := narrativeRecord("n", "The P200 is rated for clean water.")
	note.Page = 0

	got := BuildContext([]domain.Candidate{candidate(row, 1), candidate(note, 0.5)}, MaxContextChars)

	assert.Equal(t,
		"TEXT EXPLANATIONS:\n[Source: manual.pdf, Page: unknown]\nThe P200 is rated for clean water.\n\n\n"+
			"TABLE FACTS:\n[Source: specs.xlsx, Page: 1]\nmodel: p200 | flow: 40\n",
		got)
}

func TestBuildContext_RespectsLimit(t *testing.T) {
	long := narrativeRecord("a", strings.Repeat("x", 100))
	next := narrativeRecord("b", "short")

	got := BuildContext([]domain.Candidate{candidate(long, 1), candidate(next, 1)}, 60)
	assert.Empty(t, got)

	got = BuildContext([]domain.Candidate{candidate(next, 1), candidate(long, 1)}, 60)
	assert.Contains(t, got, "short")
	assert.NotContains(t, got, "xxx")
}

func TestBuildContext_SkipsBlankText(t *testing.T) {
	assert.Empty(t, BuildContext([]domain.Candidate{candidate(narrativeRecord("a", "  "), 1)}, MaxContextChars))
}

func TestPromptBuilder_BadUserTemplateFallsBack(t *testing.T) {
	p := promptBuilder{store: &mockPromptStore{prompts: map[string]string{"answer_user": "only %s"}}}

	got := p.user("q?", nil)
	assert.True(t, strings.HasPrefix(got, "Question:\nq?"))
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, p.system())
}
