package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_LongMentionsRefusal(t *testing.T) {
	assert.Contains(t, askCmd.Long, domain.RefusalMessage)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "ask")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_AcceptedAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "what is Alice's val")

	require.NoError(t, err)
	assert.Contains(t, out, "Alice has val 1.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "  - people.csv\n")
	assert.Contains(t, out, "  - report.pdf, page 2\n")
	assert.NotContains(t, out, "Evidence:")
}

func TestAskCmd_ShowEvidence(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--evidence", "what is Alice's val")

	require.NoError(t, err)
	assert.Contains(t, out, "Evidence:")
	assert.Contains(t, out, "name: Alice | val: 1")
}

func TestAskCmd_Refusal(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	refusal := domain.Refusal(domain.QueryAnalytical, testEvidence())
	answerService = &mockAnswerService{answer: &refusal}

	out, err := execute(t, "ask", "explain the methodology")

	require.NoError(t, err)
	assert.Equal(t, domain.RefusalMessage+"\n", out)
}

func TestAskCmd_PassesSources(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask", "--source", "report.pdf", "who is the author")

	require.NoError(t, err)
	mock, ok := answerService.(*mockAnswerService)
	require.True(t, ok)
	assert.Equal(t, []string{"report.pdf"}, mock.gotOpts.Sources)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--json", "what is Alice's val")

	require.NoError(t, err)
	assert.Contains(t, out, `"answer": "Alice has val 1."`)
	assert.Contains(t, out, `"accepted": true`)
	assert.Contains(t, out, `"class": "factual"`)
	assert.Contains(t, out, `"evidence": [`)
}

func TestAskCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	answerService = &mockAnswerService{err: domain.ErrLLMUnavailable}

	_, err := execute(t, "ask", "anything")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestUniqueCitations(t *testing.T) {
	evidence := append(testEvidence(), testEvidence()...)

	assert.Equal(t, []string{"people.csv", "report.pdf, page 2"}, uniqueCitations(evidence))
	assert.Empty(t, uniqueCitations(nil))
}
