package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// QuestionInput is the input schema for the ask and search tools.
type QuestionInput struct {
	Question string   `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Sources  []string `json:"sources,omitempty" jsonschema:"only use evidence from these document sources (file names)"`
}

// EvidenceOutput is one evidence item.
type EvidenceOutput struct {
	Source   string  `json:"source"`
	Page     int     `json:"page,omitempty"`
	Type     string  `json:"type"`
	TableID  string  `json:"table_id,omitempty"`
	Score    float64 `json:"score"`
	Reranked bool    `json:"reranked"`
	Text     string  `json:"text"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string           `json:"answer"`
	Accepted   bool             `json:"accepted"`
	Class      string           `json:"class"`
	Coverage   float64          `json:"coverage"`
	Confidence float64          `json:"confidence"`
	Evidence   []EvidenceOutput `json:"evidence"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Class    string           `json:"class"`
	Evidence []EvidenceOutput `json:"evidence"`
	Count    int              `json:"count"`
}

// DocumentsInput is the input schema for the documents tool.
type DocumentsInput struct{}

// DocumentOutput is one catalogue entry.
type DocumentOutput struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	Chunks     int    `json:"chunks"`
	IngestedAt string `json:"ingested_at"`
}

// DocumentsOutput is the output schema for the documents tool.
type DocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Show the evidence the indexed documents hold for a question, without answering it",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name: "ask",
			Description: "Answer a question strictly from the indexed documents. " +
				"Refuses with a fixed message when the documents do not support an answer",
		}, s.handleAsk)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "documents",
			Description: "List the documents that have been ingested",
		}, s.handleDocuments)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, AskOutput, error) {
	ans, err := s.ports.Answer.Ask(ctx, input.Question, domain.SearchOptions{Sources: input.Sources})
	if err != nil {
		return nil, AskOutput{}, toolError("ask", err)
	}

	return nil, AskOutput{
		Answer:     ans.Text,
		Accepted:   ans.Accepted,
		Class:      ans.Class.String(),
		Coverage:   ans.Coverage,
		Confidence: ans.Confidence,
		Evidence:   evidenceOutputs(ans.Evidence),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Search.Search(ctx, input.Question, domain.SearchOptions{Sources: input.Sources})
	if err != nil {
		return nil, SearchOutput{}, toolError("search", err)
	}

	evidence := evidenceOutputs(result.Evidence)
	return nil, SearchOutput{
		Class:    result.Class.String(),
		Evidence: evidence,
		Count:    len(evidence),
	}, nil
}

// handleDocuments handles the documents tool invocation.
func (s *Server) handleDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ DocumentsInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, DocumentsOutput{}, toolError("documents", err)
	}

	output := DocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(docs[i])
	}
	return nil, output, nil
}

func evidenceOutputs(evidence []domain.Candidate) []EvidenceOutput {
	out := make([]EvidenceOutput, len(evidence))
	for i := range evidence {
		r := evidence[i].Record
		out[i] = EvidenceOutput{
			Source:   r.Source,
			Page:     r.Page,
			Type:     r.Type.String(),
			Score:    evidence[i].Score,
			Reranked: evidence[i].Reranked,
			Text:     r.Text,
		}
		if r.Table != nil {
			out[i].TableID = r.Table.TableID
		}
	}
	return out
}

func documentOutput(d domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         d.ID,
		Source:     d.Source,
		Title:      d.Title,
		URI:        d.URI,
		Chunks:     d.Chunks,
		IngestedAt: d.IngestedAt.Format(time.RFC3339),
	}
}
