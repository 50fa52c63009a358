package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// snippetLength is how much of each evidence text the table view prints.
const snippetLength = 160

// evidenceView is the JSON shape of one evidence candidate.
type evidenceView struct {
	Source   string  `json:"source"`
	Page     int     `json:"page,omitempty"`
	Type     string  `json:"type"`
	TableID  string  `json:"table_id,omitempty"`
	RowIndex *int    `json:"row_index,omitempty"`
	DocLevel bool    `json:"doc_level,omitempty"`
	Score    float64 `json:"score"`
	Reranked bool    `json:"reranked"`
	Text     string  `json:"text"`
}

func toEvidenceViews(evidence []domain.Candidate) []evidenceView {
	views := make([]evidenceView, 0, len(evidence))
	for i := range evidence {
		r := evidence[i].Record
		v := evidenceView{
			Source:   r.Source,
			Page:     r.Page,
			Type:     r.Type.String(),
			DocLevel: r.DocLevel,
			Score:    evidence[i].Score,
			Reranked: evidence[i].Reranked,
			Text:     r.Text,
		}
		if r.Table != nil {
			row := r.Table.RowIndex
			v.TableID = r.Table.TableID
			v.RowIndex = &row
		}
		views = append(views, v)
	}
	return views
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printEvidence writes the numbered evidence list.
func printEvidence(cmd *cobra.Command, evidence []domain.Candidate) {
	for i := range evidence {
		r := evidence[i].Record
		cmd.Printf("  [%d] %s (%.2f)", i+1, citation(r), evidence[i].Score)
		if r.IsTableRow() {
			cmd.Print(" table row")
		}
		cmd.Println()
		cmd.Printf("      %s\n", snippet(r.Text, snippetLength))
	}
}

// citation renders the source and page of a record.
func citation(r domain.EvidenceRecord) string {
	if r.Page > 0 {
		return fmt.Sprintf("%s, page %d", r.Source, r.Page)
	}
	return r.Source
}

// snippet collapses whitespace and truncates to n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
