package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

var (
	askSources      []string
	askJSON         bool
	askShowEvidence bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Answers a question using only evidence from the indexed documents.

The generated answer is checked against the evidence before it is shown.
If it cannot be grounded, veritas prints:

  ` + domain.RefusalMessage,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askSources, "source", "s", nil, "restrict evidence to a document source (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVarP(&askShowEvidence, "evidence", "e", false, "print the evidence the answer was checked against")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if answerService == nil {
		return errors.New("answer service not configured")
	}

	ans, err := answerService.Ask(cmd.Context(), question, domain.SearchOptions{Sources: askSources})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, struct {
			Answer     string         `json:"answer"`
			Accepted   bool           `json:"accepted"`
			Class      string         `json:"class"`
			Coverage   float64        `json:"coverage"`
			Confidence float64        `json:"confidence"`
			Evidence   []evidenceView `json:"evidence"`
		}{ans.Text, ans.Accepted, ans.Class.String(), ans.Coverage, ans.Confidence, toEvidenceViews(ans.Evidence)})
	}

	cmd.Println(ans.Text)
	if !ans.Accepted {
		return nil
	}

	cmd.Println()
	if askShowEvidence {
		cmd.Println("Evidence:")
		printEvidence(cmd, ans.Evidence)
		return nil
	}

	cmd.Println("Sources:")
	for _, c := range uniqueCitations(ans.Evidence) {
		cmd.Printf("  - %s\n", c)
	}
	return nil
}

// uniqueCitations lists each source/page pair once, in evidence order.
func uniqueCitations(evidence []domain.Candidate) []string {
	seen := make(map[string]bool, len(evidence))
	var out []string
	for i := range evidence {
		c := citation(evidence[i].Record)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
