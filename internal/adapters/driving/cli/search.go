package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

var (
	searchSources []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Show the evidence selected for a question",
	Long: `Classifies the question, retrieves candidates from the evidence index,
routes and reranks them, and prints the evidence an answer would be built from.

No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchSources, "source", "s", nil, "restrict evidence to a document source (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output evidence as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	question := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	result, err := searchService.Search(cmd.Context(), question, domain.SearchOptions{Sources: searchSources})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, struct {
			Class    string         `json:"class"`
			Evidence []evidenceView `json:"evidence"`
		}{result.Class.String(), toEvidenceViews(result.Evidence)})
	}

	cmd.Printf("Question class: %s\n\n", result.Class)
	if len(result.Evidence) == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	cmd.Println("Evidence:")
	printEvidence(cmd, result.Evidence)
	return nil
}
