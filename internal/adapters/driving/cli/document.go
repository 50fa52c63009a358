package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const timeFormat = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List ingested documents, view their catalogue entries, or inspect the evidence index.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show evidence index statistics",
	Args:  cobra.NoArgs,
	RunE:  runDocumentStats,
}

var documentJSON bool

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output documents as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentStatsCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Source: %s\n", docs[i].Source)
		if docs[i].Title != "" && docs[i].Title != docs[i].Source {
			cmd.Printf("    Title:  %s\n", docs[i].Title)
		}
		cmd.Printf("    Chunks: %d\n", docs[i].Chunks)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]

	doc, err := documentService.Get(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Source:    %s\n", doc.Source)
	cmd.Printf("  Title:     %s\n", doc.Title)
	if doc.YearHint != "" {
		cmd.Printf("  Year:      %s\n", doc.YearHint)
	}
	cmd.Printf("  URI:       %s\n", doc.URI)
	cmd.Printf("  Type:      %s\n", doc.MIMEType)
	cmd.Printf("  Blocks:    %d\n", doc.Blocks)
	cmd.Printf("  Chunks:    %d\n", doc.Chunks)
	cmd.Printf("  Ingested:  %s\n", doc.IngestedAt.Format(timeFormat))

	return nil
}

func runDocumentStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.IndexStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}

	cmd.Println("Evidence Index")
	cmd.Printf("  Path:       %s\n", stats.Path)
	cmd.Printf("  Records:    %d\n", stats.Records)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	return nil
}
