package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/connectors/filesystem"
	"github.com/custodia-labs/veritas/internal/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the evidence index",
	Long: `Parses each file, splits it into narrative chunks and table rows,
embeds them and appends them to the evidence index.

Supported formats: .txt, .md, .pdf, .docx, .csv, .tsv, .xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	failed := 0
	for _, path := range args {
		if err := ingestFile(cmd, path); err != nil {
			logger.Error("%v", err)
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

// ingestFile loads one path from disk and ingests it.
func ingestFile(cmd *cobra.Command, path string) error {
	raw, err := filesystem.LoadFile(path)
	if err != nil {
		return err
	}

	report, err := ingestService.Ingest(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", raw.Source, err)
	}

	cmd.Printf("Ingested %s: %d chunks (%d table rows) from %d units\n",
		report.Document.Source, report.Document.Chunks, report.TableRows, report.Units)
	if report.Previous > 0 {
		cmd.PrintErrf("Warning: %s was already ingested; earlier evidence is kept\n", report.Document.Source)
	}
	return nil
}
