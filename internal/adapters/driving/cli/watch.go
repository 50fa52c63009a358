package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/connectors/filesystem"
	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/logger"
)

var (
	watchNoScan bool
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest a folder and keep it indexed",
	Long: `Ingests every supported file under a folder that is not already in the
catalogue, then watches the folder and ingests files as they are created
or changed. Hidden files and folders are ignored.

The index is append-only: evidence from deleted files stays searchable.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip the initial folder scan")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", filesystem.DefaultSettle, "quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	conn := filesystem.New(args[0], filesystem.WithSettle(watchSettle))
	defer conn.Close()

	if !watchNoScan {
		if err := scanFolder(cmd, conn); err != nil {
			return err
		}
	}

	changes, err := conn.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", conn.Root(), err)
	}
	cmd.Printf("Watching %s for changes...\n", conn.Root())

	for change := range changes {
		switch change.Type {
		case filesystem.ChangeDeleted:
			cmd.Printf("Deleted %s (evidence kept)\n", change.Path)
		default:
			if err := ingestRaw(cmd, change.Document); err != nil {
				cmd.PrintErrf("  %s: %v\n", change.Path, err)
			}
		}
	}

	return nil
}

// scanFolder ingests every supported file not already in the catalogue.
func scanFolder(cmd *cobra.Command, conn *filesystem.Connector) error {
	ctx := cmd.Context()

	known := make(map[string]bool)
	if documentService != nil {
		docs, err := documentService.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		for i := range docs {
			known[docs[i].URI] = true
		}
	}

	docs, errs := conn.Scan(ctx)
	ingested, skipped := 0, 0
	for raw := range docs {
		if known[raw.URI] {
			skipped++
			continue
		}
		if err := ingestRaw(cmd, &raw); err != nil {
			cmd.PrintErrf("  %s: %v\n", raw.URI, err)
			continue
		}
		ingested++
	}
	if err := <-errs; err != nil {
		return fmt.Errorf("scan %s: %w", conn.Root(), err)
	}

	logger.Info("Scan complete: %d ingested, %d already indexed", ingested, skipped)
	cmd.Printf("Scanned %s: %d ingested, %d already indexed\n", conn.Root(), ingested, skipped)
	return nil
}

func ingestRaw(cmd *cobra.Command, raw *domain.RawDocument) error {
	if raw == nil {
		return nil
	}
	report, err := ingestService.Ingest(cmd.Context(), raw)
	if err != nil {
		return err
	}
	cmd.Printf("Ingested %s: %d chunks (%d table rows)\n", report.Document.Source, report.Document.Chunks, report.TableRows)
	return nil
}
