package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the index",
	Long: `Extracts text from each file, splits it into chunks, embeds the chunks and
adds them to the index. Supported types are PDF, DOCX, DOC and TXT.

Files are indexed from where they are; they are not copied.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return notConfigured("ingest")
	}

	ctx := commandContext(cmd)
	records := make([]*domain.IngestionRecord, 0, len(args))
	var failed int

	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", arg, err)
		}

		rec, err := ingestService.IngestFile(ctx, path, filepath.Base(path))
		if err != nil {
			failed++
			if rec == nil {
				cmd.PrintErrf("%s: %v\n", arg, err)
				continue
			}
		}
		records = append(records, rec)
		if !ingestJSON {
			printIngestRecord(cmd, arg, rec)
		}
	}

	if ingestJSON {
		if err := printJSON(cmd, records); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func printIngestRecord(cmd *cobra.Command, name string, rec *domain.IngestionRecord) {
	if rec.Status == domain.IngestionFailed {
		cmd.Printf("%s: failed: %s\n", name, rec.Error)
		return
	}
	cmd.Printf("%s: %s\n", name, rec.Status)
	cmd.Printf("  Document: %s\n", rec.ID)
	cmd.Printf("  Type:     %s\n", rec.FileType)
	cmd.Printf("  Language: %s (%.0f%%)\n", rec.Language, rec.LanguageConfidence*100)
	cmd.Printf("  Chunks:   %d\n", rec.ChunkCount)
}
