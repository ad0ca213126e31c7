package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, view, delete or open indexed documents.`,
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

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from the index",
	Long:  `Removes the document's chunks and ingestion record. Uploaded copies are deleted too.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentOpenCmd = &cobra.Command{
	Use:   "open [doc-id]",
	Short: "Open document in default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOpen,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentGetCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentOpenCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(statsCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return notConfigured("document")
	}

	records, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range records {
		cmd.Printf("  %s\n", records[i].ID)
		cmd.Printf("    File:   %s (%s)\n", records[i].FileName, records[i].FileType)
		cmd.Printf("    Status: %s\n", records[i].Status)
		if records[i].Status == domain.IngestionCompleted {
			cmd.Printf("    Chunks: %d  Language: %s\n", records[i].ChunkCount, records[i].Language)
		}
		if records[i].Error != "" {
			cmd.Printf("    Error:  %s\n", records[i].Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(records))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return notConfigured("document")
	}

	rec, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, rec)
	}

	cmd.Printf("Document: %s\n\n", rec.ID)
	cmd.Printf("  File:      %s\n", rec.FileName)
	cmd.Printf("  Type:      %s\n", rec.FileType)
	cmd.Printf("  Size:      %d bytes\n", rec.FileSize)
	cmd.Printf("  Status:    %s\n", rec.Status)
	if rec.Error != "" {
		cmd.Printf("  Error:     %s\n", rec.Error)
	}
	if rec.Language != "" {
		cmd.Printf("  Language:  %s (%.0f%%)\n", rec.Language, rec.LanguageConfidence*100)
	}
	cmd.Printf("  Chunks:    %d\n", rec.ChunkCount)
	if rec.StoredPath != "" {
		cmd.Printf("  Path:      %s\n", rec.StoredPath)
	}
	if !rec.CreatedAt.IsZero() {
		cmd.Printf("  Created:   %s\n", rec.CreatedAt.Local().Format(timeLayout))
	}
	if !rec.ProcessedAt.IsZero() {
		cmd.Printf("  Processed: %s\n", rec.ProcessedAt.Local().Format(timeLayout))
	}
	if rec.Preview != "" {
		cmd.Printf("\n  Preview:\n    %s\n", preview(rec.Preview, 200))
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return notConfigured("document")
	}

	removed, err := documentService.Delete(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted (%d chunks removed).\n", args[0], removed)
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return notConfigured("document")
	}

	if err := documentService.Open(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	cmd.Printf("Opened document %s in default application.\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return notConfigured("document")
	}

	stats := documentService.Stats(commandContext(cmd))
	cmd.Printf("Documents:       %d\n", stats.TotalDocuments)
	cmd.Printf("Chunks:          %d\n", stats.TotalChunks)
	if stats.EmbeddingModel != "" {
		cmd.Printf("Embedding model: %s\n", stats.EmbeddingModel)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
