package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askTopK  int
	askNoLLM bool
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Answers a question in the language it was asked (English or Hindi).

The most similar chunks are retrieved and passed to the configured LLM. Without
an LLM, or with --no-llm, the most relevant passages are returned instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askNoLLM, "no-llm", false, "answer from retrieved passages only")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if askService == nil {
		return notConfigured("ask")
	}

	question := strings.Join(args, " ")
	answer, err := askService.Ask(commandContext(cmd), question, domain.AskOptions{
		TopK:       askTopK,
		DisableLLM: askNoLLM,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Language: %s  Source: %s\n", answer.Language, answer.Source)
	if len(answer.Chunks) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		printChunks(cmd, answer.Chunks)
	}
	return nil
}

// printChunks lists ranked chunks with a one-line preview.
func printChunks(cmd *cobra.Command, chunks []domain.SimilarityResult) {
	for i := range chunks {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, chunks[i].ChunkID, chunks[i].Similarity)
		cmd.Printf("      %s\n", preview(chunks[i].Text, 100))
	}
}

// preview collapses whitespace and truncates s to at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
