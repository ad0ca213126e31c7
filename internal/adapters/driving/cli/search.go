package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/langdetect"
)

var (
	searchLimit    int
	searchMinScore float64
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Returns the chunks most similar to the query by cosine similarity,
without generating an answer. Each hit is tagged with the language of its text.

Examples:
  docqa search "quarterly revenue"
  docqa search "राजस्व वृद्धि" -n 10 --min-score 0.4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	flags := searchCmd.Flags()
	flags.IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	flags.Float64Var(&searchMinScore, "min-score", 0, "drop results below this similarity")
	flags.BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if askService == nil {
		return notConfigured("search")
	}

	query := strings.Join(args, " ")
	results, err := askService.Search(commandContext(cmd), query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results = aboveScore(results, searchMinScore)

	if searchJSON {
		return printJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// aboveScore keeps results scoring at least floor. Results arrive sorted, so the
// first miss ends the list.
func aboveScore(results []domain.SimilarityResult, floor float64) []domain.SimilarityResult {
	for i, r := range results {
		if r.Similarity < floor {
			return results[:i]
		}
	}
	return results
}

func outputSearchTable(cmd *cobra.Command, results []domain.SimilarityResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d):\n\n", len(results))
	for i, r := range results {
		lang := langdetect.Detect(r.Text)
		cmd.Printf("  [%d] %s (%.2f) %s\n", i+1, r.DocumentID, r.Similarity, lang.Name())
		cmd.Printf("      %s\n\n", preview(r.Text, 160))
	}
	return nil
}
