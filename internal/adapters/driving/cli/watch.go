package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watcher"
)

var (
	watchNoScan   bool
	watchDebounce = watcher.DefaultDebounce
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Index a directory and follow its changes",
	Long: `Indexes every supported file under the directory, then watches it.
New and modified files are re-indexed, removed files are dropped from the
index. Hidden files and directories are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip the initial scan")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is indexed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if ingestService == nil || documentService == nil {
		return notConfigured("ingest")
	}

	w, err := watcher.New(args[0], ingestService, documentService, watcher.WithDebounce(watchDebounce))
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if !watchNoScan {
		cmd.Printf("Scanning %s...\n", w.Dir())
		n, err := w.Scan(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Indexed %d files.\n", n)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())
	return w.Run(ctx)
}
