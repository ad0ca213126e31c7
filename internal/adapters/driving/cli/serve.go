package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	servePort     int
	serveWatchDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API used by the web front end.

Endpoints:
  GET    /health                 Liveness
  GET    /api/health             Service status
  GET    /api/config             Active models and limits
  POST   /api/upload             Upload a document (multipart field "file")
  GET    /api/documents          List documents
  GET    /api/documents/:docId   Document details
  DELETE /api/documents/:docId   Delete a document
  POST   /api/query              Ask a question
  POST   /api/ask                Chat-style question

Use --watch to also index a directory and follow its changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from settings)")
	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "directory to index and watch while serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}
	if askService == nil || ingestService == nil || documentService == nil {
		return notConfigured("http")
	}

	cfg := serverConfig()
	if servePort > 0 {
		cfg.Port = servePort
	}

	server, err := httpapi.NewServer(cfg, &httpapi.Ports{
		Ask:      askService,
		Ingest:   ingestService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if serveWatchDir != "" {
		w, err := watcher.New(serveWatchDir, ingestService, documentService)
		if err != nil {
			return err
		}
		go func() {
			if _, err := w.Scan(ctx); err != nil {
				cmd.PrintErrf("watch: scan failed: %v\n", err)
			}
			if err := w.Run(ctx); err != nil {
				cmd.PrintErrf("watch: %v\n", err)
			}
		}()
	}

	cmd.Printf("HTTP API listening on http://localhost:%d\n", cfg.Port)
	return server.Run(ctx)
}

// serverConfig builds the HTTP configuration from the loaded settings.
func serverConfig() httpapi.Config {
	settings := appSettings
	if settings == nil {
		defaults := domain.DefaultAppSettings()
		settings = &defaults
	}
	return httpapi.Config{
		Port:           settings.Server.Port,
		AllowedOrigins: settings.Server.AllowedOrigins,
		MaxUploadBytes: settings.Server.MaxUploadBytes,
		UploadDir:      uploadDir,
		EmbeddingModel: settings.Embedding.Model,
		LLMProvider:    settings.LLM.Provider.String(),
		LLMModel:       settings.LLM.Model,
		Version:        version,
	}
}
