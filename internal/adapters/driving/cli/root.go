// Package cli provides the docqa command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Services used by the commands. Tests assign these directly.
var (
	askService      driving.AskService
	ingestService   driving.IngestService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	appSettings     *domain.AppSettings
	uploadDir       string
)

// Services is the set of wired services a Factory produces.
type Services struct {
	Ask       driving.AskService
	Ingest    driving.IngestService
	Documents driving.DocumentService
	Settings  driving.SettingsService

	// AppSettings are the effective settings used to build the services.
	AppSettings *domain.AppSettings

	// UploadDir is where the HTTP server stores uploaded files.
	UploadDir string

	// Warnings are shown once before the command runs.
	Warnings []string

	// Close releases the services. May be nil.
	Close func() error
}

// Factory builds services for a configuration directory.
type Factory struct {
	// Settings opens only the settings service and must not contact any provider.
	Settings func(configDir string) (driving.SettingsService, error)

	// Services opens everything.
	Services func(configDir string) (*Services, error)
}

var (
	factory       *Factory
	closeServices func() error
)

// SetFactory installs the factory used to load services on demand.
func SetFactory(f *Factory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa indexes PDF, Word and text documents and answers questions about
them in English or Hindi, using a local or cloud LLM when one is configured.

Examples:
  docqa ingest report.pdf notes.txt
  docqa ask "What was the revenue in 2023?"
  docqa serve --port 8000`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.docqa)")
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", cerr)
		}
		closeServices = nil
	}
	return err
}

// requireServices loads the full service set unless it is already present.
func requireServices(cmd *cobra.Command) error {
	if askService != nil || factory == nil || factory.Services == nil {
		return nil
	}

	svcs, err := factory.Services(configDir)
	if err != nil {
		return err
	}
	askService = svcs.Ask
	ingestService = svcs.Ingest
	documentService = svcs.Documents
	settingsService = svcs.Settings
	appSettings = svcs.AppSettings
	uploadDir = svcs.UploadDir
	closeServices = svcs.Close

	for _, w := range svcs.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return nil
}

// requireSettings loads the settings service without touching any provider.
func requireSettings() error {
	if settingsService != nil || factory == nil || factory.Settings == nil {
		return nil
	}
	svc, err := factory.Settings(configDir)
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

// commandContext returns the command's context, or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errNotConfigured = errors.New("not configured")

func notConfigured(name string) error {
	return fmt.Errorf("%s service %w", name, errNotConfigured)
}
