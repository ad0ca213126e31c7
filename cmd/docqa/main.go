// Command docqa indexes documents and answers questions about them in
// English or Hindi.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/bootstrap"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetFactory(&cli.Factory{
		Settings: func(configDir string) (driving.SettingsService, error) {
			return bootstrap.Settings(configDir)
		},
		Services: openServices,
	})

	// Cobra has already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func openServices(configDir string) (*cli.Services, error) {
	app, err := bootstrap.Open(configDir)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Ask:         app.Ask,
		Ingest:      app.Ingest,
		Documents:   app.Documents,
		Settings:    app.Settings,
		AppSettings: app.AppSettings,
		UploadDir:   app.UploadDir,
		Warnings:    app.Warnings,
		Close:       app.Close,
	}, nil
}
