// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Ask answers questions against the index.
	Ask driving.AskService

	// Document lists, opens and deletes indexed documents.
	Document driving.DocumentService

	// Settings is optional; when set the help view shows the active providers.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(ask driving.AskService, document driving.DocumentService) *Ports {
	return &Ports{
		Ask:      ask,
		Document: document,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
