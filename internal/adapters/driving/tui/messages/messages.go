// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Question string
	Options  domain.AskOptions
}

// AnswerReceived carries an answer back to the model.
type AnswerReceived struct {
	Answer *domain.Answer

	// DocumentNames maps the ids of the answer's chunks to file names.
	DocumentNames map[string]string

	Err error
}

// ChunkSelected is sent when a retrieved chunk is selected.
type ChunkSelected struct {
	Index int
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewDocuments lists indexed documents.
	ViewDocuments
	// ViewDocDetails shows one document's ingestion record.
	ViewDocDetails
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewDocDetails:
		return "doc_details"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the indexed documents.
type DocumentsLoaded struct {
	Documents []domain.IngestionRecord
	Err       error
}

// DocumentSelected signals a document was selected for the details view.
type DocumentSelected struct {
	Document domain.IngestionRecord
}

// DocumentDeleted signals a document was removed from the index.
type DocumentDeleted struct {
	DocumentID string
	Removed    int
	Err        error
}

// DocumentOpened signals an attempt to open a document in the default application.
type DocumentOpened struct {
	DocumentID string
	Err        error
}
