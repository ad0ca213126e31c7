// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Chunk actions.
const (
	actionOpen    = "Open Document"
	actionDetails = "Show Document Details"
	actionCancel  = "Cancel"
)

// ActionMenu is a small action selection overlay for a chunk.
type ActionMenu struct {
	actions  []string
	selected int
	visible  bool
	chunk    *domain.SimilarityResult
}

// View is the ask view: question input, answer, retrieved chunks and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.ChunkList
	statusbar *status.Bar

	askService      driving.AskService
	documentService driving.DocumentService
	ctx             context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = navigating chunks
	actionMenu *ActionMenu

	answer     *domain.Answer
	topK       int
	disableLLM bool
}

// NewView creates a new ask view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	askService driving.AskService,
	documentService driving.DocumentService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewQuestionInput(s),
		list:            list.NewChunkList(s),
		statusbar:       status.NewBar(s, km),
		askService:      askService,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetTopK sets the number of chunks to retrieve. Zero uses the configured default.
func (v *View) SetTopK(topK int) {
	v.topK = topK
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.DocumentOpened:
		if msg.Err != nil {
			v.statusbar.SetMessage("Open: " + msg.Err.Error())
		} else {
			v.statusbar.SetMessage("Opening document...")
		}
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	if cmd != nil {
		return v, cmd
	}
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil && v.actionMenu.visible {
		return v.handleActionMenuKey(msg)
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if keymap.Matches(msg.String(), v.keymap.ToggleLLM) {
		v.disableLLM = !v.disableLLM
		v.statusbar.SetLLMEnabled(!v.disableLLM)
		return v, nil
	}

	if msg.Type == tea.KeyEnter && v.focusInput {
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.err = nil
		v.focusInput = false
		v.input.Blur()
		return v, tea.Batch(v.statusbar.StartAsking(), v.performAsk(question))
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if msg.Type == tea.KeyEnter {
		if chunk := v.list.SelectedChunk(); chunk != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{actionOpen, actionDetails, actionCancel},
				visible: true,
				chunk:   chunk,
			}
		}
		return v, nil
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuestion) {
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case "down", "j":
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case "enter":
		action := v.actionMenu.actions[v.actionMenu.selected]
		chunk := v.actionMenu.chunk
		v.actionMenu = nil
		return v, v.executeAction(action, chunk)
	case "esc":
		v.actionMenu = nil
	}
	return v, nil
}

func (v *View) executeAction(action string, chunk *domain.SimilarityResult) tea.Cmd {
	if chunk == nil || action == actionCancel {
		return nil
	}
	if v.documentService == nil {
		v.statusbar.SetMessage(ErrNoDocumentService.Error())
		return nil
	}

	docs := v.documentService
	ctx := v.ctx
	id := chunk.DocumentID

	switch action {
	case actionOpen:
		return func() tea.Msg {
			return messages.DocumentOpened{DocumentID: id, Err: docs.Open(ctx, id)}
		}
	case actionDetails:
		return func() tea.Msg {
			rec, err := docs.Get(ctx, id)
			if err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			return messages.DocumentSelected{Document: *rec}
		}
	}
	return nil
}

// performAsk answers the question and resolves file names for the chunks.
func (v *View) performAsk(question string) tea.Cmd {
	askService := v.askService
	docs := v.documentService
	ctx := v.ctx
	opts := domain.AskOptions{TopK: v.topK, DisableLLM: v.disableLLM}

	return func() tea.Msg {
		if askService == nil {
			return messages.AnswerReceived{Err: ErrNoAskService}
		}

		answer, err := askService.Ask(ctx, question, opts)
		if err != nil {
			return messages.AnswerReceived{Err: err}
		}
		return messages.AnswerReceived{Answer: answer, DocumentNames: documentNames(ctx, docs, answer.Chunks)}
	}
}

func documentNames(ctx context.Context, docs driving.DocumentService, chunks []domain.SimilarityResult) map[string]string {
	names := make(map[string]string)
	if docs == nil {
		return names
	}
	for _, c := range chunks {
		if _, ok := names[c.DocumentID]; ok {
			continue
		}
		name := ""
		if rec, err := docs.Get(ctx, c.DocumentID); err == nil {
			name = rec.FileName
		}
		names[c.DocumentID] = name
	}
	return names
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.list.SetDocumentNames(msg.DocumentNames)
	v.list.SetChunks(msg.Answer.Chunks)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetChunkCount(len(msg.Answer.Chunks))
	v.statusbar.SetMessage("")
	v.focusInput = false
	v.input.Blur()
	v.layout()
}

func (v *View) setError(err error) {
	if err == nil {
		return
	}
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("docqa"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		sections = append(sections, v.renderAnswer(), "", v.list.View())
	}

	if v.actionMenu != nil && v.actionMenu.visible {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	meta := fmt.Sprintf("%s  %s",
		v.styles.Muted.Render("Language:")+v.styles.LanguageBadge(v.answer.Language),
		v.styles.SourceBadge(v.answer.Source))

	width := v.width - 4
	if width < 20 {
		width = 20
	}
	return meta + "\n" + v.styles.Answer.Width(width).Render(v.answer.Text)
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions))
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
}

// layout gives the chunk list whatever height the answer leaves free.
func (v *View) layout() {
	reserved := 10
	if v.answer != nil {
		reserved += lipgloss.Height(v.renderAnswer())
	}
	v.list.SetDimensions(v.width, v.height-reserved)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the question text.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Chunks returns the chunks retrieved for the last answer.
func (v *View) Chunks() []domain.SimilarityResult {
	return v.list.Chunks()
}

// SelectedChunk returns the currently selected chunk.
func (v *View) SelectedChunk() *domain.SimilarityResult {
	return v.list.SelectedChunk()
}

// LLMDisabled reports whether answers are restricted to the retrieved context.
func (v *View) LLMDisabled() bool {
	return v.disableLLM
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty question.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetChunks(nil)
	v.answer = nil
	v.actionMenu = nil
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
