// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// View is the document details view.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap

	record       *domain.IngestionRecord
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new document details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		back:   messages.ViewDocuments,
		width:  80,
		height: 24,
	}
}

// SetDocument sets the record to display and the view esc returns to.
func (v *View) SetDocument(record domain.IngestionRecord, back messages.ViewType) {
	v.record = &record
	v.back = back
	v.scrollOffset = 0
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	if keymap.Matches(k, v.keys.Back) {
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}
	v.scrollOffset = v.keys.Move(k, v.scrollOffset, v.maxScrollOffset()+1)
	return v, nil
}

func (v *View) visibleLines() int {
	// Title, separator, help and padding.
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// buildContent lays out the record as label/value lines followed by the text preview.
func (v *View) buildContent() []string {
	if v.record == nil {
		return nil
	}
	r := v.record

	lines := []string{
		formatField("ID", r.ID),
		formatField("File", r.FileName),
		formatField("Type", string(r.FileType)),
		formatField("Size", formatSize(r.FileSize)),
		formatField("Path", r.StoredPath),
		formatField("Status", string(r.Status)),
	}
	if r.Error != "" {
		lines = append(lines, formatField("Error", r.Error))
	}
	if r.Language != "" {
		lines = append(lines, formatField("Language",
			fmt.Sprintf("%s (%.0f%%)", r.Language.Name(), r.LanguageConfidence*100)))
	}
	lines = append(lines,
		formatField("Chunks", fmt.Sprintf("%d", r.ChunkCount)),
		formatField("Characters", fmt.Sprintf("%d", r.TextLength)))

	if !r.CreatedAt.IsZero() {
		lines = append(lines, formatField("Created", r.CreatedAt.Local().Format(timeLayout)))
	}
	if !r.ProcessedAt.IsZero() {
		lines = append(lines, formatField("Processed", r.ProcessedAt.Local().Format(timeLayout)))
	}

	if r.Preview != "" {
		width := max(v.width-6, 20)
		wrapped := lipgloss.NewStyle().Width(width).Render(r.Preview)
		lines = append(lines, "", "Preview:")
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, "  "+strings.TrimRight(l, " "))
		}
	}

	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.record == nil {
		b.WriteString(v.styles.Muted.Render("No document selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	lines := v.buildContent()
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderLine(lines[i]))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(lines)),
			len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderLine(line string) string {
	switch {
	case line == "Preview:":
		return v.styles.Subtitle.Render(line)
	case strings.HasPrefix(line, "  "):
		return v.styles.Muted.Render(line)
	case strings.HasPrefix(line, "Error:"):
		return v.styles.Error.Render(line)
	}
	if label, value, ok := strings.Cut(line, ":"); ok {
		return v.styles.Subtitle.Render(label+":") + v.styles.Normal.Render(value)
	}
	return v.styles.Normal.Render(line)
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Document returns the record being displayed.
func (v *View) Document() *domain.IngestionRecord {
	return v.record
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
