// Package menu is the TUI's start screen.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it switches to View, or quits when Quit
// is set. Shortcut jumps straight to the entry from anywhere in the menu.
type Item struct {
	Label    string
	Hindi    string
	Shortcut string
	View     messages.ViewType
	Quit     bool
}

// View lists the entries and the index summary.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	items    []Item
	summary  string
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu with the default entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Ask a Question", Hindi: "प्रश्न पूछें", Shortcut: "a", View: messages.ViewAsk},
			{Label: "Documents", Hindi: "दस्तावेज़", Shortcut: "d", View: messages.ViewDocuments},
			{Label: "Help", Hindi: "सहायता", Shortcut: "?", View: messages.ViewHelp},
			{Label: "Quit", Hindi: "बाहर निकलें", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keys.Quit):
			return v, tea.Quit
		case keymap.Matches(k, v.keys.Select):
			return v, v.choose(v.selected)
		case v.keys.Step(k) != 0:
			v.selected = v.keys.Move(k, v.selected, len(v.items))
		default:
			for i, item := range v.items {
				if item.Shortcut != "" && item.Shortcut == k {
					v.selected = i
					return v, v.choose(i)
				}
			}
		}
	}
	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docqa"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Ask your documents, in English or हिन्दी"))
	b.WriteString("\n")
	if v.summary != "" {
		b.WriteString(v.styles.Subtitle.Render(v.summary))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		label := item.Label
		if item.Shortcut != "" {
			label = fmt.Sprintf("[%s] %s", item.Shortcut, label)
		}
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hindi != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hindi))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetSummary sets the index summary shown under the title.
func (v *View) SetSummary(summary string) {
	v.summary = summary
}

func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

func (v *View) Selected() int {
	return v.selected
}

func (v *View) Items() []Item {
	return v.items
}
