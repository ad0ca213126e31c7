// Package keymap holds the TUI keybindings so views and help text agree.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is every binding the views react to. Several bindings share a key
// (enter asks, selects and opens actions) because only one view is active.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding

	// Ask view.
	Ask         key.Binding
	NewQuestion key.Binding
	ToggleLLM   key.Binding // answer from retrieved passages only
	Actions     key.Binding

	// Documents view.
	Refresh key.Binding
	Confirm key.Binding // accepts a pending delete
}

func bind(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// DefaultKeyMap returns the standard vim-style bindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind([]string{"q", "ctrl+c"}, "q", "quit"),
		Help: bind([]string{"?"}, "?", "help"),
		Back: bind([]string{"esc"}, "esc", "back"),

		Up:     bind([]string{"up", "k"}, "↑/k", "up"),
		Down:   bind([]string{"down", "j"}, "↓/j", "down"),
		Select: bind([]string{"enter"}, "enter", "select"),
		Cancel: bind([]string{"esc"}, "esc", "cancel"),

		Ask:         bind([]string{"enter"}, "enter", "ask"),
		NewQuestion: bind([]string{"n"}, "n", "new question"),
		ToggleLLM:   bind([]string{"ctrl+l"}, "ctrl+l", "toggle llm"),
		Actions:     bind([]string{"enter"}, "enter", "actions"),

		Refresh: bind([]string{"r"}, "r", "refresh"),
		Confirm: bind([]string{"y"}, "y", "confirm"),
	}
}

// ShortHelp is shown in the status bar when no view-specific hints apply.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// AnswerHelp is shown once an answer is on screen.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Actions, k.Back}
}

// DocumentsHelp is shown on the document list.
func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Actions, k.Refresh, k.Back}
}

// FullHelp groups every binding for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Ask, k.NewQuestion, k.ToggleLLM},
		{k.Refresh, k.Confirm},
		{k.Back, k.Cancel},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr (a tea.KeyMsg String) triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return binding.Enabled() && slices.Contains(binding.Keys(), keyStr)
}

// Step maps the Up and Down bindings to -1 and +1, and any other key to 0.
func (k *KeyMap) Step(keyStr string) int {
	switch {
	case Matches(keyStr, k.Up):
		return -1
	case Matches(keyStr, k.Down):
		return 1
	}
	return 0
}

// Move applies Step to a cursor over n items, clamping to [0, n-1].
func (k *KeyMap) Move(keyStr string, cursor, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(cursor+k.Step(keyStr), 0), n-1)
}
