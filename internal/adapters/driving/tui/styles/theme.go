// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Theme is the palette. Each colour has a light- and a dark-terminal variant;
// lipgloss picks one from the detected background.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor // status bar background
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme is a Catppuccin-style palette (Latte on light terminals,
// Mocha on dark ones).
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    adaptive("#8839EF", "#7C3AED"),
		Secondary:  adaptive("#04A5E5", "#06B6D4"),
		Foreground: adaptive("#4C4F69", "#CDD6F4"),
		Muted:      adaptive("#8C8FA1", "#6C7086"),
		Success:    adaptive("#40A02B", "#A6E3A1"),
		Warning:    adaptive("#DF8E1D", "#F9E2AF"),
		Error:      adaptive("#D20F39", "#F38BA8"),
		Border:     adaptive("#BCC0CC", "#45475A"),
		Bar:        adaptive("#E6E9EF", "#181825"),
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Answer frames generated text with a left rule.
	Answer lipgloss.Style

	// Badge is the base for short inline tags; see SourceBadge and LanguageBadge.
	Badge lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		Help:     fg(theme.Muted),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
		Answer: fg(theme.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Primary).
			PaddingLeft(1),
		Badge: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}

// SourceBadge tags an answer by where it came from: green for model output,
// amber for raw context, red when nothing matched.
func (s *Styles) SourceBadge(source domain.AnswerSource) string {
	var colour lipgloss.TerminalColor = s.theme.Muted
	switch source {
	case domain.SourceLLMRAG, domain.SourceLLMDirect:
		colour = s.theme.Success
	case domain.SourceFallbackContext:
		colour = s.theme.Warning
	case domain.SourceNoMatch:
		colour = s.theme.Error
	}
	return s.Badge.Foreground(colour).Render(source.String())
}

// LanguageBadge tags text with its language name.
func (s *Styles) LanguageBadge(lang domain.Language) string {
	var colour lipgloss.TerminalColor = s.theme.Secondary
	if lang == domain.LanguageHindi {
		colour = s.theme.Primary
	}
	return s.Badge.Foreground(colour).Render(lang.Name())
}

// StatusStyle colours an ingestion status.
func (s *Styles) StatusStyle(status domain.IngestionStatus) lipgloss.Style {
	switch status {
	case domain.IngestionFailed:
		return s.Error
	case domain.IngestionPending, domain.IngestionProcessing:
		return s.Warning
	case domain.IngestionCompleted:
		return s.Success
	}
	return s.Muted
}
