// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChunkList displays the chunks retrieved for a question in a navigable list.
type ChunkList struct {
	chunks   []domain.SimilarityResult
	names    map[string]string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewChunkList creates a new chunk list component.
func NewChunkList(s *styles.Styles) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ChunkList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the chunk list.
func (c *ChunkList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (c *ChunkList) Update(msg tea.Msg) (*ChunkList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			c.MoveUp()
		case "down", "j":
			c.MoveDown()
		}
	}
	return c, nil
}

// View renders the chunk list.
func (c *ChunkList) View() string {
	if len(c.chunks) == 0 {
		return c.styles.Muted.Render("No matching chunks")
	}

	lines := make([]string, 0, len(c.chunks)+2)
	lines = append(lines, c.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(c.chunks))), "")

	// Each chunk takes two lines.
	visibleCount := (c.height - 2) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if c.selected >= visibleCount {
		start = c.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(c.chunks) {
		end = len(c.chunks)
	}

	for i := start; i < end; i++ {
		lines = append(lines, c.renderChunk(i, &c.chunks[i]))
	}

	return strings.Join(lines, "\n")
}

func (c *ChunkList) renderChunk(index int, chunk *domain.SimilarityResult) string {
	indicator := "  "
	if index == c.selected {
		indicator = "> "
	}

	maxTitle := c.width - 20
	if maxTitle < 10 {
		maxTitle = 10
	}
	title := runewidth.FillRight(runewidth.Truncate(c.DocumentName(chunk.DocumentID), maxTitle, "..."), maxTitle)
	score := fmt.Sprintf("%.2f", chunk.Similarity)

	var titleLine string
	if index == c.selected {
		titleLine = c.styles.Selected.Render(fmt.Sprintf("%s%s  %s", indicator, title, score))
	} else {
		titleLine = c.styles.Normal.Render(indicator+title+"  ") + c.styles.Muted.Render(score)
	}

	maxPreview := c.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}
	preview := runewidth.Truncate(strings.Join(strings.Fields(chunk.Text), " "), maxPreview, "...")

	return titleLine + "\n" + c.styles.Muted.Render("    "+preview)
}

// SetChunks updates the list and resets the selection.
func (c *ChunkList) SetChunks(chunks []domain.SimilarityResult) {
	c.chunks = chunks
	c.selected = 0
}

// Chunks returns the current chunks.
func (c *ChunkList) Chunks() []domain.SimilarityResult {
	return c.chunks
}

// SetDocumentNames sets the display names used in place of document ids.
func (c *ChunkList) SetDocumentNames(names map[string]string) {
	c.names = names
}

// DocumentName returns the display name for a document id, or the id itself.
func (c *ChunkList) DocumentName(id string) string {
	if name, ok := c.names[id]; ok && name != "" {
		return name
	}
	return id
}

// Selected returns the index of the selected chunk.
func (c *ChunkList) Selected() int {
	return c.selected
}

// SetSelected sets the selected index.
func (c *ChunkList) SetSelected(index int) {
	if index >= 0 && index < len(c.chunks) {
		c.selected = index
	}
}

// SelectedChunk returns the currently selected chunk, or nil if none.
func (c *ChunkList) SelectedChunk() *domain.SimilarityResult {
	if len(c.chunks) == 0 || c.selected < 0 || c.selected >= len(c.chunks) {
		return nil
	}
	return &c.chunks[c.selected]
}

// MoveUp moves selection up.
func (c *ChunkList) MoveUp() {
	if c.selected > 0 {
		c.selected--
	}
}

// MoveDown moves selection down.
func (c *ChunkList) MoveDown() {
	if c.selected < len(c.chunks)-1 {
		c.selected++
	}
}

// SetDimensions sets the component dimensions.
func (c *ChunkList) SetDimensions(width, height int) {
	c.width = width
	c.height = height
}

// Count returns the number of chunks.
func (c *ChunkList) Count() int {
	return len(c.chunks)
}

// IsEmpty returns whether the list is empty.
func (c *ChunkList) IsEmpty() bool {
	return len(c.chunks) == 0
}
