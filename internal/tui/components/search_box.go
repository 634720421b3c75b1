package components

import (
	"fmt"

	"github.com/artpar/popcorn/internal/tui"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchBox is the single-line search input with a result counter.
type SearchBox struct {
	*tui.Pane
	input textinput.Model
	count int
}

// NewSearchBox creates a focused search box.
func NewSearchBox() *SearchBox {
	input := textinput.New()
	input.Placeholder = "Search movies..."
	input.Prompt = "🔍 "
	input.CharLimit = 100
	input.Focus()

	b := &SearchBox{
		Pane:  tui.NewPane("Search"),
		input: input,
	}
	b.Pane.Focus()
	return b
}

// Init initializes the component.
func (b *SearchBox) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards messages to the text input.
func (b *SearchBox) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View renders the component.
func (b *SearchBox) View() string {
	if b.Width() == 0 {
		return ""
	}

	counter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Render(fmt.Sprintf("Found %d results", b.count))

	// Border and padding take two columns on each side.
	inner := max(b.Width()-4, 0)
	fieldWidth := max(inner-lipgloss.Width(counter)-1, 1)
	b.input.Width = max(fieldWidth-lipgloss.Width(b.input.Prompt)-2, 1)

	field := lipgloss.NewStyle().
		Width(fieldWidth).
		MaxWidth(fieldWidth).
		MaxHeight(1).
		Render(b.input.View())
	line := lipgloss.JoinHorizontal(lipgloss.Top, field, " ", counter)
	return tui.RenderBorder(lipgloss.NewStyle().Padding(0, 1).Render(line), max(b.Width()-2, 0), 1, b.Focused())
}

// Focus focuses the pane and the text input.
func (b *SearchBox) Focus() {
	b.Pane.Focus()
	b.input.Focus()
}

// Blur removes focus from the pane and the text input.
func (b *SearchBox) Blur() {
	b.Pane.Blur()
	b.input.Blur()
}

// Value returns the current query.
func (b *SearchBox) Value() string {
	return b.input.Value()
}

// SetValue replaces the current query.
func (b *SearchBox) SetValue(s string) {
	b.input.SetValue(s)
}

// SetCount sets the number of results shown next to the input.
func (b *SearchBox) SetCount(n int) {
	b.count = n
}

// Count returns the number of results shown.
func (b *SearchBox) Count() int {
	return b.count
}
