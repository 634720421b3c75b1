package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Component is the interface for all TUI components.
type Component interface {
	// Init initializes the component.
	Init() tea.Cmd

	// Update handles messages and returns the updated component.
	Update(msg tea.Msg) (Component, tea.Cmd)

	// View renders the component.
	View() string

	// Title returns the component title.
	Title() string

	// Focused returns true if the component is focused.
	Focused() bool

	// Focus sets the component as focused.
	Focus()

	// Blur removes focus from the component.
	Blur()

	// SetSize sets the component dimensions.
	SetSize(width, height int)

	// Width returns the component width.
	Width() int

	// Height returns the component height.
	Height() int
}

// Pane holds the state every bordered panel shares. Panels embed it and
// implement Init, Update and View themselves.
type Pane struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewPane creates a pane with a title.
func NewPane(title string) *Pane {
	return &Pane{title: title}
}

// Title returns the pane title.
func (p *Pane) Title() string {
	return p.title
}

// SetTitle changes the pane title.
func (p *Pane) SetTitle(title string) {
	p.title = title
}

// Focused returns true if focused.
func (p *Pane) Focused() bool {
	return p.focused
}

// Focus sets the pane as focused.
func (p *Pane) Focus() {
	p.focused = true
}

// Blur removes focus.
func (p *Pane) Blur() {
	p.focused = false
}

// SetSize sets dimensions, including the border.
func (p *Pane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Width returns the width.
func (p *Pane) Width() int {
	return p.width
}

// Height returns the height.
func (p *Pane) Height() int {
	return p.height
}

// InnerWidth is the width available inside the border.
func (p *Pane) InnerWidth() int {
	return max(p.width-2-2*PanelPaddingH, 0)
}

// InnerHeight is the number of body lines below the title.
func (p *Pane) InnerHeight() int {
	return max(p.height-3, 0)
}

// Frame renders body under the title bar inside the border.
func (p *Pane) Frame(body string) string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	inner := max(p.width-2, 0)
	title := RenderTitle(p.title, inner, p.focused)
	content := lipgloss.NewStyle().
		Padding(0, PanelPaddingH).
		Width(inner).
		Height(p.InnerHeight()).
		MaxHeight(p.InnerHeight()).
		Render(body)
	return RenderBorder(lipgloss.JoinVertical(lipgloss.Left, title, content), inner, max(p.height-2, 0), p.focused)
}

// PanelPaddingH is the horizontal padding inside a pane.
const PanelPaddingH = 1

// Styles

// Styles holds shared text styles.
type Styles struct {
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Accent   lipgloss.Style
	Heading  lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
	}
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62"))
	} else {
		style = style.Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238"))
	}

	return style.Render(title)
}

// RenderBorder renders content with a border.
func RenderBorder(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(lipgloss.Color("62"))
	} else {
		style = style.BorderForeground(lipgloss.Color("240"))
	}

	return style.Render(content)
}

// ScrollOffset returns the first visible row so that cursor stays within a
// window of rows lines starting at offset.
func ScrollOffset(cursor, offset, rows int) int {
	if rows <= 0 {
		return 0
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+rows {
		return cursor - rows + 1
	}
	return offset
}

// Truncate truncates a string to fit within a width.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadRight pads a string to a given width.
func PadRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
