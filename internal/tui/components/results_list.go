package components

import (
	"fmt"
	"strings"

	"github.com/artpar/popcorn/internal/fetch"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// ResultsList shows the current search results.
type ResultsList struct {
	*tui.Pane
	styles   tui.Styles
	state    fetch.State[[]movie.Summary]
	cursor   int
	offset   int
	selected string
	gPressed bool
}

// NewResultsList creates an empty results list.
func NewResultsList() *ResultsList {
	return &ResultsList{
		Pane:   tui.NewPane("Results"),
		styles: tui.DefaultStyles(),
	}
}

// Init initializes the component.
func (l *ResultsList) Init() tea.Cmd {
	return nil
}

// SetState replaces what the list shows.
func (l *ResultsList) SetState(state fetch.State[[]movie.Summary]) {
	l.state = state
	l.cursor = min(l.cursor, max(len(state.Data)-1, 0))
	l.SetTitle(fmt.Sprintf("Results (%d)", len(state.Data)))
}

// Items returns the listed movies.
func (l *ResultsList) Items() []movie.Summary {
	return l.state.Data
}

// Cursor returns the cursor position.
func (l *ResultsList) Cursor() int {
	return l.cursor
}

// Current returns the movie under the cursor.
func (l *ResultsList) Current() (movie.Summary, bool) {
	if l.cursor < 0 || l.cursor >= len(l.state.Data) {
		return movie.Summary{}, false
	}
	return l.state.Data[l.cursor], true
}

// SetSelected marks the movie whose details are open.
func (l *ResultsList) SetSelected(id string) {
	l.selected = id
}

// Selected returns the id of the open movie.
func (l *ResultsList) Selected() string {
	return l.selected
}

// Update handles messages.
func (l *ResultsList) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	if keyMsg.String() != "g" {
		l.gPressed = false
	}

	switch keyMsg.String() {
	case "j", "down":
		l.move(1)
	case "k", "up":
		l.move(-1)
	case "g":
		if l.gPressed {
			l.cursor = 0
			l.gPressed = false
		} else {
			l.gPressed = true
		}
	case "G":
		l.cursor = max(len(l.state.Data)-1, 0)
	case " ", "l", "right":
		if m, ok := l.Current(); ok {
			return l, emit(SelectMovieMsg{ID: m.ID})
		}
	case "y":
		if m, ok := l.Current(); ok {
			return l, emit(CopyMsg{Content: m.ID})
		}
	}
	return l, nil
}

func (l *ResultsList) move(delta int) {
	if len(l.state.Data) == 0 {
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.state.Data)-1)
}

// View renders the component.
func (l *ResultsList) View() string {
	switch {
	case l.state.Loading:
		return l.Frame(l.styles.Muted.Render("Loading..."))
	case l.state.Err != "":
		return l.Frame(l.styles.Error.Render("⛔ " + l.state.Err))
	case len(l.state.Data) == 0:
		return l.Frame(l.styles.Muted.Render("Type at least three characters to search."))
	}

	rows := l.InnerHeight()
	l.offset = tui.ScrollOffset(l.cursor, l.offset, rows)
	end := min(l.offset+rows, len(l.state.Data))

	var b strings.Builder
	for i := l.offset; i < end; i++ {
		m := l.state.Data[i]
		line := tui.Truncate(fmt.Sprintf("%s  🗓 %s", m.Title, m.Year), l.InnerWidth()-2)

		prefix := "  "
		if i == l.cursor {
			prefix = l.styles.Cursor.Render("▸ ")
		}
		if m.ID == l.selected {
			line = l.styles.Selected.Render(line)
		}
		b.WriteString(prefix + line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return l.Frame(b.String())
}
