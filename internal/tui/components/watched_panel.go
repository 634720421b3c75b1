package components

import (
	"fmt"
	"strings"

	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// WatchedPanel shows the watched summary and list.
type WatchedPanel struct {
	*tui.Pane
	styles tui.Styles
	items  []movie.Watched
	stats  movie.Stats
	cursor int
	offset int
}

// NewWatchedPanel creates an empty watched panel.
func NewWatchedPanel() *WatchedPanel {
	return &WatchedPanel{
		Pane:   tui.NewPane("Movies you watched"),
		styles: tui.DefaultStyles(),
	}
}

// Init initializes the component.
func (p *WatchedPanel) Init() tea.Cmd {
	return nil
}

// SetItems replaces the list.
func (p *WatchedPanel) SetItems(items []movie.Watched) {
	p.items = items
	p.stats = movie.Summarize(items)
	p.cursor = min(p.cursor, max(len(items)-1, 0))
}

// Items returns the listed entries.
func (p *WatchedPanel) Items() []movie.Watched {
	return p.items
}

// Stats returns the summary of the listed entries.
func (p *WatchedPanel) Stats() movie.Stats {
	return p.stats
}

// Cursor returns the cursor position.
func (p *WatchedPanel) Cursor() int {
	return p.cursor
}

// Update handles messages.
func (p *WatchedPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if len(p.items) > 0 {
			p.cursor = min(p.cursor+1, len(p.items)-1)
		}
	case "k", "up":
		p.cursor = max(p.cursor-1, 0)
	case "d", "x", "delete":
		if len(p.items) > 0 {
			return p, emit(RemoveWatchedMsg{ID: p.items[p.cursor].ID})
		}
	case " ", "l", "right":
		if len(p.items) > 0 {
			return p, emit(SelectMovieMsg{ID: p.items[p.cursor].ID})
		}
	case "y":
		if len(p.items) > 0 {
			return p, emit(CopyMsg{Content: p.items[p.cursor].ID})
		}
	}
	return p, nil
}

// View renders the component.
func (p *WatchedPanel) View() string {
	summary := p.styles.Heading.Render(fmt.Sprintf("#️⃣ %d movies  ⭐ %.2f  🌟 %.2f  ⏳ %.0f min",
		p.stats.Count, p.stats.AvgIMDbRating, p.stats.AvgUserRating, p.stats.AvgRuntime))

	if len(p.items) == 0 {
		return p.Frame(summary + "\n\n" + p.styles.Muted.Render("Rate a movie to add it here."))
	}

	rows := max(p.InnerHeight()-2, 0)
	p.offset = tui.ScrollOffset(p.cursor, p.offset, rows)
	end := min(p.offset+rows, len(p.items))

	var b strings.Builder
	b.WriteString(summary + "\n\n")
	for i := p.offset; i < end; i++ {
		w := p.items[i]
		stats := fmt.Sprintf("  ⭐ %.1f  🌟 %d  ⏳ %d min", w.IMDbRating, w.UserRating, w.Runtime)
		title := tui.Truncate(w.Title, p.InnerWidth()-2-len([]rune(stats)))

		prefix := "  "
		if i == p.cursor && p.Focused() {
			prefix = p.styles.Cursor.Render("▸ ")
		}
		b.WriteString(prefix + title + p.styles.Muted.Render(stats))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return p.Frame(b.String())
}
