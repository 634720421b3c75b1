package components

import (
	"fmt"
	"strings"

	"github.com/artpar/popcorn/internal/fetch"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DetailsPanel shows the open movie and lets the user rate it.
type DetailsPanel struct {
	*tui.Pane
	styles  tui.Styles
	state   fetch.State[movie.Details]
	rating  int
	watched *movie.Watched
}

// NewDetailsPanel creates an empty details panel.
func NewDetailsPanel() *DetailsPanel {
	return &DetailsPanel{
		Pane:   tui.NewPane("Details"),
		styles: tui.DefaultStyles(),
	}
}

// Init initializes the component.
func (p *DetailsPanel) Init() tea.Cmd {
	return nil
}

// Open starts showing a new movie. Any rating in progress is dropped.
func (p *DetailsPanel) Open(state fetch.State[movie.Details], watched movie.Watched, isWatched bool) {
	p.state = state
	p.rating = 0
	p.watched = nil
	if isWatched {
		p.watched = &watched
	}
}

// SetState replaces the fetched details.
func (p *DetailsPanel) SetState(state fetch.State[movie.Details]) {
	p.state = state
	if state.Data.Title != "" && !state.Loading {
		p.SetTitle(state.Data.Title)
	}
}

// Reset clears the panel.
func (p *DetailsPanel) Reset() {
	p.state = fetch.State[movie.Details]{}
	p.rating = 0
	p.watched = nil
	p.SetTitle("Details")
}

// Rating returns the rating being entered.
func (p *DetailsPanel) Rating() int {
	return p.rating
}

// Update handles messages.
func (p *DetailsPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || p.watched != nil || p.state.Loading || p.state.Err != "" {
		return p, nil
	}

	key := keyMsg.String()
	switch {
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		p.rating = int(key[0] - '0')
		if p.rating == 0 {
			p.rating = movie.MaxRating
		}
	case key == "l" || key == "right" || key == "+":
		p.rating = min(p.rating+1, movie.MaxRating)
	case key == "h" || key == "left" || key == "-":
		p.rating = max(p.rating-1, movie.MinRating)
	case key == "a":
		if p.rating >= movie.MinRating {
			return p, emit(AddWatchedMsg{Rating: p.rating})
		}
	case key == "y":
		if p.state.Data.ID != "" {
			return p, emit(CopyMsg{Content: p.state.Data.ID})
		}
	}
	return p, nil
}

// View renders the component.
func (p *DetailsPanel) View() string {
	switch {
	case p.state.Loading:
		return p.Frame(p.styles.Muted.Render("Loading..."))
	case p.state.Err != "":
		return p.Frame(p.styles.Error.Render("⛔ " + p.state.Err))
	case p.state.Data.ID == "":
		return p.Frame("")
	}

	d := p.state.Data
	width := p.InnerWidth()
	wrap := lipgloss.NewStyle().Width(width)

	lines := []string{
		p.styles.Heading.Render(d.Title),
		p.styles.Muted.Render(fmt.Sprintf("%s • %s", d.Released, d.Runtime)),
		d.Genre,
		p.styles.Accent.Render("⭐ " + d.IMDbRating + " IMDb rating"),
		"",
		p.renderRating(),
		"",
		wrap.Render(p.styles.Muted.Render(d.Plot)),
		"",
		wrap.Render("Starring " + d.Actors),
		"Directed by " + d.Director,
	}
	return p.Frame(strings.Join(lines, "\n"))
}

func (p *DetailsPanel) renderRating() string {
	if p.watched != nil {
		return p.styles.Accent.Render(fmt.Sprintf("You rated this movie %d ⭐", p.watched.UserRating))
	}

	stars := p.styles.Accent.Render(strings.Repeat("★", p.rating)) +
		p.styles.Muted.Render(strings.Repeat("☆", movie.MaxRating-p.rating))
	hint := "press 1-9, 0 for 10"
	if p.rating >= movie.MinRating {
		hint = fmt.Sprintf("%d  press a to add to list", p.rating)
	}
	return stars + "  " + p.styles.Muted.Render(hint)
}
