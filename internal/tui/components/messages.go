package components

import tea "github.com/charmbracelet/bubbletea"

// SelectMovieMsg is sent when a movie is picked from a list.
type SelectMovieMsg struct {
	ID string
}

// AddWatchedMsg is sent when the open movie should be added to the watched
// list with the given rating.
type AddWatchedMsg struct {
	Rating int
}

// RemoveWatchedMsg is sent when a watched entry should be deleted.
type RemoveWatchedMsg struct {
	ID string
}

// CopyMsg is sent when content should be copied.
type CopyMsg struct {
	Content string
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
