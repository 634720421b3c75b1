package views

import (
	"context"
	"strings"
	"time"

	"github.com/artpar/popcorn/internal/app"
	"github.com/artpar/popcorn/internal/fetch"
	"github.com/artpar/popcorn/internal/keybind"
	"github.com/artpar/popcorn/internal/movie"
	"github.com/artpar/popcorn/internal/tui"
	"github.com/artpar/popcorn/internal/tui/components"
	"github.com/artpar/popcorn/internal/watched"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Pane represents which pane is focused.
type Pane int

const (
	PaneSearch Pane = iota
	PaneResults
	PaneDetails
	PaneWatched
)

// DefaultTitle is the terminal title when no movie is open.
const DefaultTitle = "popcorn"

// MainView is the search, results and details/watched layout.
type MainView struct {
	ctx          context.Context
	log          logrus.FieldLogger
	width        int
	height       int
	focusedPane  Pane
	search       *components.SearchBox
	results      *components.ResultsList
	details      *components.DetailsPanel
	watchedPanel *components.WatchedPanel
	movies       *fetch.MovieSearch
	movie        *fetch.MovieDetails
	watched      *watched.List
	keys         *keybind.Dispatcher
	unbind       []func()
	detailsKeys  *keybind.Scope
	selectedID   string
	pending      []tea.Cmd
	showHelp     bool
	notification string
	notifyUntil  time.Time
	copy         func(string) error
}

// clearNotificationMsg is sent to clear the notification.
type clearNotificationMsg struct{}

// NewMainView creates the main view on top of a.
func NewMainView(ctx context.Context, a *app.App) *MainView {
	view := &MainView{
		ctx:          ctx,
		log:          a.Logger().WithField("component", "tui"),
		search:       components.NewSearchBox(),
		results:      components.NewResultsList(),
		details:      components.NewDetailsPanel(),
		watchedPanel: components.NewWatchedPanel(),
		movies:       a.NewSearch(),
		movie:        a.NewDetails(),
		watched:      a.Watched(),
		keys:         a.Keys(),
		focusedPane:  PaneSearch,
		copy:         clipboard.WriteAll,
	}
	view.watchedPanel.SetItems(view.watched.All())
	view.results.SetState(view.movies.State())

	view.unbind = append(view.unbind,
		view.keys.Bind("enter", view.focusSearch),
		view.keys.Bind("ctrl+c", func() { view.queue(tea.Quit) }),
	)
	return view
}

// Init initializes the view.
func (v *MainView) Init() tea.Cmd {
	return tea.Batch(v.search.Init(), tea.SetWindowTitle(DefaultTitle))
}

// Close releases key bindings and cancels in-flight requests.
func (v *MainView) Close() {
	for _, unbind := range v.unbind {
		unbind()
	}
	v.unbind = nil
	if v.detailsKeys != nil {
		v.detailsKeys.Close()
		v.detailsKeys = nil
	}
	v.movies.Close()
	v.movie.Close()
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	// Handle help overlay first
	if v.showHelp {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if keyMsg.Type == tea.KeyEsc || keyMsg.String() == "?" || keyMsg.String() == "q" {
				v.showHelp = false
			}
			return v, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.updatePaneSizes()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case fetch.Result[[]movie.Summary]:
		if v.movies.Apply(msg) {
			v.syncResults()
		}
		return v, nil

	case fetch.Result[movie.Details]:
		if !v.movie.Apply(msg) {
			return v, nil
		}
		state := v.movie.State()
		v.details.SetState(state)
		if state.Err == "" && state.Data.Title != "" {
			return v, tea.SetWindowTitle("Movie | " + state.Data.Title)
		}
		return v, nil

	case components.SelectMovieMsg:
		cmd := v.selectMovie(msg.ID)
		return v, v.flush(cmd)

	case components.AddWatchedMsg:
		v.addWatched(msg.Rating)
		return v, v.flush()

	case components.RemoveWatchedMsg:
		v.removeWatched(msg.ID)
		return v, v.flush()

	case components.CopyMsg:
		return v, v.flush(v.handleCopy(msg.Content))

	case clearNotificationMsg:
		if !time.Now().Before(v.notifyUntil) {
			v.notification = ""
		}
		return v, nil
	}

	// Forward everything else, such as cursor blinks, to the search box
	_, cmd := v.search.Update(msg)
	return v, cmd
}

func (v *MainView) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	// Listeners observe the key; routing below uses the pane that was
	// focused when it arrived.
	focused := v.focusedPane
	v.keys.Dispatch(msg)

	if focused == PaneSearch {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyDown:
			v.focusPane(PaneResults)
			return v, v.flush()
		case tea.KeyTab:
			v.cycleFocusForward()
			return v, v.flush()
		case tea.KeyShiftTab:
			v.cycleFocusBackward()
			return v, v.flush()
		case tea.KeyEnter, tea.KeyCtrlC:
			return v, v.flush()
		}

		before := v.search.Value()
		_, cmd := v.search.Update(msg)
		if query := v.search.Value(); query != before {
			return v, v.flush(cmd, v.observeQuery(query))
		}
		return v, v.flush(cmd)
	}

	switch msg.String() {
	case "tab":
		v.cycleFocusForward()
		return v, v.flush()
	case "shift+tab":
		v.cycleFocusBackward()
		return v, v.flush()
	case "q":
		return v, v.flush(tea.Quit)
	case "?":
		v.showHelp = true
		return v, v.flush()
	case "/":
		v.focusPane(PaneSearch)
		return v, v.flush()
	}

	return v, v.flush(v.forwardTo(focused, msg))
}

func (v *MainView) forwardTo(pane Pane, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch pane {
	case PaneResults:
		_, cmd = v.results.Update(msg)
	case PaneDetails:
		_, cmd = v.details.Update(msg)
	case PaneWatched:
		_, cmd = v.watchedPanel.Update(msg)
	}
	return cmd
}

// focusSearch is bound to Enter: outside the search box it jumps back to
// an empty query.
func (v *MainView) focusSearch() {
	if v.focusedPane == PaneSearch {
		return
	}
	v.focusPane(PaneSearch)
	v.search.SetValue("")
	v.queue(v.observeQuery(""))
}

func (v *MainView) observeQuery(query string) tea.Cmd {
	cmd := v.movies.Observe(query)
	v.syncResults()
	return cmd
}

func (v *MainView) syncResults() {
	state := v.movies.State()
	v.results.SetState(state)
	v.search.SetCount(len(state.Data))
}

func (v *MainView) selectMovie(id string) tea.Cmd {
	if id == v.selectedID {
		v.closeDetails()
		return nil
	}

	v.selectedID = id
	v.results.SetSelected(id)
	if v.detailsKeys == nil {
		v.detailsKeys = v.keys.NewScope()
		v.detailsKeys.Bind("escape", v.closeDetails)
	}

	cmd := v.movie.Observe(id)
	entry, ok := v.watched.Find(id)
	v.details.Open(v.movie.State(), entry, ok)
	v.focusPane(PaneDetails)
	v.log.WithField("id", id).Debug("movie selected")
	return cmd
}

func (v *MainView) closeDetails() {
	if v.selectedID == "" {
		return
	}
	v.movie.Close()
	if v.detailsKeys != nil {
		v.detailsKeys.Close()
		v.detailsKeys = nil
	}
	v.selectedID = ""
	v.results.SetSelected("")
	v.details.Reset()
	if v.focusedPane == PaneDetails {
		v.focusPane(PaneResults)
	}
	v.queue(tea.SetWindowTitle(DefaultTitle))
}

func (v *MainView) addWatched(rating int) {
	state := v.movie.State()
	if state.Loading || state.Err != "" || state.Data.ID != v.selectedID {
		return
	}

	entry, err := movie.NewWatched(state.Data, rating)
	if err != nil {
		v.notify("✗ " + err.Error())
		return
	}
	added, err := v.watched.Add(v.ctx, entry)
	if err != nil {
		v.log.WithError(err).Error("failed to save watched list")
		v.notify("✗ Could not save watched list")
		return
	}

	v.watchedPanel.SetItems(v.watched.All())
	if added {
		v.notify("✓ Added " + entry.Title)
	}
	v.closeDetails()
}

func (v *MainView) removeWatched(id string) {
	removed, err := v.watched.Remove(v.ctx, id)
	if err != nil {
		v.log.WithError(err).Error("failed to save watched list")
		v.notify("✗ Could not save watched list")
		return
	}
	v.watchedPanel.SetItems(v.watched.All())
	if removed {
		v.notify("✓ Removed from watched")
	}
}

func (v *MainView) handleCopy(content string) tea.Cmd {
	if err := v.copy(content); err != nil {
		v.log.WithError(err).Warn("copy failed")
		v.notify("✗ Copy failed")
	} else {
		v.notify("✓ Copied " + content)
	}
	return nil
}

func (v *MainView) notify(text string) {
	v.notification = text
	v.notifyUntil = time.Now().Add(2 * time.Second)

	// Schedule clearing the notification
	v.queue(tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return clearNotificationMsg{}
	}))
}

// queue holds commands produced by key listeners until Update returns.
func (v *MainView) queue(cmd tea.Cmd) {
	if cmd != nil {
		v.pending = append(v.pending, cmd)
	}
}

func (v *MainView) flush(cmds ...tea.Cmd) tea.Cmd {
	cmds = append(cmds, v.pending...)
	v.pending = nil
	return tea.Batch(cmds...)
}

func (v *MainView) rightPane() Pane {
	if v.selectedID != "" {
		return PaneDetails
	}
	return PaneWatched
}

func (v *MainView) cycleFocusForward() {
	switch v.focusedPane {
	case PaneSearch:
		v.focusPane(PaneResults)
	case PaneResults:
		v.focusPane(v.rightPane())
	default:
		v.focusPane(PaneSearch)
	}
}

func (v *MainView) cycleFocusBackward() {
	switch v.focusedPane {
	case PaneSearch:
		v.focusPane(v.rightPane())
	case PaneResults:
		v.focusPane(PaneSearch)
	default:
		v.focusPane(PaneResults)
	}
}

func (v *MainView) focusPane(pane Pane) {
	// Blur all
	v.search.Blur()
	v.results.Blur()
	v.details.Blur()
	v.watchedPanel.Blur()

	// Focus the target
	v.focusedPane = pane
	switch pane {
	case PaneSearch:
		v.search.Focus()
	case PaneResults:
		v.results.Focus()
	case PaneDetails:
		v.details.Focus()
	case PaneWatched:
		v.watchedPanel.Focus()
	}
}

func (v *MainView) updatePaneSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}

	// Reserve 3 lines for the search box and 2 for help bar + status bar
	bodyHeight := max(v.height-5, 4)

	leftWidth := v.width * 40 / 100
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > 60 {
		leftWidth = 60
	}
	rightWidth := max(v.width-leftWidth, 0)

	v.search.SetSize(v.width, 3)
	v.results.SetSize(leftWidth, bodyHeight)
	v.details.SetSize(rightWidth, bodyHeight)
	v.watchedPanel.SetSize(rightWidth, bodyHeight)
}

// View renders the view.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}

	if v.showHelp {
		return v.renderHelp()
	}

	right := v.watchedPanel.View()
	if v.selectedID != "" {
		right = v.details.View()
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top, v.results.View(), right)

	return lipgloss.JoinVertical(lipgloss.Left,
		v.search.View(),
		panes,
		v.renderHelpBar(),
		v.renderStatusBar(),
	)
}

// renderHelpBar renders context-sensitive keyboard shortcuts.
func (v *MainView) renderHelpBar() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))
	sepStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	sep := sepStyle.Render(" │ ")

	var hints []string
	switch v.focusedPane {
	case PaneSearch:
		hints = []string{
			keyStyle.Render("Type") + descStyle.Render(" Search"),
			keyStyle.Render("Esc/↓") + descStyle.Render(" Results"),
		}
	case PaneResults:
		hints = []string{
			keyStyle.Render("j/k") + descStyle.Render(" Navigate"),
			keyStyle.Render("Space") + descStyle.Render(" Open"),
			keyStyle.Render("y") + descStyle.Render(" Copy id"),
			keyStyle.Render("Enter") + descStyle.Render(" New search"),
		}
	case PaneDetails:
		hints = []string{
			keyStyle.Render("1-9,0") + descStyle.Render(" Rate"),
			keyStyle.Render("a") + descStyle.Render(" Add"),
			keyStyle.Render("Esc") + descStyle.Render(" Close"),
		}
	case PaneWatched:
		hints = []string{
			keyStyle.Render("j/k") + descStyle.Render(" Navigate"),
			keyStyle.Render("d") + descStyle.Render(" Delete"),
			keyStyle.Render("Space") + descStyle.Render(" Open"),
		}
	}

	hints = append(hints,
		keyStyle.Render("Tab")+descStyle.Render(" Next pane"),
		keyStyle.Render("?")+descStyle.Render(" Help"),
	)

	barStyle := lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	return barStyle.Render(strings.Join(hints, sep))
}

// renderStatusBar renders the bottom status bar.
func (v *MainView) renderStatusBar() string {
	var items []string

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	if v.focusedPane == PaneSearch {
		modeStyle = modeStyle.
			Background(lipgloss.Color("214")).
			Foreground(lipgloss.Color("0"))
		items = append(items, modeStyle.Render("SEARCH"))
	} else {
		modeStyle = modeStyle.
			Background(lipgloss.Color("34")).
			Foreground(lipgloss.Color("255"))
		items = append(items, modeStyle.Render("BROWSE"))
	}

	paneStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)
	items = append(items, paneStyle.Render(v.paneName()))

	if v.movies.State().Loading || v.movie.State().Loading {
		loadingStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
		items = append(items, loadingStyle.Render("⏳ loading"))
	}

	if v.notification != "" {
		notifyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true).
			Padding(0, 1)
		if strings.HasPrefix(v.notification, "✗") {
			notifyStyle = notifyStyle.Foreground(lipgloss.Color("160"))
		}
		items = append(items, notifyStyle.Render(v.notification))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Padding(0, 1)
	helpHint := helpStyle.Render("? help  q quit")

	leftContent := strings.Join(items, " ")
	spacerWidth := max(v.width-lipgloss.Width(leftContent)-lipgloss.Width(helpHint), 0)

	barStyle := lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("236"))

	return barStyle.Render(leftContent + strings.Repeat(" ", spacerWidth) + helpHint)
}

func (v *MainView) paneName() string {
	switch v.focusedPane {
	case PaneResults:
		return "Results"
	case PaneDetails:
		return "Details"
	case PaneWatched:
		return "Watched"
	default:
		return "Search"
	}
}

func (v *MainView) renderHelp() string {
	helpContent := []string{
		"popcorn",
		"",
		"Search",
		"  type          search as you type (3+ characters)",
		"  Esc / ↓       move to results",
		"",
		"Anywhere outside the search box",
		"  Enter         clear the query and start a new search",
		"  /             back to the search box",
		"  Tab           next pane",
		"  q             quit",
		"",
		"Results and watched list",
		"  j/k           move",
		"  Space / l     open details (again to close)",
		"  y             copy IMDb id",
		"  d             delete from watched",
		"",
		"Details",
		"  1-9, 0        rate (0 is 10)",
		"  h/l           lower / raise rating",
		"  a             add to watched",
		"  Esc           close",
		"",
		"Press ? or Esc to close this help",
	}

	style := lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Padding(1, 2)

	return style.Render(strings.Join(helpContent, "\n"))
}

// Name returns the view name.
func (v *MainView) Name() string {
	return "Main"
}

// Title returns the view title.
func (v *MainView) Title() string {
	return "popcorn"
}

// Focused returns true; the main view is always focused.
func (v *MainView) Focused() bool {
	return true
}

// Focus is a no-op.
func (v *MainView) Focus() {}

// Blur is a no-op.
func (v *MainView) Blur() {}

// SetSize sets the view dimensions.
func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updatePaneSizes()
}

// Width returns the width.
func (v *MainView) Width() int {
	return v.width
}

// Height returns the height.
func (v *MainView) Height() int {
	return v.height
}

// FocusedPane returns the focused pane.
func (v *MainView) FocusedPane() Pane {
	return v.focusedPane
}

// FocusPane focuses a pane.
func (v *MainView) FocusPane(pane Pane) {
	v.focusPane(pane)
}

// SearchBox returns the search input.
func (v *MainView) SearchBox() *components.SearchBox {
	return v.search
}

// ResultsList returns the results list.
func (v *MainView) ResultsList() *components.ResultsList {
	return v.results
}

// DetailsPanel returns the details panel.
func (v *MainView) DetailsPanel() *components.DetailsPanel {
	return v.details
}

// WatchedPanel returns the watched panel.
func (v *MainView) WatchedPanel() *components.WatchedPanel {
	return v.watchedPanel
}

// SelectedID returns the id of the open movie, or "".
func (v *MainView) SelectedID() string {
	return v.selectedID
}

// ShowingHelp returns true if the help overlay is visible.
func (v *MainView) ShowingHelp() bool {
	return v.showHelp
}

// Notification returns the current notification text.
func (v *MainView) Notification() string {
	return v.notification
}

// SetClipboard replaces the clipboard writer.
func (v *MainView) SetClipboard(write func(string) error) {
	v.copy = write
}
