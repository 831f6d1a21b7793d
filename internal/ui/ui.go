package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DashboardView
	ErrorView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Engine
	open         func(string) error
	width        int
	height       int
	spinner      spinner.Model
	newsList     list.Model
	dashboard    *tasks.Dashboard
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// Option configures a [Model].
type Option func(*Model)

// WithOpener replaces the function used to open story links.
func WithOpener(open func(string) error) Option {
	return func(m *Model) { m.open = open }
}

// NewModel creates a new TUI model backed by engine.
func NewModel(ctx context.Context, engine tasks.Engine, opts ...Option) *Model {
	m := &Model{
		ctx:      ctx,
		view:     LoadingView,
		engine:   engine,
		open:     shared.OpenBrowser,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.track)),
		newsList: newNewsList(nil),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func newNewsList(items []models.NewsItem) list.Model {
	l := list.New(newsItems(items), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Artist News"
	l.SetShowHelp(false)
	l.SetStatusBarItemName("story", "stories")
	return l
}

// Init starts the first dashboard load.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.done)

	case MsgDashboardLoaded:
		res := msg.data.(dashboardResult)
		m.progressChan = nil
		m.done = nil
		if res.err != nil {
			m.err = res.err
			m.view = ErrorView
			return m, nil
		}
		if res.dashboard == nil {
			res.dashboard = &tasks.Dashboard{News: []models.NewsItem{}}
		}
		m.err = nil
		m.dashboard = res.dashboard
		m.newsList = newNewsList(res.dashboard.News)
		m.resizeList()
		m.view = DashboardView
		return m, nil

	case MsgLinkOpened:
		res := msg.data.(linkResult)
		if res.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not open %s: %v", res.url, res.err))
		} else {
			m.status = styles.ok.Render("Opened " + res.url)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == DashboardView && m.newsList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		if m.view == LoadingView {
			return m, nil
		}
		return m, m.load()
	case key.Matches(msg, m.keys.open):
		if m.view != DashboardView {
			return m, nil
		}
		if selected, ok := m.newsList.SelectedItem().(newsItem); ok {
			return m, m.openLink(selected.item.URL)
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != DashboardView {
		return m, nil
	}
	var cmd tea.Cmd
	m.newsList, cmd = m.newsList.Update(msg)
	return m, cmd
}

func (m *Model) resizeList() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.newsList.SetSize(m.width-4, max(m.height-10, 4))
}

// load runs the engine in the background and streams its progress back as messages.
//
// The result is queued on done before progress is closed, so a reader that sees the
// closed channel always finds the result waiting.
func (m *Model) load() tea.Cmd {
	m.view = LoadingView
	m.status = ""
	m.progress = tasks.ProgressUpdate{Message: "Connecting to Spotify..."}
	m.progressChan = make(chan tasks.ProgressUpdate, 16)
	m.done = make(chan Msg, 1)

	progress, done := m.progressChan, m.done
	go func() {
		d, err := m.engine.Dashboard(m.ctx, progress)
		done <- dashboardLoadedMsg(d, err)
		close(progress)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progress, done))
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) openLink(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return linkOpenedMsg(url, open(url))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case DashboardView:
		return m.renderDashboard()
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Now Playing")
	step := ""
	if m.progress.Total > 0 {
		step = fmt.Sprintf(" (%d/%d)", m.progress.Step, m.progress.Total)
	}
	return fmt.Sprintf("%s\n%s %s%s\n", title, m.spinner.View(), m.progress.Message, step)
}

func (m *Model) renderError() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), helpView)
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	d := m.dashboard

	title := "Now Playing"
	if name := d.Profile.Name(); name != "" {
		title = fmt.Sprintf("Now Playing for %s", name)
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if !d.Playing() {
		b.WriteString(styles.warn.Render("Nothing is playing right now."))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit}))
		return b.String()
	}

	item := d.Playback.Item
	b.WriteString(styles.track.Render(item.Name))
	if artists := models.ArtistNames(d.Artists()); len(artists) > 0 {
		b.WriteString(" by ")
		b.WriteString(strings.Join(artists, ", "))
	}
	b.WriteString("\n")

	state := "paused"
	if d.Playback.IsPlaying {
		state = "playing"
	}
	meta := fmt.Sprintf("%s / %s • %s", formatter.FormatDuration(d.Playback.ProgressMS), formatter.FormatDuration(item.DurationMS), state)
	if item.Album.Name != "" {
		meta = item.Album.Name + " • " + meta
	}
	b.WriteString(styles.help.Render(meta))
	b.WriteString("\n\n")

	if len(d.News) == 0 {
		b.WriteString(styles.warn.Render("No news found for these artists."))
	} else {
		b.WriteString(m.newsList.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}
