package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/Digital-Shane/jojo/internal/tui/components"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionFactory creates the session that drives one title.
type SessionFactory func(externalID string) *playback.Session

// loadMsg starts a fresh session for a title. Completions from the
// previous session are ignored.
type loadMsg struct{ externalID string }

type resolvedMsg struct {
	seq int
	err error
}

type detailsMsg struct {
	seq int
	err error
}

type clearStatusMsg struct{ id int }

const statusTTL = 4 * time.Second

// Model is the player view: details panel, server bar and favorite toggle.
type Model struct {
	newSession SessionFactory
	session    *playback.Session
	selector   *playback.Selector
	externalID string
	ctx        context.Context
	runCtx     context.Context
	cancel     context.CancelFunc
	seq        int

	width   int
	height  int
	theme   theme.Theme
	details *viewport.Model

	status    string
	statusErr bool
	statusID  int

	copyFn     func(string) error
	onFavorite func(externalID string, added bool, err error)
	onLoaded   func(*playback.Session)
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// WithContext bounds every catalog call the view makes.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copyFn = fn
	}
}

// WithFavoriteHook is called after every favorite toggle.
func WithFavoriteHook(fn func(externalID string, added bool, err error)) Option {
	return func(m *Model) {
		m.onFavorite = fn
	}
}

// WithLoadedHook is called once per title when details load.
func WithLoadedHook(fn func(*playback.Session)) Option {
	return func(m *Model) {
		m.onLoaded = fn
	}
}

// New creates a player for externalID. The first session starts on Init.
func New(factory SessionFactory, externalID string, selector *playback.Selector, opts ...Option) *Model {
	m := &Model{
		newSession: factory,
		selector:   selector,
		externalID: externalID,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		copyFn:     clipboard.WriteAll,
	}

	initOpts := append([]Option{WithTheme(theme.Default())}, opts...)
	for _, opt := range initOpts {
		opt(m)
	}

	m.details = components.NewViewport(m.width-6, m.detailsHeight(), m.theme)
	return m
}

// Session returns the session for the current title.
func (m *Model) Session() *playback.Session {
	return m.session
}

// Selector returns the server selector.
func (m *Model) Selector() *playback.Selector {
	return m.selector
}

// Status returns the last status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) Init() tea.Cmd {
	return m.start(m.externalID)
}

// start begins a new session and cancels any in-flight steps.
func (m *Model) start(externalID string) tea.Cmd {
	m.stop()
	ctx, cancel := context.WithCancel(m.ctx)
	m.runCtx, m.cancel = ctx, cancel
	m.seq++
	m.externalID = externalID
	m.session = m.newSession(externalID)
	m.details.SetContent("")
	m.details.GotoTop()

	seq, s := m.seq, m.session
	return func() tea.Msg {
		return resolvedMsg{seq: seq, err: s.Resolve(ctx)}
	}
}

// stop cancels the current session's context. A details fetch that
// completes afterwards does not record history.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) loadDetails() tea.Cmd {
	seq, s, ctx := m.seq, m.session, m.runCtx
	return func() tea.Msg {
		return detailsMsg{seq: seq, err: s.LoadDetails(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.Width = m.width - 6
		m.details.Height = m.detailsHeight()
		m.refreshDetails()
		return m, nil

	case loadMsg:
		return m, m.start(msg.externalID)

	case resolvedMsg:
		if msg.seq != m.seq || m.cancel == nil {
			return m, nil
		}
		if msg.err != nil {
			m.stop()
			return m, nil
		}
		return m, m.loadDetails()

	case detailsMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.stop()
		if msg.err != nil {
			return m, nil
		}
		m.refreshDetails()
		if m.onLoaded != nil {
			m.onLoaded(m.session)
		}
		if w := m.session.Warning(); w != nil {
			return m, m.setStatus(w.Error(), true)
		}
		return m, nil

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc", "ctrl+c":
		m.stop()
		return m, tea.Quit

	case "r":
		if m.session == nil || !m.session.State().Failed() {
			return m, nil
		}
		id := m.externalID
		return m, func() tea.Msg { return loadMsg{externalID: id} }

	case "tab", "right", "l":
		m.selector.Next()
		return m, nil

	case "shift+tab", "left", "h":
		n := len(m.selector.Servers())
		_ = m.selector.SelectIndex((m.selector.CurrentIndex() + n - 1) % n)
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if err := m.selector.SelectIndex(int(key[0] - '1')); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, nil

	case "f":
		return m, m.toggleFavorite()

	case "c":
		url := m.EmbedURL()
		if url == "" {
			return m, m.setStatus("Nothing to copy yet", true)
		}
		if err := m.copyFn(url); err != nil {
			return m, m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		}
		return m, m.setStatus("Embed URL copied", false)
	}

	if components.ScrollKey(m.details, key) {
		return m, nil
	}
	return m, nil
}

func (m *Model) toggleFavorite() tea.Cmd {
	added, err := m.session.ToggleFavorite()
	m.refreshDetails()
	if m.onFavorite != nil && !errors.Is(err, media.ErrNotAuthenticated) {
		m.onFavorite(m.session.ExternalID(), added, err)
	}
	switch {
	case errors.Is(err, media.ErrNotAuthenticated):
		return m.setStatus("Log in to save favorites", true)
	case err != nil:
		return m.setStatus(fmt.Sprintf("Favorite not saved: %v", err), true)
	case added:
		return m.setStatus("Added to favorites", false)
	default:
		return m.setStatus("Removed from favorites", false)
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusErr = isErr
	return components.DebounceMsg(statusTTL, clearStatusMsg{id: m.statusID})
}

// EmbedURL is the current server's URL for a loaded title, or "".
func (m *Model) EmbedURL() string {
	if m.session == nil || m.session.State() != playback.DetailsLoaded {
		return ""
	}
	return m.selector.EmbedURL(m.session.ExternalID())
}

func (m *Model) detailsHeight() int {
	h := m.height - 14
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) refreshDetails() {
	if m.session == nil {
		return
	}
	item := m.session.Item()
	if item == nil {
		return
	}
	m.details.SetContent(m.formatDetails(item, m.details.Width))
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render("jojo player"))
	b.WriteByte('\n')

	if m.session == nil {
		return b.String()
	}

	state := m.session.State()
	switch {
	case state.Failed():
		b.WriteString(m.renderFailure())
	case state == playback.DetailsLoaded:
		b.WriteString(m.renderLoaded())
	default:
		b.WriteString(m.renderLoading(state))
	}
	b.WriteByte('\n')

	if m.status != "" {
		kind := theme.BadgeSuccess
		if m.statusErr {
			kind = theme.BadgeError
		}
		b.WriteString(m.theme.BadgeStyle(kind).Render(m.status))
		b.WriteByte('\n')
	}

	help := "Tab/←→ Server | 1-5 Pick server | f Favorite | c Copy URL | ↑↓ Scroll | q Quit"
	b.WriteString(lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(m.theme.Palette().Muted).
		Render(help))

	return b.String()
}

func (m *Model) renderLoading(state playback.State) string {
	text := fmt.Sprintf("%s Resolving %s...", m.theme.Icon("loading"), m.session.ExternalID())
	if state == playback.Resolved || state == playback.FetchingDetails {
		title := m.session.ExternalID()
		if s := m.session.Summary(); s != nil && s.Title != "" {
			title = s.Title
		}
		text = fmt.Sprintf("%s Loading details for %s...", m.theme.Icon("loading"), title)
	}
	return m.theme.StatusBarStyle().Width(m.width).Render(text)
}

func (m *Model) renderFailure() string {
	colors := m.theme.Palette()
	box := m.theme.PanelStyle().
		BorderForeground(colors.Error).
		Width(m.width - 4).
		Render(fmt.Sprintf("%s %s\n\nPress r to retry.", m.theme.Icon("error"), m.session.FailureMessage()))
	return box
}

func (m *Model) renderLoaded() string {
	colors := m.theme.Palette()

	panel := m.theme.PanelStyle().
		Width(m.width - 4).
		Padding(0, 1).
		Render(m.details.View())

	var servers []string
	current := m.selector.CurrentIndex()
	for i, s := range m.selector.Servers() {
		servers = append(servers, m.theme.TabStyle(i == current).Render(fmt.Sprintf("%d %s", i+1, s.Name)))
	}
	bar := m.theme.Icon("server") + " " + lipgloss.JoinHorizontal(lipgloss.Top, servers...)

	url := lipgloss.NewStyle().
		Foreground(colors.Accent).
		Render(fmt.Sprintf("%s %s", m.theme.Icon("play"), m.EmbedURL()))

	return lipgloss.JoinVertical(lipgloss.Left, panel, bar, url)
}

// formatDetails renders the loaded record for the details viewport.
func (m *Model) formatDetails(item *media.Item, width int) string {
	var b strings.Builder
	colors := m.theme.Palette()

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Accent)
	valueStyle := lipgloss.NewStyle().
		Foreground(colors.Primary)

	title := item.Title
	if year := item.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	fav := m.theme.Icon("unfavored")
	if m.session.IsFavorite() {
		fav = m.theme.Icon("favorite")
	}
	b.WriteString(fmt.Sprintf("%s %s %s\n\n", m.theme.KindIcon(item.Kind), lipgloss.NewStyle().Bold(true).Render(title), fav))

	b.WriteString(labelStyle.Render("Released: "))
	b.WriteString(valueStyle.Render(orDash(item.ReleaseDate)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("Rating: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s %.1f", m.theme.Icon("rating"), item.Rating)))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("Genres: "))
	b.WriteString(valueStyle.Render(orDash(item.GenreList())))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render("Poster: "))
	b.WriteString(valueStyle.Render(media.PosterURL(item.PosterPath)))
	b.WriteString("\n\n")

	if item.Overview != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(item.Overview))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
