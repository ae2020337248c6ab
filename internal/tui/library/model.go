package library

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/Digital-Shane/jojo/internal/prefs"
	"github.com/Digital-Shane/jojo/internal/tui/components"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Remover deletes id from a user's list.
type Remover func(list prefs.ListKind, id string) error

// Model browses favorites and history. Enter picks a title to play.
type Model struct {
	*treeview.TuiTreeModel[Entry]
	user       string
	width      int
	height     int
	splitRatio float64
	theme      theme.Theme
	remove     Remover

	selected *media.Summary
	status   string

	detailsViewport *viewport.Model
	detailsFocused  bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// WithRemover enables the delete key.
func WithRemover(fn Remover) Option {
	return func(m *Model) {
		m.remove = fn
	}
}

// New creates the library view over tree for user.
func New(tree *treeview.Tree[Entry], user string, opts ...Option) *Model {
	m := &Model{
		user:       user,
		width:      80,
		height:     24,
		splitRatio: 0.5,
	}

	initOpts := append([]Option{WithTheme(theme.Default())}, opts...)
	for _, opt := range initOpts {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	treeWidth := int(float64(m.width)*m.splitRatio) - 2
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[Entry](treeWidth),
		treeview.WithTuiHeight[Entry](m.height-4),
		treeview.WithTuiAllowResize[Entry](true),
		treeview.WithTuiDisableNavBar[Entry](true),
		treeview.WithTuiKeyMap[Entry](keyMap),
	)

	rightWidth := m.width - treeWidth
	m.detailsViewport = components.NewViewport(rightWidth-6, m.height-8, m.theme)
	return m
}

// Selected returns the title picked with enter, or nil.
func (m *Model) Selected() *media.Summary {
	return m.selected
}

// Status returns the last status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) focused() *Entry {
	node := m.TuiTreeModel.Tree.GetFocusedNode()
	if node == nil {
		return nil
	}
	return node.Data()
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeWidth := int(float64(m.width)*m.splitRatio) - 2
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: treeWidth, Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[Entry])

		m.detailsViewport.Width = m.width - treeWidth - 6
		m.detailsViewport.Height = m.height - 8
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "esc", "q", "ctrl+c":
			return m, tea.Quit

		case "tab":
			m.detailsFocused = !m.detailsFocused
			return m, nil

		case "enter":
			if e := m.focused(); e != nil && !e.Header {
				if e.Removed {
					m.status = "That title was removed"
					return m, nil
				}
				s := e.Summary
				m.selected = &s
				return m, tea.Quit
			}

		case "d", "delete":
			m.removeFocused()
			return m, nil
		}

		if m.detailsFocused && components.ScrollKey(m.detailsViewport, key) {
			return m, nil
		}
	}

	if !m.detailsFocused {
		treeModel, cmd := m.TuiTreeModel.Update(msg)
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[Entry])
		return m, cmd
	}
	return m, nil
}

func (m *Model) removeFocused() {
	e := m.focused()
	if e == nil || e.Header || e.Removed {
		return
	}
	if m.remove == nil {
		m.status = "Removing is not available here"
		return
	}
	if err := m.remove(e.List, e.Summary.ExternalID); err != nil {
		m.status = fmt.Sprintf("Remove failed: %v", err)
		return
	}
	e.Removed = true
	m.status = fmt.Sprintf("Removed %s from %s", e.Summary.Title, strings.ToLower(e.List.Title()))
}

func (m *Model) View() string {
	var b strings.Builder

	title := "jojo library"
	if m.user != "" {
		title = fmt.Sprintf("jojo library · %s", m.user)
	}
	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render(title))
	b.WriteByte('\n')

	leftWidth := int(float64(m.width) * m.splitRatio)
	rightWidth := m.width - leftWidth
	left := m.theme.SizedPanel(leftWidth, m.height-3, m.theme.Palette().Primary).Render(m.TuiTreeModel.View())
	right := m.renderDetails(rightWidth, m.height-3)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteByte('\n')

	help := m.status
	if help == "" {
		help = "↑↓ Navigate | Enter: Play | d: Remove | Tab: Details Focus | Esc/q: Quit"
	}
	b.WriteString(lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(m.theme.Palette().Muted).
		Render(help))
	return b.String()
}

func (m *Model) renderDetails(width, height int) string {
	e := m.focused()
	switch {
	case e == nil:
		m.detailsViewport.SetContent("")
	case e.Header:
		m.detailsViewport.SetContent(lipgloss.NewStyle().
			Italic(true).
			Foreground(m.theme.Palette().Muted).
			Render("Select a title to view details"))
	default:
		m.detailsViewport.SetContent(m.formatEntry(e))
	}
	return m.theme.SizedPanel(width, height, m.theme.Palette().Secondary).Render(m.detailsViewport.View())
}

func (m *Model) formatEntry(e *Entry) string {
	var b strings.Builder
	colors := m.theme.Palette()
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	valueStyle := lipgloss.NewStyle().Foreground(colors.Primary)

	s := e.Summary
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.theme.KindIcon(s.Kind), lipgloss.NewStyle().Bold(true).Render(s.Title)))
	rows := [][2]string{
		{"Kind: ", s.Kind.Label()},
		{"IMDb: ", s.ExternalID},
		{"List: ", e.List.Title()},
		{"Poster: ", media.PosterURL(s.PosterPath)},
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteByte('\n')
	}
	if e.Removed {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colors.Error).Render("Removed"))
	}
	return b.String()
}
