// Package undo is the session browser behind `jojo undo`.
package undo

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/log"
	"github.com/Digital-Shane/jojo/internal/tui/components"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	undoSessionFn   = log.UndoSession
	removeSessionFn = log.RemoveSession
)

type phase int

const (
	browsing phase = iota
	confirming
	undoing
	done
)

// undoneMsg carries the outcome of reverting one session.
type undoneMsg struct {
	reverted  int
	failed    int
	errs      []error
	removeErr error
}

// Model lists logged sessions and reverts the one the user confirms.
type Model struct {
	tree    *treeview.TuiTreeModel[log.SessionSummary]
	prefs   log.Mutator
	theme   theme.Theme
	details *viewport.Model

	phase          phase
	detailsFocused bool
	result         undoneMsg

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// New builds the browser over tree. Reverted changes are applied through
// prefs.
func New(tree *treeview.Tree[log.SessionSummary], prefs log.Mutator, opts ...Option) *Model {
	m := &Model{
		prefs:  prefs,
		theme:  theme.Default(),
		width:  80,
		height: 24,
	}
	for _, opt := range opts {
		opt(m)
	}

	keys := treeview.DefaultKeyMap()
	keys.SearchStart = nil
	keys.Reset = nil
	m.tree = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiAllowResize[log.SessionSummary](true),
		treeview.WithTuiDisableNavBar[log.SessionSummary](true),
		treeview.WithTuiKeyMap[log.SessionSummary](keys),
	)
	m.details = components.NewViewport(0, 0, m.theme)
	m.resize()
	return m
}

// Result reports how the confirmed undo went. ok is false when the browser
// closed without undoing anything.
func (m *Model) Result() (reverted, failed int, ok bool) {
	return m.result.reverted, m.result.failed, m.phase == done
}

func (m *Model) leftWidth() int {
	return m.width / 2
}

// resize fits the tree and the details viewport to the window. The two
// panels share the rows between the header and the help line.
func (m *Model) resize() {
	panelHeight := m.height - 2
	m.tree.Update(tea.WindowSizeMsg{Width: m.leftWidth() - 4, Height: max(panelHeight-2, 1)})
	m.details.Width = max(m.width-m.leftWidth()-6, 1)
	m.details.Height = max(panelHeight-4, 1)
}

func (m *Model) focused() *log.SessionSummary {
	node := m.tree.Tree.GetFocusedNode()
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
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case undoneMsg:
		m.result = msg
		m.phase = done
		m.details.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.phase {
		case browsing:
			return m.browseKey(msg)
		case confirming:
			return m.confirmKey(msg)
		case done:
			switch msg.String() {
			case "q", "esc", "enter":
				return m, tea.Quit
			}
		}
		return m, nil
	}

	if m.phase == browsing && !m.detailsFocused {
		_, cmd := m.tree.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) browseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		m.detailsFocused = !m.detailsFocused
		return m, nil
	case "enter":
		if m.focused() != nil {
			m.phase = confirming
		}
		return m, nil
	}

	if m.detailsFocused {
		components.ScrollKey(m.details, key)
		return m, nil
	}
	_, cmd := m.tree.Update(msg)
	m.details.GotoTop()
	return m, cmd
}

func (m *Model) confirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y", "Y":
		summary := m.focused()
		if summary == nil {
			m.phase = browsing
			return m, nil
		}
		m.phase = undoing
		return m, m.performUndo(*summary)
	case "n", "N", "esc":
		m.phase = browsing
	}
	return m, nil
}

// performUndo reverts the session and deletes its log once every change
// has been reverted.
func (m *Model) performUndo(summary log.SessionSummary) tea.Cmd {
	prefs := m.prefs
	return func() tea.Msg {
		reverted, failed, errs := undoSessionFn(prefs, summary.Session)
		msg := undoneMsg{reverted: reverted, failed: failed, errs: errs}
		if failed == 0 {
			msg.removeErr = removeSessionFn(summary.FilePath)
		}
		return msg
	}
}

func (m *Model) View() string {
	palette := m.theme.Palette()

	header := m.theme.HeaderStyle().Width(m.width).Render("jojo Undo Sessions")

	panelHeight := m.height - 2
	listBorder, detailBorder := palette.Primary, palette.Secondary
	if m.detailsFocused {
		listBorder, detailBorder = palette.Muted, palette.Accent
	}
	left := m.theme.SizedPanel(m.leftWidth(), panelHeight, listBorder).Render(m.tree.View())

	m.details.SetContent(m.detailsContent())
	right := m.theme.SizedPanel(m.width-m.leftWidth(), panelHeight, detailBorder).Render(m.details.View())

	help := lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(palette.Muted).
		Render(m.helpText())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		help,
	)
}

func (m *Model) helpText() string {
	switch m.phase {
	case confirming:
		return "Enter/y: Undo | n/Esc: Cancel"
	case undoing:
		return "Undoing changes..."
	case done:
		return "Enter/q/Esc: Exit"
	}
	if m.detailsFocused {
		return "Tab: List | ↑↓ PgUp/PgDn: Scroll | Enter: Undo | q/Esc: Quit"
	}
	return "Tab: Details | ↑↓ Navigate | Enter: Undo | q/Esc: Quit"
}

func (m *Model) detailsContent() string {
	palette := m.theme.Palette()
	label := lipgloss.NewStyle().Bold(true).Foreground(palette.Accent)
	muted := lipgloss.NewStyle().Foreground(palette.Muted)

	switch m.phase {
	case undoing:
		return fmt.Sprintf("%s Undoing operations...", m.theme.Icon("loading"))
	case done:
		return m.resultContent()
	}

	summary := m.focused()
	if summary == nil {
		return muted.Italic(true).Render("No session selected")
	}
	session := summary.Session
	meta := session.Metadata

	var b strings.Builder
	if m.phase == confirming {
		fmt.Fprintf(&b, "%s\n\n", label.Render(fmt.Sprintf("Undo %d change(s) from %q?", countReversible(session), commandLine(meta))))
		b.WriteString(muted.Render("Changes are reverted newest first. Logins and logouts stay as they are."))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "%s%s\n", label.Render("Command: "), commandLine(meta))
	fmt.Fprintf(&b, "%s%s (%s)\n", label.Render("When: "), summary.RelativeTime, meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s%s\n", label.Render("User: "), orNone(meta.User))
	fmt.Fprintf(&b, "%s%d total, %d ok, %d failed\n\n", label.Render("Operations: "), meta.TotalOps, meta.SuccessfulOps, meta.FailedOps)

	for _, op := range session.Operations {
		fmt.Fprintf(&b, "  %s %s\n", m.operationIcon(op), m.formatOperation(op, m.details.Width-6))
	}
	b.WriteString("\n")
	b.WriteString(muted.Italic(true).Render(meta.SessionID))
	return b.String()
}

func (m *Model) resultContent() string {
	palette := m.theme.Palette()
	r := m.result

	var b strings.Builder
	if r.failed == 0 {
		fmt.Fprintf(&b, "%s Undo completed: %d operations reversed\n", m.theme.Icon("success"), r.reverted)
	} else {
		fmt.Fprintf(&b, "%s Undo completed: %d success, %d failed\n", m.theme.Icon("warning"), r.reverted, r.failed)
	}
	errStyle := lipgloss.NewStyle().Foreground(palette.Error)
	for _, err := range r.errs {
		b.WriteString(errStyle.Render("  " + err.Error()))
		b.WriteByte('\n')
	}
	if r.removeErr != nil {
		b.WriteString(errStyle.Render("Session log kept: " + r.removeErr.Error()))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) operationIcon(op log.OperationLog) string {
	if !op.Success {
		return m.theme.Icon("error")
	}
	switch op.Type {
	case log.OpFavoriteAdd:
		return m.theme.Icon("favorite")
	case log.OpFavoriteRemove:
		return m.theme.Icon("removed")
	case log.OpHistoryRecord, log.OpHistoryClear:
		return m.theme.Icon("history")
	case log.OpLogin, log.OpLogout:
		return m.theme.Icon("user")
	}
	return m.theme.Icon("unknown")
}

// formatOperation is the one-line description of op, truncated to
// maxWidth cells before the failure marker.
func (m *Model) formatOperation(op log.OperationLog, maxWidth int) string {
	var text string
	switch op.Type {
	case log.OpFavoriteAdd:
		text = "Favorite: " + op.ExternalID
	case log.OpFavoriteRemove:
		text = "Unfavorite: " + op.ExternalID
	case log.OpHistoryRecord:
		text = "Watched: " + op.ExternalID
	case log.OpHistoryClear:
		text = fmt.Sprintf("Cleared history (%d)", len(op.ClearedIDs))
	case log.OpLogin:
		text = "Login: " + op.User
	case log.OpLogout:
		text = "Logout: " + op.User
	default:
		text = string(op.Type)
	}

	if maxWidth > 3 && runewidth.StringWidth(text) > maxWidth {
		text = runewidth.Truncate(text, maxWidth, "...")
	}
	if !op.Success && op.Error != "" {
		text += " (failed)"
	}
	return text
}

// countReversible is the number of logged changes undo would revert.
func countReversible(session *log.LogSession) int {
	n := 0
	for _, op := range session.Operations {
		if op.Success && op.Type != log.OpLogin && op.Type != log.OpLogout {
			n++
		}
	}
	return n
}

func commandLine(meta log.SessionMetadata) string {
	return strings.TrimSpace("jojo " + strings.Join(meta.CommandArgs, " "))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
