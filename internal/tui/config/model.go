package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Digital-Shane/jojo/internal/config"
	"github.com/Digital-Shane/jojo/internal/playback"
	"github.com/Digital-Shane/jojo/internal/storage"
	"github.com/Digital-Shane/jojo/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Saver persists a validated configuration.
type Saver func(*config.Config) error

// Model orchestrates the configuration UI.
type Model struct {
	config   *config.Config
	original config.Config

	theme       theme.Theme
	sections    []sectionModel
	fields      map[string]*Field
	validators  map[string]KeyValidator
	save        Saver
	activeIndex int

	width, height int

	saveStatus string
	saved      bool
	err        error
}

// Option configures the configuration TUI model.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// WithValidator checks the API key stored under key as it is typed.
func WithValidator(key string, v KeyValidator) Option {
	return func(m *Model) {
		m.validators[key] = v
	}
}

// WithSaver replaces writing ~/.jojo/config.json.
func WithSaver(s Saver) Option {
	return func(m *Model) {
		m.save = s
	}
}

// New creates a configuration editor over cfg. cfg should come from
// config.LoadFile so environment overrides are not written back.
func New(cfg *config.Config, opts ...Option) *Model {
	m := &Model{
		config:     cfg,
		original:   *cfg,
		validators: map[string]KeyValidator{},
		save:       (*config.Config).Save,
		width:      80,
		height:     24,
	}

	initOpts := append([]Option{WithTheme(theme.Default())}, opts...)
	for _, opt := range initOpts {
		opt(m)
	}

	m.initSections()
	m.loadFields(&m.original)
	return m
}

func (m *Model) initSections() {
	logLevels := []string{"debug", "info", "warn", "error"}

	layout := []struct {
		section Section
		fields  []*Field
	}{
		{SectionCatalog, []*Field{
			m.newField("tmdb_api_key", "TMDB API Key", FieldSecret, "Required for search, trending and playback. "+config.EnvTMDBAPIKey+" overrides it."),
			m.newField("tmdb_language", "TMDB Language", FieldText, "Language for titles and overviews, e.g. en-US."),
			m.newField("omdb_api_key", "OMDb API Key", FieldSecret, "Optional. Names favorites and history entries TMDB cannot find."),
			m.newField("cache_enabled", "Cache Lookups", FieldToggle, "Keep catalog responses in memory while jojo runs."),
			m.newField("cache_duration_hours", "Cache Hours", FieldNumber, "How long cached lookups stay fresh."),
		}},
		{SectionPlayback, []*Field{
			m.newChoiceField("default_server", "Default Server", playback.ServerNames(), "Embed server the player starts on. Tab switches servers while playing."),
			m.newField("trending_limit", "Trending Entries", FieldNumber, fmt.Sprintf("Entries per trending list, 1 to %d.", config.MaxTrendingLimit)),
		}},
		{SectionStorage, []*Field{
			m.newChoiceField("storage_backend", "Backend", storage.RegisteredProviders(), "Where favorites, history and the login are kept."),
			m.newField("storage_dir", "Directory", FieldText, "File backend only. Empty uses ~/.jojo."),
			m.newField("redis_address", "Redis Address", FieldText, "Redis backend only, host:port."),
			m.newField("redis_password", "Redis Password", FieldSecret, "Redis backend only."),
			m.newField("redis_db", "Redis DB", FieldNumber, "Redis backend only."),
		}},
		{SectionLogging, []*Field{
			m.newField("enable_logging", "Activity Log", FieldToggle, "Record favorite and history changes so 'jojo undo' can revert them."),
			m.newField("log_retention_days", "Retention Days", FieldNumber, "Activity logs older than this are deleted."),
			m.newChoiceField("log_level", "Diagnostics Level", logLevels, "Minimum level written to stderr. --verbose forces debug."),
		}},
	}

	m.fields = map[string]*Field{}
	m.sections = make([]sectionModel, 0, len(layout))
	for _, l := range layout {
		sec := newFieldSection(l.section, l.fields, m.theme)
		sec.edited = m.queueValidation
		sec.validated = func(f *Field) bool { return m.validators[f.Key] != nil }
		for _, f := range l.fields {
			m.fields[f.Key] = f
		}
		m.sections = append(m.sections, sec)
	}
}

func (m *Model) newField(key, label string, kind FieldKind, help string) *Field {
	f := &Field{Key: key, Label: label, Kind: kind, Help: help}
	if f.editable() {
		f.Input = newInput(m.theme)
		switch kind {
		case FieldSecret:
			f.Input.EchoMode = textinput.EchoPassword
			f.Input.EchoCharacter = '•'
		case FieldNumber:
			f.Input.CharLimit = 4
		}
	}
	return f
}

func (m *Model) newChoiceField(key, label string, choices []string, help string) *Field {
	f := m.newField(key, label, FieldChoice, help)
	f.Choices = choices
	return f
}

// loadFields copies cfg into every editor.
func (m *Model) loadFields(cfg *config.Config) {
	for key, f := range m.fields {
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		f.SetValue(v)
	}
}

// Field returns the editor for a config key, or nil.
func (m *Model) Field(key string) *Field {
	return m.fields[key]
}

// Config returns the last saved configuration.
func (m *Model) Config() *config.Config {
	return m.config
}

// Saved reports whether the configuration was written at least once.
func (m *Model) Saved() bool {
	return m.saved
}

// Status returns the save or reset message shown in the status bar.
func (m *Model) Status() string {
	return m.saveStatus
}

// ActiveSection returns the section being edited.
func (m *Model) ActiveSection() Section {
	return m.sections[m.activeIndex].Section()
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.sections[m.activeIndex].Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	for key := range m.validators {
		if f := m.fields[key]; f != nil && f.Value() != "" {
			cmds = append(cmds, m.startValidation(f))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)
		return m, nil

	case validateKeyMsg:
		f := m.fields[msg.field]
		if f == nil || f.Value() != msg.apiKey {
			return m, nil
		}
		return m, m.startValidation(f)

	case keyValidationMsg:
		f := m.fields[msg.field]
		if f == nil || f.Value() != msg.apiKey {
			return m, nil
		}
		if msg.err != nil {
			f.Validation = ValidationInvalid
		} else {
			f.Validation = ValidationValid
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			m.saveFields()
			return m, nil
		case tea.KeyCtrlR:
			m.reset()
			return m, nil
		case tea.KeyTab:
			return m, m.setActiveSection((m.activeIndex + 1) % len(m.sections))
		case tea.KeyShiftTab:
			return m, m.setActiveSection((m.activeIndex - 1 + len(m.sections)) % len(m.sections))
		}
	}

	_, cmd := m.sections[m.activeIndex].Update(msg)
	return m, cmd
}

func (m *Model) queueValidation(f *Field) tea.Cmd {
	if m.validators[f.Key] == nil {
		return nil
	}
	if f.Value() == "" {
		f.Validation = ValidationUnknown
		return nil
	}
	return debouncedValidate(f.Key, f.Value())
}

func (m *Model) startValidation(f *Field) tea.Cmd {
	v := m.validators[f.Key]
	if v == nil {
		return nil
	}
	f.Validation = ValidationValidating
	return runValidation(v, f.Key, f.Value())
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth - 4
	if rightWidth < 0 {
		rightWidth = 0
	}
	for _, sec := range m.sections {
		sec.Resize(rightWidth - 2)
	}
}

func (m *Model) setActiveSection(idx int) tea.Cmd {
	if idx == m.activeIndex {
		return nil
	}
	m.sections[m.activeIndex].Blur()
	m.activeIndex = idx
	return m.sections[m.activeIndex].Focus()
}

// saveFields applies every editor to a copy of the config and writes it when
// the result validates.
func (m *Model) saveFields() {
	next := *m.config
	var errs []error
	for _, sec := range m.sections {
		fs, ok := sec.(*fieldSection)
		if !ok {
			continue
		}
		for _, f := range fs.fields {
			if err := next.Set(f.Key, f.Value()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.fail(err)
		return
	}
	if err := next.Validate(); err != nil {
		m.fail(err)
		return
	}
	if err := m.save(&next); err != nil {
		m.fail(err)
		return
	}

	m.config = &next
	m.original = next
	m.saved = true
	m.err = nil
	m.saveStatus = "Configuration saved!"
}

func (m *Model) fail(err error) {
	m.err = err
	m.saveStatus = "Not saved: " + strings.ReplaceAll(err.Error(), "\n", "; ")
}

func (m *Model) reset() {
	m.loadFields(&m.original)
	m.err = nil
	m.saveStatus = "Reset to saved values"
}

// View renders the UI.
func (m *Model) View() string {
	if m.width < 30 || m.height < 10 {
		return "Terminal too small. Please resize to at least 30x10."
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.Palette().Primary).
		Padding(1, 0).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.theme.Icon("key") + " jojo Configuration")

	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth - 4
	if rightWidth < 0 {
		rightWidth = 0
	}
	panelHeight := m.height - 10
	if panelHeight < 0 {
		panelHeight = 0
	}

	left := m.theme.PanelStyle().Width(leftWidth).Height(panelHeight).Render(m.renderHelp(leftWidth - 4))
	right := m.theme.PanelStyle().Width(rightWidth).Height(panelHeight).Render(m.sections[m.activeIndex].View())
	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left, title, m.renderTabs(), panels, m.renderStatusBar())
}

func (m *Model) renderTabs() string {
	rendered := make([]string, len(m.sections))
	for i, sec := range m.sections {
		rendered[i] = m.theme.TabStyle(i == m.activeIndex).Render(sec.Title())
	}
	joined := lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
	return lipgloss.NewStyle().Align(lipgloss.Center).Width(m.width).Render(joined)
}

func (m *Model) renderHelp(width int) string {
	title := m.theme.PanelTitleStyle().Render("About this setting")
	body := lipgloss.NewStyle().Foreground(m.theme.Palette().Muted)
	if width > 0 {
		body = body.Width(width)
	}

	f := m.sections[m.activeIndex].Focused()
	if f == nil {
		return title
	}
	lines := []string{f.Help, "", "Key: " + f.Key}
	switch f.Kind {
	case FieldToggle:
		lines = append(lines, "Space or Enter toggles.")
	case FieldChoice:
		lines = append(lines, "Left/Right or Space cycles.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body.Render(strings.Join(lines, "\n")))
}

func (m *Model) renderStatusBar() string {
	key := lipgloss.NewStyle().Foreground(m.theme.Palette().Accent).Bold(true)
	help := lipgloss.NewStyle().Foreground(m.theme.Palette().Muted)
	success := m.theme.StatusBarStyle().Foreground(m.theme.Palette().Background)
	failure := lipgloss.NewStyle().Foreground(m.theme.Palette().Error).Bold(true)

	parts := []string{
		key.Render("Tab") + ": Switch",
		key.Render("↑↓") + ": Field",
		key.Render("Ctrl+S") + ": Save",
		key.Render("Ctrl+R") + ": Reset",
		key.Render("Esc") + ": Quit",
	}
	line := help.Render(strings.Join(parts, " │ "))
	if m.saveStatus != "" {
		if m.err != nil {
			line += " │ " + failure.Render(m.saveStatus)
		} else {
			line += " │ " + success.Render(m.saveStatus)
		}
	}
	return line
}

func newInput(th theme.Theme) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = ""
	ti.CursorStyle = lipgloss.NewStyle().Background(th.Palette().Accent).Foreground(th.Palette().Background)
	ti.TextStyle = lipgloss.NewStyle().Foreground(th.Palette().Primary)
	ti.Width = 40
	return ti
}
