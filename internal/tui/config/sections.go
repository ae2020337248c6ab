package config

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Digital-Shane/jojo/internal/config"
	"github.com/Digital-Shane/jojo/internal/tui/theme"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// sectionModel represents a focusable child model rendered inside the config UI.
type sectionModel interface {
	tea.Model

	Section() Section
	Title() string
	Focus() tea.Cmd
	Blur()
	Resize(width int)
	Focused() *Field
}

const labelWidth = 22

// fieldSection edits a vertical list of fields.
type fieldSection struct {
	section Section
	fields  []*Field
	active  int
	theme   theme.Theme
	width   int

	// edited runs after a key field changes, to queue validation.
	edited func(*Field) tea.Cmd
	// validated reports whether a field has a key validator.
	validated func(*Field) bool
}

func newFieldSection(section Section, fields []*Field, th theme.Theme) *fieldSection {
	return &fieldSection{section: section, fields: fields, theme: th}
}

func (s *fieldSection) Init() tea.Cmd { return nil }

func (s *fieldSection) Section() Section { return s.section }

func (s *fieldSection) Title() string { return s.section.String() }

func (s *fieldSection) Focused() *Field {
	if len(s.fields) == 0 {
		return nil
	}
	return s.fields[s.active]
}

func (s *fieldSection) Focus() tea.Cmd {
	return s.applyFocus()
}

func (s *fieldSection) Blur() {
	for _, f := range s.fields {
		f.Input.Blur()
	}
}

func (s *fieldSection) Resize(width int) {
	s.width = width
	inputWidth := width - labelWidth - 4
	if inputWidth < 8 {
		inputWidth = 8
	}
	for _, f := range s.fields {
		f.Input.Width = inputWidth
	}
}

func (s *fieldSection) applyFocus() tea.Cmd {
	s.Blur()
	f := s.Focused()
	if f == nil || !f.editable() {
		return nil
	}
	return f.Input.Focus()
}

func (s *fieldSection) moveFocus(delta int) tea.Cmd {
	n := len(s.fields)
	if n == 0 {
		return nil
	}
	s.active = ((s.active+delta)%n + n) % n
	return s.applyFocus()
}

func (s *fieldSection) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	f := s.Focused()
	if f == nil {
		return s, nil
	}

	switch key.Type {
	case tea.KeyUp:
		return s, s.moveFocus(-1)
	case tea.KeyDown:
		return s, s.moveFocus(1)
	}

	switch f.Kind {
	case FieldToggle:
		if key.Type == tea.KeyEnter || key.Type == tea.KeySpace {
			f.Enabled = !f.Enabled
		}
		return s, nil

	case FieldChoice:
		switch key.Type {
		case tea.KeyEnter, tea.KeySpace, tea.KeyRight:
			f.Cycle(1)
		case tea.KeyLeft:
			f.Cycle(-1)
		}
		return s, nil

	case FieldNumber:
		if key.Type == tea.KeyRunes {
			filtered := make([]rune, 0, len(key.Runes))
			for _, r := range key.Runes {
				if unicode.IsDigit(r) {
					filtered = append(filtered, r)
				}
			}
			if len(filtered) == 0 {
				return s, nil
			}
			key = tea.KeyMsg{Type: tea.KeyRunes, Runes: filtered}
		}
		if key.Type == tea.KeySpace {
			return s, nil
		}
	}

	if key.Type == tea.KeyEnter {
		return s, s.moveFocus(1)
	}

	before := f.Input.Value()
	var cmd tea.Cmd
	f.Input, cmd = f.Input.Update(key)
	if f.Input.Value() != before && s.edited != nil {
		f.Validation = ValidationUnknown
		cmd = tea.Batch(cmd, s.edited(f))
	}
	return s, cmd
}

func (s *fieldSection) View() string {
	colors := s.theme.Palette()
	focusedStyle := lipgloss.NewStyle().Background(colors.Accent).Foreground(colors.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(colors.Muted)
	valueStyle := lipgloss.NewStyle().Foreground(colors.Primary)

	rows := []string{s.theme.PanelTitleStyle().Render(s.Title() + " Settings"), ""}
	for i, f := range s.fields {
		focused := i == s.active
		label := labelStyle.Render(runewidth.FillRight(f.Label, labelWidth))

		var value string
		switch {
		case focused && f.editable():
			value = f.Input.View()
		case focused:
			value = focusedStyle.Render(s.plainValue(f))
		default:
			value = valueStyle.Render(s.plainValue(f))
		}

		row := label + value
		if f.Kind == FieldSecret && s.validated != nil && s.validated(f) {
			row += " " + s.renderValidation(f.Validation)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (s *fieldSection) plainValue(f *Field) string {
	switch f.Kind {
	case FieldToggle:
		if f.Enabled {
			return "[" + s.theme.Icon("success") + "] Enabled"
		}
		return "[ ] Disabled"
	case FieldChoice:
		return fmt.Sprintf("‹ %s ›", f.Value())
	case FieldSecret:
		return config.Masked(f.Value())
	default:
		if f.Value() == "" {
			return "(not set)"
		}
		return f.Value()
	}
}

func (s *fieldSection) renderValidation(status ValidationStatus) string {
	colors := s.theme.Palette()
	style := lipgloss.NewStyle().Foreground(colors.Muted)
	icon := ""
	switch status {
	case ValidationValidating:
		style = lipgloss.NewStyle().Foreground(colors.Accent)
		icon = s.theme.Icon("loading") + " "
	case ValidationValid:
		style = lipgloss.NewStyle().Foreground(colors.Success)
		icon = s.theme.Icon("success") + " "
	case ValidationInvalid:
		style = lipgloss.NewStyle().Foreground(colors.Error)
		icon = s.theme.Icon("error") + " "
	}
	return style.Render("(" + icon + status.String() + ")")
}
