package config

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
)

// Section represents each top-level configuration panel.
type Section int

const (
	SectionCatalog Section = iota
	SectionPlayback
	SectionStorage
	SectionLogging
)

func (s Section) String() string {
	switch s {
	case SectionCatalog:
		return "Catalog"
	case SectionPlayback:
		return "Playback"
	case SectionStorage:
		return "Storage"
	case SectionLogging:
		return "Logging"
	default:
		return "Unknown"
	}
}

// FieldKind selects how a field is edited and rendered.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldSecret
	FieldNumber
	FieldToggle
	FieldChoice
)

// Field is one editable setting, keyed by its config key.
type Field struct {
	Key     string
	Label   string
	Kind    FieldKind
	Help    string
	Choices []string

	Input   textinput.Model
	Enabled bool
	Choice  int

	Validation ValidationStatus
}

// Value returns the field's setting in the string form config.Set accepts.
func (f *Field) Value() string {
	switch f.Kind {
	case FieldToggle:
		return strconv.FormatBool(f.Enabled)
	case FieldChoice:
		if f.Choice < 0 || f.Choice >= len(f.Choices) {
			return ""
		}
		return f.Choices[f.Choice]
	default:
		return stripNullChars(f.Input.Value())
	}
}

// SetValue loads v into the field's editor.
func (f *Field) SetValue(v string) {
	switch f.Kind {
	case FieldToggle:
		f.Enabled, _ = strconv.ParseBool(v)
	case FieldChoice:
		f.Choice = 0
		for i, c := range f.Choices {
			if strings.EqualFold(c, v) {
				f.Choice = i
				break
			}
		}
	default:
		f.Input.SetValue(v)
		f.Input.CursorEnd()
	}
	f.Validation = ValidationUnknown
}

// Cycle moves a choice field by delta, wrapping around.
func (f *Field) Cycle(delta int) {
	if f.Kind != FieldChoice || len(f.Choices) == 0 {
		return
	}
	n := len(f.Choices)
	f.Choice = ((f.Choice+delta)%n + n) % n
}

// editable reports whether the field takes typed input.
func (f *Field) editable() bool {
	return f.Kind == FieldText || f.Kind == FieldSecret || f.Kind == FieldNumber
}

// ValidationStatus enumerates validation phases for API keys.
type ValidationStatus int

const (
	ValidationUnknown ValidationStatus = iota
	ValidationValidating
	ValidationValid
	ValidationInvalid
)

// String converts the validation status into a human readable label.
func (s ValidationStatus) String() string {
	switch s {
	case ValidationValidating:
		return "Validating..."
	case ValidationValid:
		return "Valid"
	case ValidationInvalid:
		return "Invalid"
	default:
		return "Not validated"
	}
}

func stripNullChars(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
