// Package theme holds the palette, glyphs and shared lipgloss styles of the
// jojo views.
package theme

import (
	"os"
	"runtime"

	"github.com/Digital-Shane/jojo/internal/media"
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors every view draws with.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultPalette is the burgundy and amber scheme used unless overridden.
var DefaultPalette = Palette{
	Primary:    lipgloss.Color("#7a1f2b"),
	Secondary:  lipgloss.Color("#a8343f"),
	Accent:     lipgloss.Color("#e5a93b"),
	Background: lipgloss.Color("#f7f3ee"),
	Muted:      lipgloss.Color("#8e8a99"),
	Success:    lipgloss.Color("#4fb37a"),
	Error:      lipgloss.Color("#e0474f"),
}

// BadgeKind selects the colors of a status badge.
type BadgeKind int

const (
	BadgeInfo BadgeKind = iota
	BadgeSuccess
	BadgeError
)

// glyph is one icon in its emoji and plain-text forms.
type glyph struct {
	fancy string
	plain string
}

var glyphs = map[string]glyph{
	"movie":     {"🎬", "[M]"},
	"series":    {"📺", "[TV]"},
	"favorite":  {"⭐", "[*]"},
	"unfavored": {"☆", "[ ]"},
	"history":   {"🕘", "[H]"},
	"play":      {"▶️", "[>]"},
	"server":    {"📡", "[S]"},
	"user":      {"👤", "[U]"},
	"success":   {"✅", "[v]"},
	"error":     {"❌", "[!]"},
	"removed":   {"➖", "[-]"},
	"warning":   {"⚠️", "[!]"},
	"loading":   {"⏳", "[~]"},
	"unknown":   {"❓", "[?]"},
	"rating":    {"★", "*"},
	"key":       {"🔑", "[K]"},
}

// Theme bundles a palette with an icon mode.
type Theme struct {
	palette Palette
	plain   bool
	icons   map[string]string
}

// Option configures a Theme.
type Option func(*Theme)

// WithPalette replaces the default colors.
func WithPalette(p Palette) Option {
	return func(t *Theme) {
		t.palette = p
	}
}

// WithPlainIcons forces the plain-text icons.
func WithPlainIcons(plain bool) Option {
	return func(t *Theme) {
		t.plain = plain
	}
}

// WithIcon overrides a single icon.
func WithIcon(name, icon string) Option {
	return func(t *Theme) {
		if t.icons == nil {
			t.icons = make(map[string]string)
		}
		t.icons[name] = icon
	}
}

// New builds a Theme. Plain icons are chosen automatically over SSH, on
// Windows and on dumb terminals.
func New(opts ...Option) Theme {
	t := Theme{palette: DefaultPalette, plain: plainTerminal()}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Default returns New().
func Default() Theme {
	return New()
}

func plainTerminal() bool {
	for _, key := range []string{"SSH_CLIENT", "SSH_TTY", "SSH_CONNECTION"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return runtime.GOOS == "windows" || os.Getenv("TERM") == "dumb"
}

// Palette returns the theme colors.
func (t Theme) Palette() Palette {
	return t.palette
}

// Plain reports whether plain-text icons are in use.
func (t Theme) Plain() bool {
	return t.plain
}

// Icon returns the named icon, or "" for unknown names.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	g, ok := glyphs[name]
	if !ok {
		return ""
	}
	if t.plain {
		return g.plain
	}
	return g.fancy
}

// KindIcon returns the icon for a media kind.
func (t Theme) KindIcon(k media.Kind) string {
	switch k {
	case media.KindMovie:
		return t.Icon("movie")
	case media.KindSeries:
		return t.Icon("series")
	}
	return t.Icon("unknown")
}

func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.palette.Primary).
		Foreground(t.palette.Background).
		Align(lipgloss.Center)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.palette.Secondary).
		Foreground(t.palette.Background).
		Padding(0, 1)
}

// PanelStyle is a rounded, padded box with an accent border.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.palette.Accent).
		Padding(1)
}

// SizedPanel fits a PanelStyle box into a width by height cell. Zero
// dimensions are left unconstrained.
func (t Theme) SizedPanel(width, height int, border lipgloss.Color) lipgloss.Style {
	style := t.PanelStyle()
	if border != "" {
		style = style.BorderForeground(border)
	}
	if width > 0 {
		style = style.Width(max(width-style.GetHorizontalFrameSize(), 0))
	}
	if height > 0 {
		style = style.Height(max(height-style.GetVerticalFrameSize(), 0))
	}
	return style.Padding(0, 1)
}

func (t Theme) PanelTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Underline(true)
}

// BadgeStyle colors a short status message.
func (t Theme) BadgeStyle(kind BadgeKind) lipgloss.Style {
	bg := t.palette.Accent
	switch kind {
	case BadgeSuccess:
		bg = t.palette.Success
	case BadgeError:
		bg = t.palette.Error
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Background(bg).
		Foreground(t.palette.Background)
}

// TabStyle is one entry of a horizontal selector bar.
func (t Theme) TabStyle(active bool) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return base.Bold(true).Background(t.palette.Accent).Foreground(t.palette.Primary)
	}
	return base.Foreground(t.palette.Muted)
}
