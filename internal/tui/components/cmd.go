package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg returns a tea.Cmd that emits the provided message after the delay.
func DebounceMsg(duration time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(duration, func(time.Time) tea.Msg { return msg })
}
