package config

import (
	"context"
	"time"

	"github.com/Digital-Shane/jojo/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyValidator checks an API key against its service. A nil error means the
// key works.
type KeyValidator func(ctx context.Context, apiKey string) error

const (
	validationDelay   = time.Second
	validationTimeout = 10 * time.Second
)

// validateKeyMsg fires once typing in a key field has paused.
type validateKeyMsg struct {
	field  string
	apiKey string
}

type keyValidationMsg struct {
	field  string
	apiKey string
	err    error
}

func debouncedValidate(field, apiKey string) tea.Cmd {
	return components.DebounceMsg(validationDelay, validateKeyMsg{field: field, apiKey: apiKey})
}

func runValidation(v KeyValidator, field, apiKey string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), validationTimeout)
		defer cancel()
		return keyValidationMsg{field: field, apiKey: apiKey, err: v(ctx, apiKey)}
	}
}
