package log

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Digital-Shane/jojo/internal/prefs"
)

// Mutator applies preference list changes during undo. *prefs.Store
// satisfies it.
type Mutator interface {
	Add(kind prefs.ListKind, identity, id string) (bool, error)
	Remove(kind prefs.ListKind, identity, id string) (bool, error)
}

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Skipped   bool
	Error     error
}

func UndoOperation(m Mutator, op OperationLog) UndoResult {
	result := UndoResult{
		Operation: op,
		Success:   false,
	}

	if op.User == "" && op.Type != OpLogin && op.Type != OpLogout {
		result.Error = fmt.Errorf("cannot undo %s: user missing", op.Type)
		return result
	}

	switch op.Type {
	case OpFavoriteAdd:
		if _, err := m.Remove(prefs.Favorites, op.User, op.ExternalID); err != nil {
			result.Error = fmt.Errorf("failed to remove favorite %s: %w", op.ExternalID, err)
			return result
		}
		result.Success = true

	case OpFavoriteRemove:
		if _, err := m.Add(prefs.Favorites, op.User, op.ExternalID); err != nil {
			result.Error = fmt.Errorf("failed to restore favorite %s: %w", op.ExternalID, err)
			return result
		}
		result.Success = true

	case OpHistoryRecord:
		if _, err := m.Remove(prefs.History, op.User, op.ExternalID); err != nil {
			result.Error = fmt.Errorf("failed to remove %s from history: %w", op.ExternalID, err)
			return result
		}
		result.Success = true

	case OpHistoryClear:
		for _, id := range op.ClearedIDs {
			if _, err := m.Add(prefs.History, op.User, id); err != nil {
				result.Error = fmt.Errorf("failed to restore history entry %s: %w", id, err)
				return result
			}
		}
		result.Success = true

	case OpLogin, OpLogout:
		// Identity changes are not reverted.
		result.Skipped = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

func UndoSession(m Mutator, session *LogSession) (successful int, failed int, errs []error) {
	// Process operations in reverse order
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]

		// Only undo successful operations
		if !op.Success {
			continue
		}

		result := UndoOperation(m, op)
		switch {
		case result.Skipped:
		case result.Success:
			successful++
		default:
			failed++
			if result.Error != nil {
				errs = append(errs, result.Error)
			}
		}
	}

	return successful, failed, errs
}

// ErrNoSessions is returned when there is nothing to undo.
var ErrNoSessions = errors.New("no sessions found")

func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}

	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}

// RemoveSession deletes a session file once it has been undone.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session %s: %w", path, err)
	}
	return nil
}

type SessionSummary struct {
	Session      *LogSession
	FilePath     string
	RelativeTime string
	Icon         string
}

func GetSessionSummaries() ([]SessionSummary, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}

		summary := SessionSummary{
			Session:      session,
			FilePath:     file,
			RelativeTime: formatRelativeTime(session.Metadata.Timestamp),
			Icon:         getCommandIcon(session.Metadata.CommandArgs),
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func getCommandIcon(args []string) string {
	if len(args) == 0 {
		return "❓"
	}

	switch args[0] {
	case "login", "logout":
		return "🔑"
	case "favorites":
		return "⭐"
	case "history":
		return "🕘"
	case "play":
		return "▶️"
	default:
		return "📝"
	}
}
