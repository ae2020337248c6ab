package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type OperationType string

const (
	OpLogin          OperationType = "login"
	OpLogout         OperationType = "logout"
	OpFavoriteAdd    OperationType = "favorite_add"
	OpFavoriteRemove OperationType = "favorite_remove"
	OpHistoryRecord  OperationType = "history_record"
	OpHistoryClear   OperationType = "history_clear"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	User       string        `json:"user,omitempty"`
	ExternalID string        `json:"external_id,omitempty"`
	ClearedIDs []string      `json:"cleared_ids,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	User          string    `json:"user,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession *LogSession
	sessionMutex   sync.Mutex
	loggingEnabled = true
	logDirOverride string
)

// SetLogDir points the activity log at dir instead of ~/.jojo/logs.
// An empty dir restores the default.
func SetLogDir(dir string) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	logDirOverride = dir
}

// LogDir returns the directory session files are written to.
func LogDir() (string, error) {
	if logDirOverride != "" {
		return logDirOverride, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".jojo", "logs"), nil
}

// StartSession initializes a new logging session
func StartSession(command string, args []string, user string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	now := time.Now()
	sessionID := fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000)

	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			User:        user,
			Timestamp:   now,
			SessionID:   sessionID,
		},
		Operations: []OperationLog{},
	}

	return nil
}

// EndSession saves the current session to disk. Sessions without
// operations are discarded.
func EndSession() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return nil
	}

	session := currentSession
	currentSession = nil
	if len(session.Operations) == 0 {
		return nil
	}
	updateStats(session)
	return writeSessionUnsafe(session)
}

// LogLogin logs a login
func LogLogin(user string, success bool, err error) {
	LogOperation(OpLogin, user, "", success, err)
}

// LogLogout logs a logout
func LogLogout(user string, success bool, err error) {
	LogOperation(OpLogout, user, "", success, err)
}

// LogFavorite logs a favorite add or remove
func LogFavorite(user, externalID string, added bool, err error) {
	op := OpFavoriteRemove
	if added {
		op = OpFavoriteAdd
	}
	LogOperation(op, user, externalID, err == nil, err)
}

// LogHistoryRecord logs an ID being added to history
func LogHistoryRecord(user, externalID string, err error) {
	LogOperation(OpHistoryRecord, user, externalID, err == nil, err)
}

// LogHistoryClear logs a history wipe along with the IDs it removed so it
// can be undone.
func LogHistoryClear(user string, cleared []string, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if op := appendOperationUnsafe(OpHistoryClear, user, "", err == nil, err); op != nil {
		op.ClearedIDs = append([]string(nil), cleared...)
	}
}

// LogOperation logs a generic operation to the current session
func LogOperation(opType OperationType, user, externalID string, success bool, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	appendOperationUnsafe(opType, user, externalID, success, err)
}

// appendOperationUnsafe records an operation. Caller holds sessionMutex.
func appendOperationUnsafe(opType OperationType, user, externalID string, success bool, err error) *OperationLog {
	if !loggingEnabled || currentSession == nil {
		return nil
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", currentSession.Metadata.SessionID, len(currentSession.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		User:       user,
		ExternalID: externalID,
		Success:    success,
	}

	if err != nil {
		op.Error = err.Error()
	}

	currentSession.Operations = append(currentSession.Operations, op)
	return &currentSession.Operations[len(currentSession.Operations)-1]
}

// updateStats updates the session statistics
func updateStats(session *LogSession) {
	successful := 0
	failed := 0

	for _, op := range session.Operations {
		if op.Success {
			successful++
		} else {
			failed++
		}
	}

	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = failed
}

// Initialize sets up the logging system with the given configuration
func Initialize(enabled bool, retentionDays int) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled

	if enabled {
		// Clean up old logs on initialization
		if err := cleanupOldLogsUnsafe(retentionDays); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to clean up old logs: %v\n", err)
		}
	}
}

// Enabled reports whether sessions are being recorded.
func Enabled() bool {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return loggingEnabled
}

var (
	stampMu   sync.Mutex
	lastStamp time.Time
)

// nextLogStamp returns the current time truncated to microseconds, bumped
// past the previous stamp so files written in quick succession keep distinct
// names in write order.
func nextLogStamp() time.Time {
	stampMu.Lock()
	defer stampMu.Unlock()
	now := time.Now().Truncate(time.Microsecond)
	if !now.After(lastStamp) {
		now = lastStamp.Add(time.Microsecond)
	}
	lastStamp = now
	return now
}

func GetLogPath() (string, error) {
	logDir, err := LogDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	now := nextLogStamp()
	filename := fmt.Sprintf("%s.%06d.json",
		now.Format("2006-01-02_150405"),
		now.Nanosecond()/1000)

	return filepath.Join(logDir, filename), nil
}

func WriteSession(session *LogSession) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return writeSessionUnsafe(session)
}

func writeSessionUnsafe(session *LogSession) error {
	if session == nil {
		return nil
	}

	logPath, err := GetLogPath()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}

	return writeSessionToPath(session, logPath)
}

func writeSessionToPath(session *LogSession, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}

	return nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// sessionFiles lists session files newest first.
func sessionFiles() ([]string, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}

	// Check if log directory exists
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}

	// File names start with a timestamp
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func ReadSessions(limit int) ([]*LogSession, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}

	// Apply limit
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			// Skip corrupted files
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// cleanupOldLogsUnsafe performs cleanup without acquiring mutex (assumes caller holds it)
func cleanupOldLogsUnsafe(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}

	files, err := sessionFiles()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to remove old log file %s: %v\n", file, err)
				continue
			}
		}
	}

	return nil
}
