package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the diagnostic logger for remote calls. It writes
// human-readable lines to w (stderr when nil). verbose forces debug level;
// otherwise level is parsed from the config, falling back to warn.
func NewLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	} else if level = strings.TrimSpace(level); level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
