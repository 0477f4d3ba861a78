// Package logger is the MediWise diagnostic log. It is separate from the printer: log lines
// go to stderr or a file and never into the chat transcript.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the process-wide logger. Component loggers share its destination and level.
var Logger = newLogger(os.Stderr, log.InfoLevel)

var (
	mu   sync.RWMutex
	dest io.Writer = os.Stderr
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{Level: level})
}

// Configure applies the --log-level and --log-file flags. An empty level falls back to
// MEDIWISE_LOG_LEVEL. Test mode pins the level to info so runs are reproducible.
func Configure(level string, file string, testMode bool) error {
	if level == "" {
		level = os.Getenv("MEDIWISE_LOG_LEVEL")
	}

	var w io.Writer = os.Stderr
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		w = f
	}

	parsed := ParseLevel(level)
	if testMode {
		parsed = log.InfoLevel
	}
	setOutput(w, parsed)
	return nil
}

// SetOutput redirects logging, keeping the current level.
func SetOutput(w io.Writer) {
	setOutput(w, Logger.GetLevel())
}

// SetLevel changes the level of the process-wide logger. Component loggers created
// afterwards inherit it.
func SetLevel(level log.Level) {
	mu.Lock()
	defer mu.Unlock()
	Logger.SetLevel(level)
}

func setOutput(w io.Writer, level log.Level) {
	mu.Lock()
	defer mu.Unlock()
	dest = w
	Logger = newLogger(w, level)
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// Debug logs at debug level.
func Debug(msg interface{}, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }

// Info logs at info level.
func Info(msg interface{}, keyvals ...interface{}) { Logger.Info(msg, keyvals...) }

// Warn logs at warn level.
func Warn(msg interface{}, keyvals ...interface{}) { Logger.Warn(msg, keyvals...) }

// Error logs at error level.
func Error(msg interface{}, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }

// CommandExecution records a dispatched shell command. Arguments are not logged because
// \login and \signup take credentials.
func CommandExecution(command string, location string) {
	Debug("Executing command", "command", command, "location", location)
}

var keyColors = map[string]string{
	"conversation_id": "46",
	"generation":      "99",
	"path":            "39",
	"status":          "214",
	"error":           "196",
}

// NewStyledLogger returns a logger tagged with a component prefix such as "Chat". Keys the
// chat code logs often get their own color.
func NewStyledLogger(prefix string) *log.Logger {
	styles := log.DefaultStyles()
	for key, color := range keyColors {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	mu.RLock()
	w := dest
	mu.RUnlock()

	l := log.NewWithOptions(w, log.Options{Prefix: prefix, Level: Logger.GetLevel()})
	l.SetStyles(styles)
	return l
}
