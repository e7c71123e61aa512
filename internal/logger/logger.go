// Package logger provides a small leveled logger with coloured terminal
// output and JSON lines written to a daily file under logs/.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "INFO"
	}
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	}
	return INFO
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type Logger struct {
	mu       sync.Mutex
	term     io.Writer
	file     io.WriteCloser
	minLevel LogLevel
}

// New returns a logger writing coloured lines to stdout and, when dir is
// non-empty, JSON lines to dir/club-space-YYYY-MM-DD.log.
func New(dir string, minLevel LogLevel) (*Logger, error) {
	l := &Logger{term: os.Stdout, minLevel: minLevel}
	if dir == "" {
		return l, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("club-space-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.file = f
	l.Info("LOGGER", "log file: "+name)
	return l, nil
}

// NewWriter returns a logger that writes plain terminal lines to w only.
// Tests use it with io.Discard or a buffer.
func NewWriter(w io.Writer, minLevel LogLevel) *Logger {
	return &Logger{term: w, minLevel: minLevel}
}

// Nop discards everything.
func Nop() *Logger { return NewWriter(io.Discard, FATAL+1) }

func (l *Logger) log(level LogLevel, category, message string) {
	if l == nil || level < l.minLevel {
		return
	}
	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	}
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
		File:      file,
		Line:      line,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.term, formatTerminal(entry))
	if l.file != nil {
		if bs, err := json.Marshal(entry); err == nil {
			_, _ = l.file.Write(append(bs, '\n'))
		}
	}
}

func formatTerminal(entry LogEntry) string {
	var levelColor *color.Color
	switch entry.Level {
	case "DEBUG":
		levelColor = color.New(color.FgCyan)
	case "INFO":
		levelColor = color.New(color.FgGreen)
	case "WARN":
		levelColor = color.New(color.FgYellow)
	case "ERROR":
		levelColor = color.New(color.FgRed)
	case "FATAL":
		levelColor = color.New(color.FgRed, color.Bold)
	default:
		levelColor = color.New(color.FgWhite)
	}

	ts := color.New(color.FgBlue).Sprint(entry.Timestamp[11:19])
	lvl := levelColor.Sprintf("%-5s", entry.Level)
	cat := levelColor.Add(color.Bold).Sprintf("[%-11s]", entry.Category)
	if entry.File != "" && entry.Line > 0 {
		src := color.New(color.FgMagenta).Sprintf(" (%s:%d)", entry.File, entry.Line)
		return fmt.Sprintf("%s %s %s %s%s\n", ts, lvl, cat, entry.Message, src)
	}
	return fmt.Sprintf("%s %s %s %s\n", ts, lvl, cat, entry.Message)
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Debugf(category, format string, args ...any) {
	l.log(DEBUG, category, fmt.Sprintf(format, args...))
}
func (l *Logger) Infof(category, format string, args ...any) {
	l.log(INFO, category, fmt.Sprintf(format, args...))
}
func (l *Logger) Warnf(category, format string, args ...any) {
	l.log(WARN, category, fmt.Sprintf(format, args...))
}
func (l *Logger) Errorf(category, format string, args ...any) {
	l.log(ERROR, category, fmt.Sprintf(format, args...))
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	os.Exit(1)
}

// LogAPI records a completed HTTP request.
func (l *Logger) LogAPI(method, path string, status int, d time.Duration) {
	l.Info("API", fmt.Sprintf("%s %s - %d (%s)", method, path, status, d))
}

// LogReservation records a lifecycle action on a reservation.
func (l *Logger) LogReservation(action string, id uint64, message string) {
	l.Info("RESERVATION", fmt.Sprintf("[%s] #%d - %s", action, id, message))
}

// LogSecurity records authentication events.
func (l *Logger) LogSecurity(event, message string) {
	l.Warn("SECURITY", fmt.Sprintf("[%s] %s", event, message))
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.Info("LOGGER", "closing log file")
	return l.file.Close()
}
