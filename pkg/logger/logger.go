// Package logger is the leveled console logger shared by the engine, the
// scenarios and the CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents the severity of a log message
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// Logger is the main logger interface
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithPrefix(prefix string) Logger
}

// Config holds logger configuration
type Config struct {
	Level    Level
	Writer   io.Writer
	NoColor  bool
	ShowTime bool
}

// output is shared by a logger and everything derived from it, so SetLevel
// on the default logger reaches its WithPrefix children too.
type output struct {
	mu       sync.Mutex
	level    Level
	writer   io.Writer
	noColor  bool
	showTime bool
}

type logger struct {
	out    *output
	fields map[string]interface{}
	prefix string
}

var (
	gray   = color.New(color.FgHiBlack)
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	fatal  = color.New(color.FgRed, color.Bold)
)

var levels = map[Level]struct {
	tag   string
	style *color.Color
}{
	DebugLevel: {"DEBUG", gray},
	InfoLevel:  {"INFO ", green},
	WarnLevel:  {"WARN ", yellow},
	ErrorLevel: {"ERROR", red},
	FatalLevel: {"FATAL", fatal},
}

var defaultLogger = New()

// exit is swapped out by tests.
var exit = os.Exit

// New creates a logger at info level writing to stdout with timestamps
func New() Logger {
	return NewWithConfig(Config{
		Level:    InfoLevel,
		Writer:   os.Stdout,
		ShowTime: true,
	})
}

// NewWithConfig creates a new logger with custom configuration
func NewWithConfig(cfg Config) Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	return &logger{
		out: &output{
			level:    cfg.Level,
			writer:   w,
			noColor:  cfg.NoColor,
			showTime: cfg.ShowTime,
		},
	}
}

// Default returns the process-wide logger.
func Default() Logger {
	return defaultLogger
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		l.out.level = level
		l.out.mu.Unlock()
	}
}

// SetNoColor disables color output
func SetNoColor(noColor bool) {
	if l, ok := defaultLogger.(*logger); ok {
		l.out.mu.Lock()
		l.out.noColor = noColor
		l.out.mu.Unlock()
	}
}

func Debug(args ...interface{})                       { defaultLogger.Debug(args...) }
func Debugf(format string, args ...interface{})       { defaultLogger.Debugf(format, args...) }
func Info(args ...interface{})                        { defaultLogger.Info(args...) }
func Infof(format string, args ...interface{})        { defaultLogger.Infof(format, args...) }
func Warn(args ...interface{})                        { defaultLogger.Warn(args...) }
func Warnf(format string, args ...interface{})        { defaultLogger.Warnf(format, args...) }
func Error(args ...interface{})                       { defaultLogger.Error(args...) }
func Errorf(format string, args ...interface{})       { defaultLogger.Errorf(format, args...) }
func Fatal(args ...interface{})                       { defaultLogger.Fatal(args...) }
func Fatalf(format string, args ...interface{})       { defaultLogger.Fatalf(format, args...) }
func WithField(key string, value interface{}) Logger  { return defaultLogger.WithField(key, value) }
func WithFields(fields map[string]interface{}) Logger { return defaultLogger.WithFields(fields) }
func WithPrefix(prefix string) Logger                 { return defaultLogger.WithPrefix(prefix) }

// paint applies c unless color is off. Callers hold o.mu.
func (o *output) paint(c *color.Color, s string) string {
	if o.noColor {
		return s
	}
	return c.Sprint(s)
}

func (l *logger) log(level Level, message string) {
	o := l.out
	o.mu.Lock()
	if level < o.level {
		o.mu.Unlock()
		return
	}

	var parts []string
	if o.showTime {
		parts = append(parts, o.paint(gray, time.Now().Format("15:04:05")))
	}
	lv := levels[level]
	parts = append(parts, o.paint(lv.style, lv.tag))
	if l.prefix != "" {
		parts = append(parts, o.paint(cyan, "["+l.prefix+"]"))
	}
	if len(l.fields) > 0 {
		parts = append(parts, o.paint(gray, l.formatFields()))
	}
	parts = append(parts, message)

	_, _ = fmt.Fprintln(o.writer, strings.Join(parts, " "))
	o.mu.Unlock()

	if level == FatalLevel {
		exit(1)
	}
}

// formatFields renders fields as key=value pairs sorted by key.
func (l *logger) formatFields() string {
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, l.fields[k])
	}
	return strings.Join(pairs, " ")
}

func (l *logger) Debug(args ...interface{}) { l.log(DebugLevel, fmt.Sprint(args...)) }
func (l *logger) Info(args ...interface{})  { l.log(InfoLevel, fmt.Sprint(args...)) }
func (l *logger) Warn(args ...interface{})  { l.log(WarnLevel, fmt.Sprint(args...)) }
func (l *logger) Error(args ...interface{}) { l.log(ErrorLevel, fmt.Sprint(args...)) }
func (l *logger) Fatal(args ...interface{}) { l.log(FatalLevel, fmt.Sprint(args...)) }

func (l *logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(format, args...))
}

// derive copies l with room for extra more fields.
func (l *logger) derive(extra int) *logger {
	fields := make(map[string]interface{}, len(l.fields)+extra)
	for k, v := range l.fields {
		fields[k] = v
	}
	return &logger{out: l.out, fields: fields, prefix: l.prefix}
}

func (l *logger) WithField(key string, value interface{}) Logger {
	next := l.derive(1)
	next.fields[key] = value
	return next
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	next := l.derive(len(fields))
	for k, v := range fields {
		next.fields[k] = v
	}
	return next
}

func (l *logger) WithPrefix(prefix string) Logger {
	next := l.derive(0)
	next.prefix = prefix
	return next
}

// ParseLevel parses a string log level; unknown names fall back to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// String returns the lowercase level name.
func (lv Level) String() string {
	if l, ok := levels[lv]; ok {
		return strings.ToLower(strings.TrimSpace(l.tag))
	}
	return fmt.Sprintf("level(%d)", int(lv))
}
