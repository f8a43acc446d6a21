package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging mapping activity and internal messages
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	SetOutput(w io.Writer)
	SetLevelOutput(level LogLevel, w io.Writer)
	WithFields(fields map[string]any) Logger
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Mapping(typeName string, rows int, duration time.Duration)
}

// baseLogger contains common logging functionality
type baseLogger struct {
	mu           *sync.Mutex
	level        LogLevel
	format       LogFormat
	writer       io.Writer
	levelWriters map[LogLevel]io.Writer
	fields       map[string]any
}

func (l *baseLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *baseLogger) SetFormat(format LogFormat) {
	l.format = format
}

func (l *baseLogger) SetOutput(w io.Writer) {
	l.writer = w
}

// SetLevelOutput sends lines of exactly level to w in addition to the main output.
func (l *baseLogger) SetLevelOutput(level LogLevel, w io.Writer) {
	if w == nil {
		delete(l.levelWriters, level)
		return
	}
	l.levelWriters[level] = w
}

func (l *baseLogger) clone() *baseLogger {
	newFields := make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	newWriters := make(map[LogLevel]io.Writer, len(l.levelWriters))
	for k, v := range l.levelWriters {
		newWriters[k] = v
	}
	return &baseLogger{
		mu:           l.mu,
		level:        l.level,
		format:       l.format,
		writer:       l.writer,
		levelWriters: newWriters,
		fields:       newFields,
	}
}

// stdLogger is the default implementation of Logger
type stdLogger struct {
	baseLogger
}

// NewStdLogger creates a new standard logger
func NewStdLogger() Logger {
	return &stdLogger{
		baseLogger: baseLogger{
			mu:           &sync.Mutex{},
			level:        LogLevelInfo,
			format:       LogFormatText,
			writer:       os.Stdout,
			levelWriters: make(map[LogLevel]io.Writer),
			fields:       make(map[string]any),
		},
	}
}

func (l *stdLogger) WithFields(fields map[string]any) Logger {
	newLogger := &stdLogger{
		baseLogger: *l.clone(),
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *stdLogger) Debug(format string, args ...any) {
	if l.level >= LogLevelDebug {
		l.log(LogLevelDebug, "DEBUG", format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...any) {
	if l.level >= LogLevelInfo {
		l.log(LogLevelInfo, "INFO", format, args...)
	}
}

func (l *stdLogger) Warn(format string, args ...any) {
	if l.level >= LogLevelWarn {
		l.log(LogLevelWarn, "WARN", format, args...)
	}
}

func (l *stdLogger) Error(format string, args ...any) {
	if l.level >= LogLevelError {
		l.log(LogLevelError, "ERROR", format, args...)
	}
}

// Mapping logs one completed conversion of rows into values of typeName.
func (l *stdLogger) Mapping(typeName string, rows int, duration time.Duration) {
	if l.level < LogLevelInfo {
		return
	}
	if l.format == LogFormatJSON {
		l.logFields(LogLevelInfo, "MAP", map[string]any{
			"type":     typeName,
			"rows":     rows,
			"duration": duration.String(),
		})
		return
	}
	l.log(LogLevelInfo, "MAP", "[%v] %s | rows: %d", duration, typeName, rows)
}

func (l *stdLogger) log(lvl LogLevel, level string, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.write(lvl, level, msg, nil)
}

// logFields writes one entry carrying kv instead of a message. Only the JSON
// format keeps the keys.
func (l *stdLogger) logFields(lvl LogLevel, level string, kv map[string]any) {
	l.write(lvl, level, "", kv)
}

func (l *stdLogger) write(lvl LogLevel, level string, msg string, kv map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	writers := make([]io.Writer, 0, 2)
	if l.writer != nil {
		writers = append(writers, l.writer)
	}
	if w, ok := l.levelWriters[lvl]; ok && level != "MAP" {
		writers = append(writers, w)
	}
	if len(writers) == 0 {
		return
	}

	now := time.Now()
	if l.format == LogFormatJSON {
		data := make(map[string]any)
		for k, v := range l.fields {
			data[k] = v
		}
		data["time"] = now.Format(time.RFC3339)
		data["level"] = level
		if kv != nil {
			for k, v := range kv {
				data[k] = v
			}
		} else {
			data["msg"] = msg
		}

		for _, w := range writers {
			json.NewEncoder(w).Encode(data)
		}
		return
	}

	if color := levelColor(level); color != "" {
		msg = color + msg + ansiReset
	}

	fieldStr := ""
	if len(l.fields) > 0 {
		fieldStr = fmt.Sprintf(" fields: %v", l.fields)
	}
	for _, w := range writers {
		fmt.Fprintf(w, "[DBUTILS] %s %s: %s%s\n", now.Format("2006-01-02 15:04:05"), level, msg, fieldStr)
	}
}

func levelColor(level string) string {
	switch level {
	case "MAP":
		return ansiCyan
	case "ERROR":
		return ansiRed
	case "WARN":
		return ansiYellow
	default:
		return ""
	}
}
