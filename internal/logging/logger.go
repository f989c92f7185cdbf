// Package logging provides the structured logger shared by the sonicos
// client and the sonicctl tool.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	loggerMu      sync.RWMutex
)

func init() {
	// Library users get warnings only until they call Setup.
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// Level represents a logging level.
type Level string

const (
	LevelTrace   Level = "trace" // every HTTP request
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// slog has no trace level, so one is defined below debug.
const slogLevelTrace = slog.LevelDebug - 4

// Format selects the handler used for output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel converts a string to a Level.
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat converts a string to a Format, defaulting to FormatText.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// Options configures the logger.
type Options struct {
	// Level is the minimum log level to output
	Level Level
	// Format is the output format (default: text)
	Format Format
	// Output is where logs are written (default: os.Stderr)
	Output io.Writer
	// AddSource adds source file information to log entries
	AddSource bool
}

// Setup initializes the global logger with the given options.
func Setup(opts Options) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level.toSlogLevel(),
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}
	defaultLogger = slog.New(handler)
}

// Logger returns the global logger instance.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// Trace logs a trace message on the given logger.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), slogLevelTrace, msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warning logs a warning message.
func Warning(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// WithComponent returns a logger with a component attribute.
func WithComponent(component string) *slog.Logger {
	return Logger().With("component", component)
}

type contextKey struct{}

// WithContext returns a new context with the given logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from the context.
// Returns the default logger if none is found in the context.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return Logger()
}

// PrintfLogger adapts a slog.Logger to libraries such as resty that expect
// Errorf/Warnf/Debugf methods.
type PrintfLogger struct {
	l *slog.Logger
}

// Printf wraps l so it can be handed to resty.Client.SetLogger.
func Printf(l *slog.Logger) *PrintfLogger {
	return &PrintfLogger{l: l}
}

func (p *PrintfLogger) Errorf(format string, v ...any) {
	p.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (p *PrintfLogger) Warnf(format string, v ...any) {
	p.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (p *PrintfLogger) Debugf(format string, v ...any) {
	p.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
