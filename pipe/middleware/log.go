package middleware

import (
	"strings"
	"sync/atomic"

	"github.com/fxsml/stagepipe/logging"
)

// LogLevel represents the severity level for logging messages.
type LogLevel string

const (
	// LogLevelDebug is used for detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is used for general information messages.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is used for warning conditions.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is used for error conditions.
	LogLevelError LogLevel = "error"
)

// Logger defines an interface for logging at different severity levels.
// Args are alternating key-value pairs.
type Logger interface {
	// Debug logs a message at debug level.
	Debug(msg string, args ...any)
	// Info logs a message at info level.
	Info(msg string, args ...any)
	// Warn logs a message at warning level.
	Warn(msg string, args ...any)
	// Error logs a message at error level.
	Error(msg string, args ...any)
}

type loggerHolder struct{ Logger }

var defaultLogger atomic.Pointer[loggerHolder]

func init() {
	defaultLogger.Store(&loggerHolder{logging.NewAdapter(logging.NewDefault())})
}

// SetDefaultLogger sets the logger used by stages and middleware that were
// not given one explicitly. A zap production logger is used by default.
func SetDefaultLogger(l Logger) {
	defaultLogger.Store(&loggerHolder{l})
}

// DefaultLogger returns the logger set with SetDefaultLogger.
func DefaultLogger() Logger {
	return defaultLogger.Load().Logger
}

// LogConfig holds configuration for the logger middleware.
type LogConfig struct {
	// Logger receives the messages. Defaults to DefaultLogger().
	Logger Logger

	// Args are additional arguments to include in all log messages.
	Args []any

	// LevelSuccess is the log level used for successful processing.
	// Defaults to LogLevelDebug.
	LevelSuccess LogLevel
	// LevelCancel is the log level used when processing is canceled.
	// Defaults to LogLevelWarn.
	LevelCancel LogLevel
	// LevelFailure is the log level used when processing fails.
	// Defaults to LogLevelError.
	LevelFailure LogLevel

	// MessageSuccess is the message logged on successful processing.
	// Defaults to "STAGEPIPE: Success".
	MessageSuccess string
	// MessageCancel is the message logged when processing is canceled.
	// Defaults to "STAGEPIPE: Cancel".
	MessageCancel string
	// MessageFailure is the message logged when processing fails.
	// Defaults to "STAGEPIPE: Failure".
	MessageFailure string
}

func parseLogLevel(level LogLevel) LogLevel {
	return LogLevel(strings.ToLower(string(level)))
}

func (c LogConfig) parse() LogConfig {
	if c.Logger == nil {
		c.Logger = DefaultLogger()
	}
	c.LevelSuccess = parseLogLevel(c.LevelSuccess)
	if c.LevelSuccess == "" {
		c.LevelSuccess = LogLevelDebug
	}
	c.LevelCancel = parseLogLevel(c.LevelCancel)
	if c.LevelCancel == "" {
		c.LevelCancel = LogLevelWarn
	}
	c.LevelFailure = parseLogLevel(c.LevelFailure)
	if c.LevelFailure == "" {
		c.LevelFailure = LogLevelError
	}
	if c.MessageSuccess == "" {
		c.MessageSuccess = "STAGEPIPE: Success"
	}
	if c.MessageCancel == "" {
		c.MessageCancel = "STAGEPIPE: Cancel"
	}
	if c.MessageFailure == "" {
		c.MessageFailure = "STAGEPIPE: Failure"
	}
	return c
}

// LogFunc returns the method of l matching level. Unknown levels map to Info.
func LogFunc(level LogLevel, l Logger) func(msg string, args ...any) {
	switch parseLogLevel(level) {
	case LogLevelDebug:
		return l.Debug
	case LogLevelWarn:
		return l.Warn
	case LogLevelError:
		return l.Error
	default:
		return l.Info
	}
}

func appendArgs(args ...[]any) []any {
	l := 0
	for _, a := range args {
		l += len(a)
	}
	result := make([]any, 0, l)
	for _, a := range args {
		result = append(result, a...)
	}
	return result
}

// NewMetricsLogger returns a collector that logs the outcome of each item.
func NewMetricsLogger(cfg LogConfig) MetricsCollector {
	cfg = cfg.parse()
	logCancel := LogFunc(cfg.LevelCancel, cfg.Logger)
	logFailure := LogFunc(cfg.LevelFailure, cfg.Logger)
	logSuccess := LogFunc(cfg.LevelSuccess, cfg.Logger)
	return func(m *Metrics) {
		switch m.Outcome() {
		case OutcomeSuccess:
			logSuccess(cfg.MessageSuccess,
				appendArgs(cfg.Args, []any{"duration", m.Duration})...)
		case OutcomeCancel:
			logCancel(cfg.MessageCancel,
				appendArgs(cfg.Args, []any{"error", m.Error})...)
		default:
			logFailure(cfg.MessageFailure,
				appendArgs(cfg.Args, []any{"error", m.Error, "duration", m.Duration})...)
		}
	}
}

// Log creates a middleware that logs information about processing results.
// It logs success, failure, or cancellation messages at configured levels.
func Log[In, Out any](cfg LogConfig) Middleware[In, Out] {
	return MetricsMiddleware[In, Out](NewMetricsLogger(cfg))
}
