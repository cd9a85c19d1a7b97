package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel indicates informational messages that highlight the progress of the engine.
	InfoLevel LogLevel = iota
	// DebugLevel indicates messages useful for developers to troubleshoot issues.
	DebugLevel
	// WarnLevel indicates degraded but recoverable situations, such as a denied voice admission.
	WarnLevel
	// ErrorLevel indicates serious issues that need attention, such as a backend failure.
	ErrorLevel
	// FatalLevel indicates very severe error events that will presumably lead the application to abort.
	FatalLevel
)

// Field represents a structured log field of various data types.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Int64(key string, val int64) Field
	Uint64(key string, val uint64) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Duration(key string, val time.Duration) Field
	Error(key string, val error) Field
}

// Logger provides methods for recording messages at different levels.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
}
