package logger

import (
	"os"
	"time"

	"github.com/leandrodaf/keytone/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is an implementation of the Logger contract backed by Uber's zap.
type ZapLogger struct {
	logger *zap.Logger
	level  contracts.LogLevel
}

// NewZapLogger creates a production zap logger at InfoLevel.
func NewZapLogger() contracts.Logger {
	logger, _ := zap.NewProduction(zap.AddCallerSkip(2))
	return &ZapLogger{logger: logger, level: contracts.InfoLevel}
}

// NewNopLogger creates a logger that discards everything. Intended for tests
// and for hosts that handle their own diagnostics.
func NewNopLogger() contracts.Logger {
	return &ZapLogger{logger: zap.NewNop(), level: contracts.InfoLevel}
}

// Debug logs a message at the DEBUG level.
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, contracts.DebugLevel, msg, fields...)
}

// Info logs a message at the INFO level.
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, contracts.InfoLevel, msg, fields...)
}

// Warn logs a message at the WARN level.
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, contracts.WarnLevel, msg, fields...)
}

// Error logs a message at the ERROR level.
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, contracts.ErrorLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application.
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, contracts.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a new instance of Field.
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the logging level.
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level = level
}

// severity orders contract levels for filtering, independent of the constant
// values, so InfoLevel can stay the zero-value default.
func severity(level contracts.LogLevel) int {
	switch level {
	case contracts.DebugLevel:
		return -1
	case contracts.InfoLevel:
		return 0
	case contracts.WarnLevel:
		return 1
	case contracts.ErrorLevel:
		return 2
	case contracts.FatalLevel:
		return 3
	}
	return 0
}

// log converts contract fields to zap fields and records the message.
func (z *ZapLogger) log(zl zapcore.Level, cl contracts.LogLevel, msg string, fields ...contracts.Field) {
	if severity(cl) < severity(z.level) {
		return
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok {
			zapFields = append(zapFields, f.field)
		}
	}

	if ce := z.logger.Check(zl, msg); ce != nil {
		ce.Write(zapFields...)
	}
}

// zapField implements contracts.Field by carrying one zap.Field.
type zapField struct {
	field zap.Field
}

func (f zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val)}
}

func (f zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val)}
}

func (f zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val)}
}

func (f zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val)}
}

func (f zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val)}
}

func (f zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val)}
}

func (f zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val)}
}

func (f zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val)}
}

func (f zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val)}
}
