package logger

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/framesampler/pkg/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger emits structured JSON lines through zap.
// Messages are translated like ConsoleLogger; the untranslated format string
// is kept in the "key" field so logs stay greppable across languages.
type ZapLogger struct {
	z *zap.Logger
}

// NewZap builds a production JSON logger at level.
func NewZap(level ports.LogLevel) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return NewZapFrom(z), nil
}

// NewZapFrom wraps an existing zap logger. Level filtering is left to z.
func NewZapFrom(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

func zapLevel(level ports.LogLevel) zapcore.Level {
	switch level {
	case ports.LevelDebug:
		return zapcore.DebugLevel
	case ports.LevelInfo:
		return zapcore.InfoLevel
	case ports.LevelWarn:
		return zapcore.WarnLevel
	case ports.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	if ce := l.z.Check(zapcore.DebugLevel, ""); ce != nil {
		ce.Message = l10n.F(msg, args...)
		ce.Write(zap.String("key", msg))
	}
}

// Info logs an informational message.
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	if ce := l.z.Check(zapcore.InfoLevel, ""); ce != nil {
		ce.Message = l10n.F(msg, args...)
		ce.Write(zap.String("key", msg))
	}
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	if ce := l.z.Check(zapcore.WarnLevel, ""); ce != nil {
		ce.Message = l10n.F(msg, args...)
		ce.Write(zap.String("key", msg))
	}
}

// Error logs an error message.
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	if ce := l.z.Check(zapcore.ErrorLevel, ""); ce != nil {
		ce.Message = l10n.F(msg, args...)
		ce.Write(zap.String("key", msg))
	}
}

// WithComponent returns a logger with a component field.
func (l *ZapLogger) WithComponent(component string) ports.Logger {
	return &ZapLogger{z: l.z.With(zap.String("component", component))}
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

var _ ports.Logger = (*ZapLogger)(nil)
