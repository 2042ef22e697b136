package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging surface handlers and the engine depend on. Keeping
// it to leveled calls plus field scoping lets tests swap in no-op or
// testing.T backed implementations.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// New builds the process-level zap logger from config. Unknown level
// strings fall back to info.
func New(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, _ := cfg.Build()
	return logger
}

// NewZapAdapter exposes an existing *zap.Logger through the Logger interface.
func NewZapAdapter(l *zap.Logger) Logger {
	return &adapter{l: l}
}

// NewStructured builds a Logger directly from config.
func NewStructured(levelStr, format string) Logger {
	return &adapter{l: New(levelStr, format)}
}

// NewTestLogger routes log output through testing.T.
func NewTestLogger(t testing.TB) Logger {
	return &adapter{l: zaptest.NewLogger(t)}
}

// NewNoOpLogger discards everything.
func NewNoOpLogger() Logger {
	return &adapter{l: zap.NewNop()}
}

type adapter struct {
	l *zap.Logger
}

func (a *adapter) Debug(msg string, fields map[string]interface{}) {
	a.l.Debug(msg, toZapFields(fields)...)
}

func (a *adapter) Info(msg string, fields map[string]interface{}) {
	a.l.Info(msg, toZapFields(fields)...)
}

func (a *adapter) Warn(msg string, fields map[string]interface{}) {
	a.l.Warn(msg, toZapFields(fields)...)
}

func (a *adapter) Error(msg string, fields map[string]interface{}) {
	a.l.Error(msg, toZapFields(fields)...)
}

func (a *adapter) WithFields(fields map[string]interface{}) Logger {
	return &adapter{l: a.l.With(toZapFields(fields)...)}
}

func (a *adapter) WithError(err error) Logger {
	return &adapter{l: a.l.With(zap.Error(err))}
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
