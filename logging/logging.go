// Package logging contains the structured logger shared by every trunkgauge package.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface handed to pipeline stages, sources and commands.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a child logger named "<parent>.<subname>" starting at the parent's level.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	GetLevel() Level
	AsZap() *zap.SugaredLogger
	Sync() error
}

// NewLoggerConfig returns a new default logger config.
func NewLoggerConfig() zap.Config {
	// from https://github.com/uber-go/zap/blob/2314926ec34c23ee21f3dd4399438469668f8097/config.go#L135
	// but disable stacktraces, use same keys as prod, and color levels.
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.DebugLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newFromZap(zap.Must(NewLoggerConfig().Build()), name, INFO)
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newFromZap(zap.Must(NewLoggerConfig().Build()), name, DEBUG)
}

// NewBlankLogger returns a logger that discards everything.
func NewBlankLogger(name string) Logger {
	return newFromZap(zap.NewNop(), name, DEBUG)
}

// NewTestLogger returns a new logger that outputs Debug+ logs through `tb.Log`.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	testCore := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel)).Core()
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	base := zap.New(zapcore.NewTee(testCore, observerCore), zap.AddCaller())
	return newFromZap(base, "", DEBUG), observedLogs
}
