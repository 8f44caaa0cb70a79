package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation defaults.
const (
	DefaultMaxFileSizeMB = 64
	DefaultMaxBackups    = 3
)

// FileConfig describes a rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// NewLoggerWithFile returns a logger that writes to stdout like NewLogger and also appends JSON
// lines to a rotated file. Close the returned closer to flush the file.
func NewLoggerWithFile(name string, level Level, cfg FileConfig) (Logger, io.Closer, error) {
	if cfg.Path == "" {
		return nil, nil, errors.New("log file path is empty")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultMaxFileSizeMB
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultMaxBackups
	}
	file := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}

	consoleCfg := NewLoggerConfig().EncoderConfig
	fileCfg := consoleCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), zap.DebugLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), zap.DebugLevel),
	)
	return newFromZap(zap.New(core, zap.AddCaller()), name, level), file, nil
}
