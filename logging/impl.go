package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

type impl struct {
	name  string
	level *atomic.Int32
	sugar *zap.SugaredLogger
}

func newFromZap(base *zap.Logger, name string, level Level) Logger {
	sugar := base.Sugar()
	if name != "" {
		sugar = sugar.Named(name)
	}
	lvl := &atomic.Int32{}
	lvl.Store(int32(level))
	return &impl{name: name, level: lvl, sugar: sugar}
}

func (imp *impl) shouldLog(level Level) bool {
	return level >= Level(imp.level.Load())
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	lvl := &atomic.Int32{}
	lvl.Store(imp.level.Load())
	return &impl{name: newName, level: lvl, sugar: imp.sugar.Named(subname)}
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Store(int32(level))
}

func (imp *impl) GetLevel() Level {
	return Level(imp.level.Load())
}

// AsZap returns the underlying sugared logger; it does not observe SetLevel.
func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugar
}

func (imp *impl) Sync() error {
	return imp.sugar.Sync()
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debug(args...)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debugf(template, args...)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.sugar.Debugw(msg, keysAndValues...)
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Info(args...)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Infof(template, args...)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.sugar.Infow(msg, keysAndValues...)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warn(args...)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warnf(template, args...)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.sugar.Warnw(msg, keysAndValues...)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Error(args...)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Errorf(template, args...)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.sugar.Errorw(msg, keysAndValues...)
	}
}
