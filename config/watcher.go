package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/bridgewiz/trunkgauge/logging"
	"github.com/bridgewiz/trunkgauge/utils"
)

// DefaultWatchDelay coalesces the burst of events editors produce when saving.
const DefaultWatchDelay = 250 * time.Millisecond

// Watcher keeps the expected diameter knob in sync with the config file, so an operator can
// widen or narrow the depth band between frames without restarting.
type Watcher struct {
	path    string
	knob    *utils.Knob
	logger  logging.Logger
	fsw     *fsnotify.Watcher
	workers *utils.StoppableWorkers
}

// WatchDiameter starts watching filePath. Only expected_max_diameter_m is applied; an edited file
// that fails to read or validate is logged and ignored.
func WatchDiameter(filePath string, knob *utils.Knob, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	if knob == nil {
		return nil, errors.New("no knob to update")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors replace files on save, so watch the directory and filter by name
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(err, fsw.Close())
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	w := &Watcher{path: abs, knob: knob, logger: logger, fsw: fsw}
	w.workers = utils.NewStoppableWorkers(context.Background(), func(ctx context.Context) {
		w.run(ctx, debounce.New(delay))
	})
	return w, nil
}

func (w *Watcher) run(ctx context.Context, debounced func(f func())) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			debounced(func() {
				if ctx.Err() == nil {
					w.reload()
				}
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Read(w.path)
	if err != nil {
		w.logger.Warnw("ignoring config change", "path", w.path, "error", err)
		return
	}
	old := w.knob.Load()
	if cfg.ExpectedMaxDiameter == old {
		return
	}
	if err := w.knob.Store(cfg.ExpectedMaxDiameter); err != nil {
		w.logger.Warnw("ignoring config change", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("expected diameter changed", "from_m", old, "to_m", cfg.ExpectedMaxDiameter)
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.workers.Stop()
	return w.fsw.Close()
}
