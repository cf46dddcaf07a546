package safety

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/asthra-lang/asthra-runtime/internal/diag"
)

// ConfigWatcher reloads a monitor's configuration whenever the backing JSON
// file changes on disk. Reloads are atomic: a file that fails to parse
// leaves the active configuration untouched.
type ConfigWatcher struct {
	w       *fsnotify.Watcher
	monitor *Monitor
	path    string
	done    chan struct{}
}

// WatchConfigFile starts watching path and applies each successful reload to
// m. The parent directory is watched so editor save-via-rename still
// produces events for the file.
func WatchConfigFile(m *Monitor, path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{w: w, monitor: m, path: abs, done: make(chan struct{})}
	go cw.loop()
	return cw, nil
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cw.reload()
			}
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.monitor.logger.Logf(diag.LevelWarn, diag.CategoryGeneral,
				"config watcher error: %v", err)
		case <-cw.done:
			return
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := LoadConfigFile(cw.path)
	if err != nil {
		cw.monitor.logger.Logf(diag.LevelWarn, diag.CategoryGeneral,
			"config reload from %s failed: %v", cw.path, err)
		return
	}
	cw.monitor.SetConfig(cfg)
	cw.monitor.logger.Logf(diag.LevelInfo, diag.CategoryGeneral,
		"config reloaded from %s (level %s)", cw.path, cfg.Level)
}

// Path returns the absolute path of the watched file.
func (cw *ConfigWatcher) Path() string { return cw.path }

// Close stops the watcher. Safe to call once.
func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	return cw.w.Close()
}
