package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"retrofx/internal/logger"
)

// Watcher reloads the effect chain when the config file changes on disk
type Watcher struct {
	path     string
	settings *Settings
	logger   *logger.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	onReload func(error)
}

// WatchConfig starts watching path. The parent directory is watched so
// editors that save by rename are picked up too. onReload, if not nil, is
// called after every reload attempt with its error.
func WatchConfig(path string, settings *Settings, log *logger.Logger, onReload func(error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		settings: settings,
		logger:   log,
		watcher:  fw,
		done:     make(chan struct{}),
		onReload: onReload,
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	err := w.apply()
	if err != nil {
		w.logger.Warnf("config reload failed, keeping current effects: %v", err)
	} else {
		w.logger.Infof("reloaded effects from %s", w.path)
	}

	if w.onReload != nil {
		w.onReload(err)
	}
}

func (w *Watcher) apply() error {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		return err
	}
	return w.settings.Replace(cfg.Effects)
}

// Close stops the watcher and waits for the event loop to exit
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
