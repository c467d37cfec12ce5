package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher monitors the config file and reloads it on change
type Watcher struct {
	path        string
	watcher     *fsnotify.Watcher
	callbacks   []func(*Config)
	stopCh      chan struct{}
	mu          sync.RWMutex
	running     bool
	lastModTime time.Time
	debounce    time.Duration
	timer       *time.Timer
}

// NewWatcher creates a watcher for the file cfg was loaded from
func NewWatcher(cfg *Config) (*Watcher, error) {
	if cfg == nil || cfg.ConfigFile == "" {
		return nil, fmt.Errorf("config was not loaded from a file")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	path, err := filepath.Abs(cfg.ConfigFile)
	if err != nil {
		path = cfg.ConfigFile
	}

	return &Watcher{
		path:     path,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
		debounce: defaultDebounce,
	}, nil
}

// AddCallback registers fn to receive every successfully reloaded config
func (w *Watcher) AddCallback(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.callbacks = append(w.callbacks, fn)
}

// Start starts watching for configuration changes
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	if stat, err := os.Stat(w.path); err == nil {
		w.lastModTime = stat.ModTime()
	}

	// Watch the directory so editors that replace the file by rename still trigger
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.running = true
	go w.watchLoop()

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
	}

	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isConfigEvent(event) {
				continue
			}

			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, w.reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logrus.Warnf("Config watcher error: %v", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) isConfigEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) != 0
}

func (w *Watcher) reload() {
	stat, err := os.Stat(w.path)
	if err != nil {
		return
	}

	w.mu.Lock()
	if !stat.ModTime().After(w.lastModTime) {
		w.mu.Unlock()
		return
	}
	w.lastModTime = stat.ModTime()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		logrus.Errorf("Failed to reload configuration, keeping previous: %v", err)
		return
	}

	for _, fn := range callbacks {
		fn(cfg)
	}
	logrus.Infof("Configuration reloaded from %s", w.path)
}

// TriggerReload loads the file now and notifies callbacks regardless of mtime
func (w *Watcher) TriggerReload() error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}

	w.mu.RLock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}
