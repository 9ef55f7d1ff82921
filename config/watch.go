package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file on change and hands the validated result
// to the callback. A cooldown absorbs editor write bursts.
type Watcher struct {
	path     string
	cooldown time.Duration
	logger   *zap.Logger
	onUpdate func(AppConfig)

	watcher    *fsnotify.Watcher
	lastReload time.Time
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewWatcher 创建配置热更新器。
func NewWatcher(path string, logger *zap.Logger, onUpdate func(AppConfig)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		cooldown: 2 * time.Second,
		logger:   logger,
		onUpdate: onUpdate,
		watcher:  fw,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching; events are handled until ctx is done or Stop.
// A failed Start releases the underlying watcher, so the caller must not
// call Stop afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	// Watch the directory: editors often replace the file atomically,
	// which drops a watch registered on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	go w.loop(ctx)
	return nil
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	close(w.stopChan)
	<-w.doneChan
	_ = w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneChan)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	if time.Since(w.lastReload) < w.cooldown {
		return
	}
	w.lastReload = time.Now()

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	if w.onUpdate != nil {
		w.onUpdate(cfg)
	}
}
