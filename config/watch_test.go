package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	updates := make(chan AppConfig, 1)
	w, err := NewWatcher(path, nil, func(cfg AppConfig) {
		select {
		case updates <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	w.cooldown = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	changed := strings.Replace(validConfig, "credit: 0.15", "credit: 0.25", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o644))

	select {
	case cfg := <-updates:
		assert.Equal(t, 0.25, cfg.Quoting.Credit)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcherStartFailureReleasesWatcher(t *testing.T) {
	// Watching a directory that does not exist cannot start.
	path := filepath.Join(t.TempDir(), "missing", "config.yaml")
	w, err := NewWatcher(path, nil, nil)
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))

	// The underlying fsnotify watcher is closed, not leaked.
	assert.Error(t, w.watcher.Add(t.TempDir()))
}

func TestWatcherRejectsInvalidUpdate(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	updates := make(chan AppConfig, 1)
	w, err := NewWatcher(path, nil, func(cfg AppConfig) {
		select {
		case updates <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	w.cooldown = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// A broken file on disk must not reach the callback.
	broken := strings.Replace(validConfig, "credit: 0.15", "credit: 0", 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	select {
	case cfg := <-updates:
		t.Fatalf("unexpected update with credit %v", cfg.Quoting.Credit)
	case <-time.After(500 * time.Millisecond):
	}
}
