package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherInitialLoad(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)

	w, err := NewWatcher(path, nil, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	cfg := w.Config()
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestWatcherReloadOnWrite(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)

	var reloads atomic.Int32
	updated := make(chan *Config, 1)

	w, err := NewWatcher(path, func(cfg *Config) {
		reloads.Add(1)
		select {
		case updated <- cfg:
		default:
		}
	}, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	changed := "server:\n  port: 9999\n"
	require.NoError(t, os.WriteFile(path, []byte(changed), 0o600))

	select {
	case cfg := <-updated:
		assert.Equal(t, 9999, cfg.Server.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcherKeepsPreviousOnInvalidReload(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)

	errs := make(chan error, 1)
	w, err := NewWatcher(path, nil,
		WithDebounceDelay(10*time.Millisecond),
		WithErrorCallback(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}))
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600))

	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	cfg := w.Config()
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestWatcherStartFailsOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confroute.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))
	// Start never began watching, Stop must still be safe.
	require.NoError(t, w.watcher.Close())
}
