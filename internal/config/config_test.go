package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Server.URL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 3*time.Second, cfg.ToastDuration())
	assert.Equal(t, 10, cfg.Console.PageSize)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.URL, cfg.Server.URL)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "https://prepull.internal:9443"
timeout_seconds = 10

[console]
poll_interval_seconds = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://prepull.internal:9443", cfg.Server.URL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	// Unset sections keep defaults.
	assert.Equal(t, 10, cfg.Console.PageSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"empty url", "[server]\nurl = \"\"\n"},
		{"zero timeout", "[server]\ntimeout_seconds = 0\n"},
		{"negative poll", "[console]\npoll_interval_seconds = -1\n"},
		{"bad toml", "[server\nurl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.log"), ExpandPath("~/x.log"))
	assert.Equal(t, "/var/log/x.log", ExpandPath("/var/log/x.log"))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[console]\npoll_interval_seconds = 5\n"), 0o644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()
	w.SetDebounce(10 * time.Millisecond)
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(path, []byte("[console]\npoll_interval_seconds = 7\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7*time.Second, cfg.PollInterval())
	case <-time.After(3 * time.Second):
		t.Fatal("config reload did not fire")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()
	w.SetDebounce(10 * time.Millisecond)
	w.Start(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}
