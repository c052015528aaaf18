// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsMissingFile(t *testing.T) {
	t.Setenv("STREAMBOX_SOCKET_PATH", "")
	t.Setenv("STREAMBOX_CONFIG_DIR", "/tmp/streambox-store")

	opts, err := LoadOptions(filepath.Join(t.TempDir(), "daemon.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaultSocketPath, opts.SocketPath)
	assert.Equal(t, "/tmp/streambox-store", opts.ConfigDir)
	assert.Equal(t, "/tmp/streambox-store/history.db", opts.HistoryFile)
	assert.Equal(t, 30*time.Second, time.Duration(opts.CommandTimeout))
	assert.Equal(t, "info", opts.Logging.Level)
	assert.True(t, opts.Logging.Journald)
}

func TestLoadOptionsFromFile(t *testing.T) {
	t.Setenv("STREAMBOX_SOCKET_PATH", "")
	t.Setenv("STREAMBOX_CONFIG_DIR", "")

	path := filepath.Join(t.TempDir(), "daemon.yaml")
	content := `
socket_path: /run/settings.sock
config_dir: /data/settings
tvserver_file: /data/tv.json
history_limit: 20
command_timeout: 5s
observer_debounce: 500ms
logging:
  level: debug
  format: text
  journald: false
  file: /var/log/settings.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "/run/settings.sock", opts.SocketPath)
	assert.Equal(t, "/data/settings", opts.ConfigDir)
	assert.Equal(t, "/data/tv.json", opts.TvserverFile)
	assert.Equal(t, 20, opts.HistoryLimit)
	assert.Equal(t, 5*time.Second, time.Duration(opts.CommandTimeout))
	assert.Equal(t, 500*time.Millisecond, time.Duration(opts.ObserverDebounce))
	assert.Equal(t, "debug", opts.Logging.Level)
	assert.Equal(t, "text", opts.Logging.Format)
	assert.False(t, opts.Logging.Journald)
	assert.Equal(t, "/var/log/settings.log", opts.Logging.File)

	storeOpts := opts.StoreOptions()
	assert.Equal(t, "/data/settings", storeOpts.Dir)
	assert.Equal(t, "/data/tv.json", storeOpts.TvserverFile)
}

func TestLoadOptionsEnvOverridesFile(t *testing.T) {
	t.Setenv("STREAMBOX_SOCKET_PATH", "/tmp/env.sock")
	t.Setenv("STREAMBOX_CONFIG_DIR", "")

	path := filepath.Join(t.TempDir(), "daemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("socket_path: /run/file.sock\n"), 0644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.sock", opts.SocketPath)
}

func TestLoadOptionsInvalid(t *testing.T) {
	t.Setenv("STREAMBOX_SOCKET_PATH", "")
	t.Setenv("STREAMBOX_CONFIG_DIR", "")

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad duration", "command_timeout: soon\n", "line 1"},
		{"negative limit", "history_limit: -1\n", "history_limit"},
		{"zero timeout", "command_timeout: 0s\n", "command_timeout"},
		{"not yaml", "socket_path: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "daemon.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadOptions(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
