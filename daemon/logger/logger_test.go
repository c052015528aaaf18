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

package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Component: "store"},
		[]Backend{NewBufferBackend(&buf, "json")}, nil)

	l.Info("dropped")
	l.Warn("kept", Field{Key: "profile", Value: "p"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "store", entry.Component)
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "p", entry.Fields["profile"])
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "text"}, []Backend{NewBufferBackend(&buf, "text")}, nil)

	l.With(Field{Key: "component", Value: "observer"}).Debug("link changed", Field{Key: "link", Value: "eth0"})

	out := buf.String()
	assert.Contains(t, out, "[debug] [observer] link changed")
	assert.Contains(t, out, "link=eth0")
}

func TestWithDoesNotChangeParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: "info", Component: "server"}, []Backend{NewBufferBackend(&buf, "json")}, nil)

	child := parent.With(Field{Key: "profile", Value: "studio"}, Field{Key: "component", Value: "store"})
	child.Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "store", first.Component)
	assert.Equal(t, "studio", first.Fields["profile"])
	assert.NotContains(t, first.Fields, "component")
	assert.Equal(t, "server", second.Component)
	assert.Empty(t, second.Fields)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestEntryToTextSortsFields(t *testing.T) {
	entry := &Entry{
		Timestamp: "2025-01-01T00:00:00Z",
		Level:     "info",
		Component: "store",
		Message:   "Saved profile",
		Fields:    map[string]interface{}{"profile": "studio", "bytes": 42, "atomic": true},
	}

	assert.Equal(t, "2025-01-01T00:00:00Z [info] [store] Saved profile atomic=true bytes=42 profile=studio", entry.ToText())
}

func TestComponentLogger(t *testing.T) {
	storeLog := For("store")
	storeLog.Info("before init is silent")

	var buf bytes.Buffer
	Init(Config{Level: "debug", Component: "daemon"}, []Backend{NewBufferBackend(&buf, "json")}, nil)
	t.Cleanup(Shutdown)

	storeLog.With(Field{Key: "path", Value: "/tmp/config.json"}).Debug("Saved configuration")
	Info("global")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var scoped, global Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &scoped))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &global))

	assert.Equal(t, "store", scoped.Component)
	assert.Equal(t, "debug", scoped.Level)
	assert.Equal(t, "/tmp/config.json", scoped.Fields["path"])
	assert.Equal(t, "daemon", global.Component)
}

func TestFileBackendCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.log")

	backend, err := NewFileBackend(path, "text")
	require.NoError(t, err)
	require.NoError(t, backend.Write(NewEntry("info", "daemon", "started", nil)))
	require.NoError(t, backend.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[info] [daemon] started")
}

func TestFileBackendWriteAfterClose(t *testing.T) {
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "settings.log"), "json")
	require.NoError(t, err)
	require.NoError(t, backend.Close())
	require.NoError(t, backend.Close())

	assert.Error(t, backend.Write(NewEntry("info", "daemon", "late", nil)))
}

func TestConsoleBackend(t *testing.T) {
	var buf bytes.Buffer
	backend := NewConsoleBackend(&buf, "streambox-settings", "text")

	require.NoError(t, backend.Write(NewEntry("error", "store", "save failed",
		map[string]interface{}{"path": "/tmp/x"})))

	out := buf.String()
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "save failed")
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "path=/tmp/x")
}

type recordingSubscriber struct {
	mu      sync.Mutex
	entries []*Entry
}

func (r *recordingSubscriber) OnLogEvent(entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingSubscriber) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestGlobalLoggerEmitsToSubscribers(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewEmitter()
	sub := &recordingSubscriber{}
	emitter.Subscribe(sub)

	Init(Config{Level: "info"}, []Backend{NewBufferBackend(&buf, "json")}, emitter)
	t.Cleanup(Shutdown)

	Info("hello")

	assert.Eventually(t, func() bool { return sub.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Same(t, emitter, GetEmitter())

	Shutdown()
	assert.Nil(t, GetEmitter())
	Info("after shutdown is a no-op")
}
