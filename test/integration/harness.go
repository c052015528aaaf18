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

//go:build integration
// +build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/we-are-mono/streambox-settings/client"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/state"
)

// TestHarness runs a real daemon against an isolated store directory
type TestHarness struct {
	t             *testing.T
	configDir     string
	socketPath    string
	tvserverFile  string
	createdIfaces []string
	srv           *daemon.Server
	errCh         chan error
	originalEnv   map[string]string
}

// NewTestHarness creates a new isolated test environment
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	configDir := t.TempDir()
	h := &TestHarness{
		t:             t,
		configDir:     configDir,
		socketPath:    filepath.Join(configDir, "streambox-settings.sock"),
		tvserverFile:  filepath.Join(configDir, "tv", "config.json"),
		createdIfaces: []string{},
		originalEnv:   make(map[string]string),
	}

	h.originalEnv["STREAMBOX_CONFIG_DIR"] = os.Getenv("STREAMBOX_CONFIG_DIR")
	h.originalEnv["STREAMBOX_SOCKET_PATH"] = os.Getenv("STREAMBOX_SOCKET_PATH")
	os.Setenv("STREAMBOX_CONFIG_DIR", configDir)
	os.Setenv("STREAMBOX_SOCKET_PATH", h.socketPath)

	t.Logf("Created test harness: socket=%s", h.socketPath)
	t.Cleanup(h.Cleanup)
	return h
}

// RequireRoot skips the test unless it can manipulate network links
func (h *TestHarness) RequireRoot() {
	h.t.Helper()
	if os.Geteuid() != 0 {
		h.t.Skip("test requires root privileges")
	}
}

// CreateDummyInterface creates a dummy link prefixed with "test-"
func (h *TestHarness) CreateDummyInterface(name string) string {
	h.t.Helper()

	actualName := "test-" + name
	cmd := exec.Command("ip", "link", "add", actualName, "type", "dummy")
	if output, err := cmd.CombinedOutput(); err != nil {
		h.t.Fatalf("Failed to create dummy interface %s: %v\nOutput: %s", actualName, err, output)
	}

	h.createdIfaces = append(h.createdIfaces, actualName)
	return actualName
}

// DeleteInterface removes an interface
func (h *TestHarness) DeleteInterface(name string) {
	_ = exec.Command("ip", "link", "del", name).Run()
}

// StartDaemon starts the daemon with the observer enabled when requested
func (h *TestHarness) StartDaemon(withObserver bool) {
	h.startDaemon(withObserver, nil)
}

// StartDaemonWithOutput starts the daemon and captures its log output
func (h *TestHarness) StartDaemonWithOutput(logWriter *bytes.Buffer) {
	h.startDaemon(false, logWriter)
}

func (h *TestHarness) startDaemon(withObserver bool, logWriter *bytes.Buffer) {
	h.t.Helper()

	var backends []logger.Backend
	if logWriter != nil {
		backends = []logger.Backend{logger.NewBufferBackend(logWriter, "json")}
	}
	logger.Init(logger.Config{Level: "debug", Format: "json", Component: "daemon"}, backends, logger.NewEmitter())

	opts := daemon.DefaultOptions()
	opts.SocketPath = h.socketPath
	opts.ConfigDir = h.configDir
	opts.TvserverFile = h.tvserverFile
	opts.DisableObserver = !withObserver
	opts.ObserverDebounce = daemon.Duration(50 * time.Millisecond)
	if err := opts.Validate(); err != nil {
		h.t.Fatalf("invalid daemon options: %v", err)
	}

	store := state.NewStore(opts.StoreOptions())
	srv, err := daemon.NewServer(opts, store, daemon.DefaultServices(time.Duration(opts.CommandTimeout)))
	if err != nil {
		h.t.Fatalf("failed to create daemon server: %v", err)
	}

	h.srv = srv
	h.errCh = make(chan error, 1)
	go func() {
		h.errCh <- srv.Start()
	}()

	h.WaitForDaemon(5 * time.Second)
}

// StopDaemon stops the running daemon and waits for Start to return
func (h *TestHarness) StopDaemon() {
	h.t.Helper()
	if h.srv == nil {
		return
	}

	h.srv.Stop()
	select {
	case err := <-h.errCh:
		if err != nil {
			h.t.Errorf("daemon exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		h.t.Error("daemon did not stop within timeout")
	}
	h.srv = nil
}

// RestartDaemon stops the daemon and starts a fresh one on the same store
func (h *TestHarness) RestartDaemon() {
	h.t.Helper()
	h.StopDaemon()
	h.StartDaemon(false)
}

// WaitForDaemon waits for daemon to be ready to accept connections
func (h *TestHarness) WaitForDaemon(timeout time.Duration) {
	h.t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case err := <-h.errCh:
			h.t.Fatalf("daemon failed to start: %v", err)
		default:
		}

		if _, err := client.Send(daemon.Request{Command: "status"}); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	h.t.Fatal("Daemon did not become ready within timeout")
}

// Send sends a request and fails the test unless the daemon reports success
func (h *TestHarness) Send(req daemon.Request) *daemon.Response {
	h.t.Helper()

	resp, err := client.Send(req)
	if err != nil {
		h.t.Fatalf("%s: %v", req.Command, err)
	}
	if !resp.Success {
		h.t.Fatalf("%s failed: %s (%s)", req.Command, resp.Error, resp.Code)
	}
	return resp
}

// SendRequest sends a request to the daemon and returns the response
func (h *TestHarness) SendRequest(req daemon.Request) (*daemon.Response, error) {
	return client.Send(req)
}

// WriteConfig writes a file relative to the store directory
func (h *TestHarness) WriteConfig(name string, content []byte) {
	h.t.Helper()

	path := filepath.Join(h.configDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to write config file %s: %v", name, err)
	}
}

// ReadConfig reads a file relative to the store directory
func (h *TestHarness) ReadConfig(name string) []byte {
	h.t.Helper()

	data, err := os.ReadFile(filepath.Join(h.configDir, name))
	if err != nil {
		h.t.Fatalf("failed to read %s: %v", name, err)
	}
	return data
}

// TvserverFile returns the path of the AV server config used by the daemon
func (h *TestHarness) TvserverFile() string { return h.tvserverFile }

// Cleanup tears down the test environment
func (h *TestHarness) Cleanup() {
	h.StopDaemon()

	for _, iface := range h.createdIfaces {
		h.DeleteInterface(iface)
	}

	for key, val := range h.originalEnv {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}

	os.Remove(h.socketPath)
	h.t.Logf("Test harness cleanup complete: %s", h.configDir)
}
