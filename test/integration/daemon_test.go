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
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/streambox-settings/client"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/types"
)

func TestSettingsSurviveRestart(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	h.Send(daemon.Request{Command: "set", Path: "network.wifi_ap.ssid", Value: "Studio"})
	h.Send(daemon.Request{Command: "set", Path: "custom.flag", Value: true})

	h.RestartDaemon()

	resp := h.Send(daemon.Request{Command: "get", Path: "network.wifi_ap.ssid"})
	assert.Equal(t, "Studio", resp.Data)
	resp = h.Send(daemon.Request{Command: "get", Path: "custom.flag"})
	assert.Equal(t, true, resp.Data)

	resp = h.Send(daemon.Request{Command: "get", Path: "basic.hostname"})
	assert.Equal(t, "streambox", resp.Data, "defaults fill keys the file never had")
}

func TestPersistedFileMergedOntoDefaults(t *testing.T) {
	h := NewTestHarness(t)
	h.WriteConfig("config.json", []byte(`{"basic": {"hostname": "from-disk"}, "extra": [1, 2]}`))
	h.StartDaemon(false)

	resp := h.Send(daemon.Request{Command: "get", Path: "basic.hostname"})
	assert.Equal(t, "from-disk", resp.Data)
	resp = h.Send(daemon.Request{Command: "get", Path: "basic.timezone"})
	assert.Equal(t, "UTC", resp.Data)
	resp = h.Send(daemon.Request{Command: "get", Path: "extra"})
	assert.Equal(t, []interface{}{1.0, 2.0}, resp.Data)
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	h := NewTestHarness(t)
	h.WriteConfig("config.json", []byte(`{not json`))
	h.StartDaemon(false)

	resp := h.Send(daemon.Request{Command: "get", Path: "basic.hostname"})
	assert.Equal(t, "streambox", resp.Data)
	assert.Equal(t, "{not json", string(h.ReadConfig("config.json")), "unreadable file is left untouched")
}

func TestReloadDiscardsUnsavedChanges(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	h.Send(daemon.Request{Command: "set", Path: "basic.locale", Value: "de_DE.UTF-8"})
	h.WriteConfig("config.json", []byte(`{"basic": {"locale": "sl_SI.UTF-8"}}`))
	h.Send(daemon.Request{Command: "reload"})

	resp := h.Send(daemon.Request{Command: "get", Path: "basic.locale"})
	assert.Equal(t, "sl_SI.UTF-8", resp.Data)
}

func TestProfileWorkflow(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	h.Send(daemon.Request{Command: "set", Path: "basic.hostname", Value: "studio-box"})
	h.Send(daemon.Request{Command: "profile-save", Name: "studio"})
	h.Send(daemon.Request{Command: "set", Path: "basic.hostname", Value: "field-box"})

	resp := h.Send(daemon.Request{Command: "profile-list"})
	assert.Equal(t, []interface{}{"studio"}, resp.Data)

	h.Send(daemon.Request{Command: "profile-load", Name: "studio"})
	resp = h.Send(daemon.Request{Command: "get", Path: "basic.hostname"})
	assert.Equal(t, "studio-box", resp.Data)

	h.RestartDaemon()
	resp = h.Send(daemon.Request{Command: "get", Path: "basic.hostname"})
	assert.Equal(t, "studio-box", resp.Data, "loaded profile is persisted")

	h.Send(daemon.Request{Command: "profile-delete", Name: "studio"})
	resp, err := h.SendRequest(daemon.Request{Command: "profile-load", Name: "studio"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindNotFound, resp.Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	h.Send(daemon.Request{Command: "set", Path: "network.wired.mtu", Value: 1400})
	resp := h.Send(daemon.Request{Command: "export", Name: "backup"})
	exported, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	h.Send(daemon.Request{Command: "set", Path: "network.wired.mtu", Value: 1500})
	h.Send(daemon.Request{Command: "import", Text: string(exported), Apply: true})

	resp = h.Send(daemon.Request{Command: "get", Path: "network.wired.mtu"})
	assert.Equal(t, json.Number("1400"), resp.Data)
}

func TestTvserverPassThrough(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	resp := h.Send(daemon.Request{Command: "tvserver-get"})
	assert.Equal(t, map[string]interface{}{}, resp.Data)

	doc := map[string]interface{}{"video": map[string]interface{}{"format": "1080p50"}}
	h.Send(daemon.Request{Command: "tvserver-set", Value: doc})

	info, err := os.Stat(h.TvserverFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	resp = h.Send(daemon.Request{Command: "tvserver-get"})
	assert.Equal(t, doc, resp.Data)
}

func TestMonitorReceivesConfigChanged(t *testing.T) {
	h := NewTestHarness(t)
	h.StartDaemon(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan types.Signal, 1)
	go func() {
		_ = client.Stream(ctx, daemon.Request{Command: "monitor", Signals: []string{types.SignalConfigChanged}}, func(line []byte) error {
			var sig types.Signal
			if err := json.Unmarshal(line, &sig); err == nil {
				received <- sig
				cancel()
			}
			return nil
		})
	}()
	time.Sleep(200 * time.Millisecond)

	h.Send(daemon.Request{Command: "set", Path: "basic.ntp_server", Value: "time.example.org"})

	select {
	case sig := <-received:
		assert.Equal(t, types.SignalConfigChanged, sig.Name)
	case <-ctx.Done():
		t.Fatal("no ConfigChanged signal received")
	}
}

func TestObserverEmitsNetworkConfigChanged(t *testing.T) {
	h := NewTestHarness(t)
	h.RequireRoot()
	h.StartDaemon(true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan types.Signal, 1)
	go func() {
		_ = client.Stream(ctx, daemon.Request{Command: "monitor", Signals: []string{types.SignalNetworkConfigChanged}}, func(line []byte) error {
			var sig types.Signal
			if err := json.Unmarshal(line, &sig); err == nil {
				received <- sig
				cancel()
			}
			return nil
		})
	}()
	time.Sleep(200 * time.Millisecond)

	h.CreateDummyInterface("sbx0")

	select {
	case sig := <-received:
		assert.Equal(t, types.SignalNetworkConfigChanged, sig.Name)
	case <-ctx.Done():
		t.Fatal("no NetworkConfigChanged signal received")
	}

	resp := h.Send(daemon.Request{Command: "history", Signals: []string{types.SignalNetworkConfigChanged}})
	var records []types.ChangeRecord
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	assert.NotEmpty(t, records)
}

func TestDaemonLogsToCapturedOutput(t *testing.T) {
	h := NewTestHarness(t)
	var logs bytes.Buffer
	h.StartDaemonWithOutput(&logs)

	h.Send(daemon.Request{Command: "save"})
	h.StopDaemon()

	assert.Contains(t, logs.String(), "Saved configuration")
}
