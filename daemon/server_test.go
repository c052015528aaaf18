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
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/system"
	"github.com/we-are-mono/streambox-settings/types"
)

type testServer struct {
	*Server
	cmd *system.MockCommandRunner
	nl  *system.MockNetlinkClient
	fs  *system.MockFilesystemClient
	dir string
}

func newTestServer(t *testing.T, configure ...func(*Options)) *testServer {
	t.Helper()
	dir := t.TempDir()

	opts := DefaultOptions()
	opts.SocketPath = filepath.Join(dir, "daemon.sock")
	opts.ConfigDir = filepath.Join(dir, "store")
	opts.TvserverFile = filepath.Join(dir, "tv", "config.json")
	opts.HistoryFile = ""
	opts.DisableObserver = true
	for _, fn := range configure {
		fn(opts)
	}
	require.NoError(t, opts.Validate())

	cmd := system.NewMockCommandRunner()
	nl := system.NewMockNetlinkClient()
	fs := system.NewMockFilesystemClient()
	svc := Services{
		Basic:      system.NewBasicManager(cmd),
		Network:    system.NewNetworkInspector(nl, fs),
		Audio:      system.NewAudioManager(cmd),
		Storage:    system.NewStorageManager(cmd, fs),
		AVServer:   system.NewAVServer(cmd),
		Netlink:    nl,
		Filesystem: fs,
	}

	store := state.NewStore(opts.StoreOptions())
	require.NoError(t, store.Initialize())

	s, err := NewServer(opts, store, svc)
	require.NoError(t, err)
	t.Cleanup(func() { s.Stop() })

	return &testServer{Server: s, cmd: cmd, nl: nl, fs: fs, dir: dir}
}

func valueData(t *testing.T, resp Response) *state.Value {
	t.Helper()
	v, ok := resp.Data.(*state.Value)
	require.True(t, ok, "expected *state.Value, got %T", resp.Data)
	return v
}

func TestServerGetSet(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleSet("network.wired.method", "static")
	require.True(t, resp.Success, resp.Error)

	resp = s.handleGet("network.wired.method", nil)
	require.True(t, resp.Success)
	method, _ := valueData(t, resp).AsString()
	assert.Equal(t, "static", method)

	// set persists immediately
	reloaded := state.NewStore(s.opts.StoreOptions())
	require.NoError(t, reloaded.Initialize())
	method, _ = reloaded.Get("network.wired.method", nil).AsString()
	assert.Equal(t, "static", method)
}

func TestServerSetKeepsLargeIntegers(t *testing.T) {
	s := newTestServer(t)

	var req Request
	require.NoError(t, decodeRequest([]byte(`{"command":"set","path":"custom.id","value":9007199254740993}`), &req))
	resp := s.handleRequest(req)
	require.True(t, resp.Success, resp.Error)

	text, ok := s.store.Get("custom.id", nil).NumberText()
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", text)

	data, err := os.ReadFile(s.store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "9007199254740993")
}

func TestServerGetMissingPath(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleGet("network.nope", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindNotFound, resp.Code)

	resp = s.handleGet("network.nope", "fallback")
	require.True(t, resp.Success)
	assert.Equal(t, "fallback", resp.Data)
}

func TestServerGetEmptyPathReturnsDocument(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleGet("", nil)
	require.True(t, resp.Success)
	assert.True(t, valueData(t, resp).Equal(state.DefaultSchema()))
}

func TestServerSetRequiresPath(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleSet("", "x")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
}

func TestServerSetEmitsAndRecords(t *testing.T) {
	s := newTestServer(t)

	signals, unsubscribe := s.notifier.Subscribe(types.SignalConfigChanged)
	defer unsubscribe()

	resp := s.handleSet("basic.hostname", "studio")
	require.True(t, resp.Success)

	select {
	case sig := <-signals:
		assert.Equal(t, types.SignalConfigChanged, sig.Name)
	case <-time.After(time.Second):
		t.Fatal("no ConfigChanged signal")
	}

	require.NotNil(t, s.journal)
	records, err := s.journal.Recent(10, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "set", records[0].Command)
	assert.Contains(t, records[0].Detail, "basic.hostname")
}

func TestServerConfigSet(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleConfigSet(map[string]interface{}{
		"basic": map[string]interface{}{"hostname": "replaced"},
	})
	require.True(t, resp.Success, resp.Error)

	doc := valueData(t, s.handleConfigGet())
	hostname, _ := state.Lookup(doc, "basic.hostname", nil).AsString()
	assert.Equal(t, "replaced", hostname)
	// defaults are merged back in
	assert.NotNil(t, state.Lookup(doc, "network.wifi_ap.ssid", nil))

	resp = s.handleConfigSet([]interface{}{"not", "an", "object"})
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
}

func TestServerImport(t *testing.T) {
	s := newTestServer(t)

	text := `{"name":"x","config":{"basic":{"timezone":"Europe/Ljubljana"}}}`

	resp := s.handleImport(text, false)
	require.True(t, resp.Success)
	tz, _ := s.store.Get("basic.timezone", nil).AsString()
	assert.Equal(t, "UTC", tz, "dry run must not change the document")

	resp = s.handleImport(text, true)
	require.True(t, resp.Success)
	tz, _ = s.store.Get("basic.timezone", nil).AsString()
	assert.Equal(t, "Europe/Ljubljana", tz)

	resp = s.handleImport("{not json", true)
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
}

func TestServerExportDefaultName(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleExport("")
	require.True(t, resp.Success)
	profile, ok := resp.Data.(state.Profile)
	require.True(t, ok)
	assert.Equal(t, "export", profile.Name)
}

func TestServerProfiles(t *testing.T) {
	s := newTestServer(t)

	require.True(t, s.handleSet("basic.hostname", "stage").Success)
	require.True(t, s.handleProfileSave("stage").Success)
	require.True(t, s.handleSet("basic.hostname", "office").Success)

	resp := s.handleProfileList()
	require.True(t, resp.Success)
	assert.Equal(t, []string{"stage"}, resp.Data)

	require.True(t, s.handleProfileLoad("stage").Success)
	hostname, _ := s.store.Get("basic.hostname", nil).AsString()
	assert.Equal(t, "stage", hostname)

	require.True(t, s.handleProfileDelete("stage").Success)

	resp = s.handleProfileLoad("stage")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindNotFound, resp.Code)

	resp = s.handleProfileSave("../escape")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
}

func TestServerTvserverMissingFile(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleTvserverGet()
	require.True(t, resp.Success)
	assert.Equal(t, 0, valueData(t, resp).Len())
}

func TestServerHdmiSet(t *testing.T) {
	s := newTestServer(t)
	s.cmd.SetError("pkill", []string{"-HUP", system.AVServerProcess}, errors.New("exit status 1"))

	resp := s.handleHdmiSet(map[string]interface{}{
		"video": map[string]interface{}{"hdmi_source": "HDMI1"},
	})
	require.True(t, resp.Success, "AV server reload failure must not fail the request")
	assert.True(t, s.cmd.Ran("pkill", "-HUP", system.AVServerProcess))

	_, err := os.Stat(s.store.TvserverFile())
	require.NoError(t, err)

	resp = s.handleHdmiGet()
	require.True(t, resp.Success)
	hdmi := valueData(t, resp)
	source, _ := state.Lookup(hdmi, "video.hdmi_source", nil).AsString()
	assert.Equal(t, "HDMI1", source)
	rate, _ := state.Lookup(hdmi, "audio.sample_rate", nil).AsNumber()
	assert.Equal(t, float64(48000), rate)

	resp = s.handleHdmiSet("video")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
}

func TestServerBasicSetMirrorsIntoStore(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleBasicSet(map[string]interface{}{"hostname": "studio-box", "ntp": false})
	require.True(t, resp.Success, resp.Error)
	assert.True(t, s.cmd.Ran("hostnamectl", "set-hostname", "studio-box"))
	assert.True(t, s.cmd.Ran("timedatectl", "set-ntp", "false"))

	hostname, _ := s.store.Get("basic.hostname", nil).AsString()
	assert.Equal(t, "studio-box", hostname)
	assert.Nil(t, s.store.Get("basic.ntp", nil), "ntp flag is not a document key")
	server, _ := s.store.Get("basic.ntp_server", nil).AsString()
	assert.Equal(t, "pool.ntp.org", server)
}

// breakStoreFile swaps the persisted document for a directory so every
// later write fails.
func breakStoreFile(t *testing.T, s *testServer) {
	t.Helper()
	require.NoError(t, os.Remove(s.store.Path()))
	require.NoError(t, os.Mkdir(s.store.Path(), 0755))
}

func TestServerSetFailedSaveKeepsDocument(t *testing.T) {
	s := newTestServer(t)
	breakStoreFile(t, s)

	resp := s.handleSet("basic.hostname", "ghost")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindIOFailure, resp.Code)

	resp = s.handleGet("basic.hostname", nil)
	require.True(t, resp.Success)
	hostname, _ := valueData(t, resp).AsString()
	assert.Equal(t, "streambox", hostname)
}

func TestServerBasicSetFailedSaveKeepsDocument(t *testing.T) {
	s := newTestServer(t)
	breakStoreFile(t, s)

	resp := s.handleBasicSet(map[string]interface{}{"hostname": "studio-box"})
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindIOFailure, resp.Code)
	assert.True(t, s.cmd.Ran("hostnamectl", "set-hostname", "studio-box"))

	hostname, _ := s.store.Get("basic.hostname", nil).AsString()
	assert.Equal(t, "streambox", hostname)
}

func TestServerBasicSetInvalidHostname(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleBasicSet(map[string]interface{}{"hostname": "-bad"})
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
	assert.False(t, s.cmd.Ran("hostnamectl", "set-hostname", "-bad"))

	hostname, _ := s.store.Get("basic.hostname", nil).AsString()
	assert.Equal(t, "streambox", hostname)
}

func TestServerValidate(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleValidate(nil)
	assert.True(t, resp.Success, resp.Error)

	resp = s.handleValidate(map[string]interface{}{
		"network": map[string]interface{}{
			"wired": map[string]interface{}{
				"method":     "static",
				"ip_address": "192.168.1.10",
				"netmask":    "255.255.255.0",
				"gateway":    "not-an-ip",
			},
		},
	})
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
	assert.Contains(t, resp.Error, "gateway")
}

func TestServerMountRejectsEscapingDevice(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleMount("../etc/passwd")
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindInvalidInput, resp.Code)
	assert.Equal(t, 0, s.cmd.RunCalls)
}

func TestServerHistoryDefaultLimit(t *testing.T) {
	s := newTestServer(t)
	require.NotNil(t, s.journal)

	for i := 0; i < defaultHistoryQuery+10; i++ {
		require.NoError(t, s.journal.Record(types.SignalConfigChanged, "set", "basic.hostname"))
	}

	resp := s.handleHistory(0, nil)
	require.True(t, resp.Success, resp.Error)
	records, ok := resp.Data.([]types.ChangeRecord)
	require.True(t, ok)
	assert.Len(t, records, defaultHistoryQuery)
	assert.Greater(t, s.opts.HistoryLimit, defaultHistoryQuery)
}

func TestServerHistoryDisabled(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.DisableHistory = true })

	resp := s.handleHistory(0, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, state.KindOperationFailed, resp.Code)
}

func TestServerUnknownCommand(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(Request{Command: "commit"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown command")
}

func TestServerStatus(t *testing.T) {
	s := newTestServer(t)
	s.fs.Files["/proc/version"] = []byte("Linux version 6.6.0-streambox (gcc) #1 SMP\n")

	resp := s.handleStatus()
	require.True(t, resp.Success)
	status, ok := resp.Data.(types.DaemonStatus)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, "6.6.0-streambox", status.KernelVersion)
	assert.Equal(t, s.store.Path(), status.ConfigPath)
	assert.True(t, status.History)
}

func dialServer(t *testing.T, s *testServer) net.Conn {
	t.Helper()
	var conn net.Conn
	require.Eventually(t, func() bool {
		var err error
		conn, err = net.Dial("unix", s.opts.SocketPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func roundTrip(t *testing.T, s *testServer, req Request) Response {
	t.Helper()
	conn := dialServer(t, s)
	defer conn.Close()

	require.NoError(t, json.NewEncoder(conn).Encode(req))

	var resp Response
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	return resp
}

func TestServerSocketRoundTrip(t *testing.T) {
	s := newTestServer(t)
	go s.Start()

	resp := roundTrip(t, s, Request{Command: "set", Path: "network.wired.mtu", Value: 1400})
	require.True(t, resp.Success, resp.Error)

	resp = roundTrip(t, s, Request{Command: "get", Path: "network.wired.mtu"})
	require.True(t, resp.Success)
	assert.Equal(t, float64(1400), resp.Data)

	resp = roundTrip(t, s, Request{Command: "profile-load", Name: "missing"})
	assert.False(t, resp.Success)
	assert.Equal(t, "NotFound", resp.Code)
}

func TestServerMonitorStreamsSignals(t *testing.T) {
	s := newTestServer(t)
	go s.Start()

	conn := dialServer(t, s)
	defer conn.Close()
	require.NoError(t, json.NewEncoder(conn).Encode(Request{Command: "monitor"}))

	require.Eventually(t, func() bool { return s.notifier.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := roundTrip(t, s, Request{Command: "profile-save", Name: "p1"})
	require.True(t, resp.Success)
	resp = roundTrip(t, s, Request{Command: "profile-load", Name: "p1"})
	require.True(t, resp.Success)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var sig types.Signal
	require.NoError(t, json.Unmarshal(line, &sig))
	assert.Equal(t, types.SignalConfigChanged, sig.Name)
}

func TestServerStopRemovesSocket(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Stop())

	_, err := os.Stat(s.opts.SocketPath)
	assert.True(t, os.IsNotExist(err))
	// second Stop is a no-op
	require.NoError(t, s.Stop())
}
