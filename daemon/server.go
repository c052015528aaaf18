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

// Package daemon implements the settings daemon server and IPC protocol.
package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/system"
	"github.com/we-are-mono/streambox-settings/types"
)

const logHistorySize = 500

var log = logger.For("server")

// handlerFunc is a function that handles a daemon command
type handlerFunc func(Request) Response

// Services groups the host facilities the daemon drives.
type Services struct {
	Basic      *system.BasicManager
	Network    *system.NetworkInspector
	Audio      *system.AudioManager
	Storage    *system.StorageManager
	AVServer   *system.AVServer
	Netlink    system.NetlinkClient
	Filesystem system.FilesystemClient
}

// DefaultServices builds Services backed by the real system. Commands are
// killed after timeout.
func DefaultServices(timeout time.Duration) Services {
	cmd := system.NewDefaultCommandRunner(timeout)
	nl := system.NewDefaultNetlinkClient()
	fs := system.NewDefaultFilesystemClient()

	return Services{
		Basic:      system.NewBasicManager(cmd),
		Network:    system.NewNetworkInspector(nl, fs),
		Audio:      system.NewAudioManager(cmd),
		Storage:    system.NewStorageManager(cmd, fs),
		AVServer:   system.NewAVServer(cmd),
		Netlink:    nl,
		Filesystem: fs,
	}
}

// Server accepts client connections on a Unix socket and dispatches their
// requests to the settings store and system services.
type Server struct {
	opts     *Options
	store    *state.Store
	svc      Services
	listener net.Listener
	done     chan struct{}
	handlers map[string]handlerFunc

	notifier   *Notifier
	journal    *Journal
	logHistory *LogHistory

	// dispatch serialises handlers; the store has no locks of its own
	dispatch sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	stopOnce  sync.Once
}

// NewServer creates the listening socket and the change history.
// A history that cannot be opened is logged and disabled.
func NewServer(opts *Options, store *state.Store, svc Services) (*Server, error) {
	os.Remove(opts.SocketPath)

	listener, err := net.Listen("unix", opts.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	if err := os.Chmod(opts.SocketPath, 0666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:       opts,
		store:      store,
		svc:        svc,
		listener:   listener,
		done:       make(chan struct{}),
		notifier:   NewNotifier(),
		logHistory: NewLogHistory(logHistorySize),
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}

	if !opts.DisableHistory {
		journal, err := OpenJournal(opts.HistoryFile, opts.HistoryLimit)
		if err != nil {
			log.Warn("Change history disabled",
				logger.Field{Key: "path", Value: opts.HistoryFile},
				logger.Field{Key: "error", Value: err.Error()})
		} else {
			s.journal = journal
		}
	}

	// Initialize command handlers
	s.handlers = map[string]handlerFunc{
		"status":         func(req Request) Response { return s.handleStatus() },
		"get":            func(req Request) Response { return s.handleGet(req.Path, req.Value) },
		"set":            func(req Request) Response { return s.handleSet(req.Path, req.Value) },
		"config-get":     func(req Request) Response { return s.handleConfigGet() },
		"config-set":     func(req Request) Response { return s.handleConfigSet(req.Value) },
		"save":           func(req Request) Response { return s.handleSave() },
		"reload":         func(req Request) Response { return s.handleReload() },
		"export":         func(req Request) Response { return s.handleExport(req.Name) },
		"import":         func(req Request) Response { return s.handleImport(req.Text, req.Apply) },
		"validate":       func(req Request) Response { return s.handleValidate(req.Value) },
		"profile-list":   func(req Request) Response { return s.handleProfileList() },
		"profile-save":   func(req Request) Response { return s.handleProfileSave(req.Name) },
		"profile-load":   func(req Request) Response { return s.handleProfileLoad(req.Name) },
		"profile-delete": func(req Request) Response { return s.handleProfileDelete(req.Name) },
		"tvserver-get":   func(req Request) Response { return s.handleTvserverGet() },
		"tvserver-set":   func(req Request) Response { return s.handleTvserverSet(req.Value) },
		"hdmi-get":       func(req Request) Response { return s.handleHdmiGet() },
		"hdmi-set":       func(req Request) Response { return s.handleHdmiSet(req.Value) },
		"basic-get":      func(req Request) Response { return s.handleBasicGet() },
		"basic-set":      func(req Request) Response { return s.handleBasicSet(req.Value) },
		"timezones":      func(req Request) Response { return s.handleTimezones() },
		"locales":        func(req Request) Response { return s.handleLocales() },
		"network-status": func(req Request) Response { return s.handleNetworkStatus() },
		"audio-devices":  func(req Request) Response { return s.handleAudioDevices() },
		"storage-info":   func(req Request) Response { return s.handleStorageInfo() },
		"mount":          func(req Request) Response { return s.handleMount(req.Device) },
		"unmount":        func(req Request) Response { return s.handleUnmount(req.Device) },
		"history":        func(req Request) Response { return s.handleHistory(req.Limit, req.Signals) },
	}

	return s, nil
}

// Start loads the store, starts the network observer and serves
// connections until Stop is called.
func (s *Server) Start() error {
	if err := s.store.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize settings store: %w", err)
	}

	if emitter := logger.GetEmitter(); emitter != nil {
		emitter.Subscribe(s.logHistory)
	}

	if !s.opts.DisableObserver && s.svc.Netlink != nil {
		s.startObserver()
	}

	log.Info("Daemon listening", logger.Field{Key: "socket", Value: s.opts.SocketPath})

	// Accept connections
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if we're shutting down
			select {
			case <-s.done:
				return nil
			default:
				log.Error("Failed to accept connection",
					logger.Field{Key: "error", Value: err.Error()})
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) startObserver() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.store.AddWatcher(cancel)

	observer := NewNetworkObserver(s.svc.Netlink, time.Duration(s.opts.ObserverDebounce), s.onNetworkChange)
	go func() {
		if err := observer.Run(ctx); err != nil {
			log.Warn("Network observer stopped",
				logger.Field{Key: "error", Value: err.Error()})
		}
	}()
}

func (s *Server) onNetworkChange() {
	var payload interface{}
	if s.svc.Network != nil {
		if status, err := s.svc.Network.Status(); err == nil {
			payload = status
		}
	}
	s.emit(types.SignalNetworkConfigChanged, "netlink", payload)
}

// Stop closes the listener, cancels watchers and removes the socket.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}

		s.dispatch.Lock()
		s.store.Cleanup()
		s.dispatch.Unlock()
		s.cancel()

		if emitter := logger.GetEmitter(); emitter != nil {
			emitter.Unsubscribe(s.logHistory)
		}
		if s.journal != nil {
			if err := s.journal.Close(); err != nil {
				log.Warn("Failed to close change history",
					logger.Field{Key: "error", Value: err.Error()})
			}
		}
		os.Remove(s.opts.SocketPath)
	})
	return nil
}

// Notifier returns the signal notifier
func (s *Server) Notifier() *Notifier { return s.notifier }

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		return
	}

	var req Request
	if err := decodeRequest(data, &req); err != nil {
		s.sendResponse(conn, Response{
			Success: false,
			Error:   fmt.Sprintf("invalid request: %v", err),
			Code:    state.KindInvalidInput,
		})
		return
	}

	// Streaming commands keep the connection open
	switch req.Command {
	case "logs":
		filter := req.LogFilter
		if filter == nil {
			filter = &LogFilter{}
		}
		s.handleLogsSubscribe(conn, filter)
		return
	case "monitor":
		s.handleMonitor(conn, req.Signals)
		return
	}

	resp := s.handleRequest(req)
	s.sendResponse(conn, resp)
}

// decodeRequest keeps numbers in the request value as json.Number so large
// integers reach the store unchanged.
func decodeRequest(data []byte, req *Request) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(req)
}

func (s *Server) handleRequest(req Request) Response {
	handler, exists := s.handlers[req.Command]
	if !exists {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s", req.Command),
			Code:    state.KindInvalidInput,
		}
	}

	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	log.Debug("Handling request", logger.Field{Key: "command", Value: req.Command})
	return handler(req)
}

func (s *Server) sendResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error("Failed to marshal response",
			logger.Field{Key: "error", Value: err.Error()})
		return
	}

	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		log.Error("Failed to write response",
			logger.Field{Key: "error", Value: err.Error()})
	}
}

// emit signals monitor clients and records the change
func (s *Server) emit(signal, command string, payload interface{}) {
	s.notifier.Emit(signal, payload)

	if s.journal == nil {
		return
	}
	detail := ""
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			detail = string(data)
		}
	}
	if err := s.journal.Record(signal, command, detail); err != nil {
		log.Warn("Failed to record change",
			logger.Field{Key: "signal", Value: signal},
			logger.Field{Key: "error", Value: err.Error()})
	}
}

func errorResponse(err error) Response {
	return Response{Success: false, Error: err.Error(), Code: errorCode(err)}
}

func errorCode(err error) string {
	if errors.Is(err, system.ErrInvalidSetting) || errors.Is(err, system.ErrInvalidDevice) {
		return state.KindInvalidInput
	}
	return state.ErrorKind(err)
}

// waitForDisconnect closes the returned channel once the client hangs up.
func waitForDisconnect(conn net.Conn) <-chan struct{} {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		buffer := make([]byte, 1)
		for {
			if _, err := conn.Read(buffer); err != nil {
				return
			}
		}
	}()
	return gone
}

// handleLogsSubscribe replays the requested tail and then streams log
// entries until the client disconnects
func (s *Server) handleLogsSubscribe(conn net.Conn, filter *LogFilter) {
	// Get the global logger emitter
	emitter := logger.GetEmitter()
	if emitter == nil {
		s.sendResponse(conn, Response{Success: false, Error: "log streaming unavailable", Code: state.KindOperationFailed})
		log.Error("Logger emitter not initialized")
		return
	}

	// Create socket subscriber with filter
	subscriber := NewSocketLogSubscriber(conn, filter)
	if filter.Tail > 0 {
		for _, entry := range s.logHistory.Tail(filter.Tail, filter) {
			if err := subscriber.OnLogEvent(entry); err != nil {
				return
			}
		}
	}

	// Subscribe to log events
	emitter.Subscribe(subscriber)
	defer func() {
		emitter.Unsubscribe(subscriber)
		subscriber.Close()
	}()

	log.Info("Client subscribed to log stream",
		logger.Field{Key: "level", Value: filter.Level},
		logger.Field{Key: "component", Value: filter.Component})

	select {
	case <-waitForDisconnect(conn):
		log.Info("Client unsubscribed from log stream")
	case <-s.done:
	}
}

// handleMonitor streams change signals until the client disconnects
func (s *Server) handleMonitor(conn net.Conn, signals []string) {
	ch, unsubscribe := s.notifier.Subscribe(signals...)
	defer unsubscribe()

	log.Info("Client subscribed to signals",
		logger.Field{Key: "signals", Value: fmt.Sprintf("%v", signals)})

	gone := waitForDisconnect(conn)
	for {
		select {
		case sig, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(sig)
			if err != nil {
				continue
			}
			if _, err := conn.Write(append(data, '\n')); err != nil {
				return
			}
		case <-gone:
			log.Info("Client unsubscribed from signals")
			return
		case <-s.done:
			return
		}
	}
}
