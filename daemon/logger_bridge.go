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
	"net"
	"strings"
	"sync"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

// SocketLogSubscriber writes log events to a Unix socket connection
type SocketLogSubscriber struct {
	conn   net.Conn
	filter *LogFilter
	mu     sync.Mutex
	closed bool
}

// NewSocketLogSubscriber creates a subscriber that streams logs to a client socket
func NewSocketLogSubscriber(conn net.Conn, filter *LogFilter) *SocketLogSubscriber {
	return &SocketLogSubscriber{
		conn:   conn,
		filter: filter,
	}
}

// OnLogEvent writes the log entry to the socket if it matches the filter
func (s *SocketLogSubscriber) OnLogEvent(entry *logger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.filter.matches(entry) {
		return nil
	}

	logEventJSON, err := entry.ToJSON()
	if err != nil {
		return err
	}

	// Write JSON line to socket
	if _, err := s.conn.Write(append(logEventJSON, '\n')); err != nil {
		s.closed = true
		return err
	}

	return nil
}

// Close marks the subscriber as closed
func (s *SocketLogSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (f *LogFilter) matches(entry *logger.Entry) bool {
	if f == nil {
		return true
	}
	if f.Level != "" && !strings.EqualFold(entry.Level, f.Level) {
		return false
	}
	if f.Component != "" && entry.Component != f.Component {
		return false
	}
	return true
}

// LogHistory keeps the most recent log entries for tail requests.
type LogHistory struct {
	entries []*logger.Entry
	size    int
	next    int
	full    bool
	mu      sync.Mutex
}

// NewLogHistory creates a ring of the given capacity
func NewLogHistory(size int) *LogHistory {
	return &LogHistory{entries: make([]*logger.Entry, size), size: size}
}

// OnLogEvent stores the entry, evicting the oldest when full
func (h *LogHistory) OnLogEvent(entry *logger.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size == 0 {
		return nil
	}
	h.entries[h.next] = entry
	h.next = (h.next + 1) % h.size
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Tail returns up to n of the newest entries matching filter, oldest first
func (h *LogHistory) Tail(n int, filter *LogFilter) []*logger.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := h.next
	if h.full {
		count = h.size
	}

	var matched []*logger.Entry
	for i := 1; i <= count && len(matched) < n; i++ {
		entry := h.entries[(h.next-i+h.size)%h.size]
		if filter.matches(entry) {
			matched = append(matched, entry)
		}
	}

	// matched is newest first
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}
