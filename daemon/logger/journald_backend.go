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
	"fmt"
	"os/exec"
	"sync"
)

// journalPriority maps log levels to syslog priorities for systemd-cat -p
var journalPriority = map[string]string{
	"debug": "7",
	"info":  "6",
	"warn":  "4",
	"error": "3",
}

// JournaldBackend writes log entries to the systemd journal via systemd-cat
type JournaldBackend struct {
	identifier string // syslog identifier passed to systemd-cat -t
	format     string // "json" or "text"
	mu         sync.Mutex
}

// NewJournaldBackend returns an error when systemd-cat is not installed
func NewJournaldBackend(identifier, format string) (*JournaldBackend, error) {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return nil, fmt.Errorf("systemd-cat not found: %w", err)
	}
	return &JournaldBackend{identifier: identifier, format: format}, nil
}

// Write sends one entry to the journal at the entry's priority
func (b *JournaldBackend) Write(entry *Entry) error {
	line, err := entry.Render(b.format)
	if err != nil {
		return err
	}

	priority, ok := journalPriority[entry.Level]
	if !ok {
		priority = journalPriority["info"]
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cmd := exec.Command("systemd-cat", "-t", b.identifier, "-p", priority)
	cmd.Stdin = bytes.NewReader(line)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	return nil
}

// Close is a no-op for the journald backend
func (b *JournaldBackend) Close() error {
	return nil
}
