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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend appends log entries to a file, one per line
type FileBackend struct {
	path   string
	format string // "json" or "text"
	file   *os.File
	mu     sync.Mutex
}

// NewFileBackend opens path for appending, creating its directory
func NewFileBackend(path string, format string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileBackend{path: path, format: format, file: file}, nil
}

// Write appends the rendered entry to the file
func (b *FileBackend) Write(entry *Entry) error {
	line, err := entry.Render(b.format)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.file == nil {
		return errors.New("log file is closed")
	}
	if _, err := b.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write to %s: %w", b.path, err)
	}
	return nil
}

// Close closes the log file. Later writes fail.
func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}
