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

package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	defaultConfigBasePath = "/var/lib/streambox-settings"
	defaultTvserverPath   = "/etc/streambox-tv/config.json"
)

// GetConfigDir returns the store directory.
// Checks STREAMBOX_CONFIG_DIR environment variable, falls back to /var/lib/streambox-settings
func GetConfigDir() string {
	if dir := os.Getenv("STREAMBOX_CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigBasePath
}

// ReadDocument reads and parses a JSON document.
// A missing file is reported with an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadDocument(path string) (*Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrStorage, path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidInput, path, err)
	}
	return doc, nil
}

// WriteDocument writes v as indented JSON.
// Writes atomically (temp file + rename) so readers never see a partial document.
func WriteDocument(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %w", ErrStorage, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to rename temp file: %w", ErrStorage, err)
	}

	return nil
}

// getLineCol calculates the line and column number for a byte offset in JSON data
func getLineCol(data []byte, offset int64) (line, col int) {
	line = 1
	col = 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// UnmarshalJSON unmarshals JSON data with enhanced error reporting.
// Numbers decoded into interface values are kept as json.Number.
func UnmarshalJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(v)
	if err == nil {
		if _, extra := dec.Token(); extra != io.EOF {
			line, col := getLineCol(data, dec.InputOffset())
			return fmt.Errorf("JSON syntax error at line %d, column %d: unexpected data after top-level value", line, col)
		}
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := getLineCol(data, syntaxErr.Offset)
		return fmt.Errorf("JSON syntax error at line %d, column %d: %w", line, col, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("JSON syntax error: unexpected end of input")
	}
	return err
}
