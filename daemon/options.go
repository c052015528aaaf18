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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/we-are-mono/streambox-settings/state"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOptionsPath is where the daemon looks for its options file
	DefaultOptionsPath = "/etc/streambox-settings/daemon.yaml"

	defaultSocketPath       = "/var/run/streambox-settings.sock"
	defaultTvserverFile     = "/etc/streambox-tv/config.json"
	defaultHistoryFile      = "history.db"
	defaultHistoryLimit     = 500
	defaultCommandTimeout   = 30 * time.Second
	defaultObserverDebounce = 2 * time.Second
)

// GetSocketPath returns the socket path, preferring STREAMBOX_SOCKET_PATH env var
func GetSocketPath() string {
	if path := os.Getenv("STREAMBOX_SOCKET_PATH"); path != "" {
		return path
	}
	return defaultSocketPath
}

// Duration is a time.Duration written as "30s", "1m" in the options file.
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", node.Line, err)
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LoggingOptions selects the daemon log sinks.
type LoggingOptions struct {
	Level    string `yaml:"level"`  // debug, info, warn, error
	Format   string `yaml:"format"` // json or text
	File     string `yaml:"file,omitempty"`
	Journald bool   `yaml:"journald"`
}

// Options configures the daemon. Unset fields take their defaults.
type Options struct {
	SocketPath       string         `yaml:"socket_path"`
	ConfigDir        string         `yaml:"config_dir"`
	TvserverFile     string         `yaml:"tvserver_file"`
	HistoryFile      string         `yaml:"history_file"`  // empty: <config_dir>/history.db
	HistoryLimit     int            `yaml:"history_limit"` // records kept, 0 keeps all
	DisableHistory   bool           `yaml:"disable_history"`
	DisableObserver  bool           `yaml:"disable_observer"`
	CommandTimeout   Duration       `yaml:"command_timeout"`
	ObserverDebounce Duration       `yaml:"observer_debounce"`
	Logging          LoggingOptions `yaml:"logging"`
}

// DefaultOptions returns the built-in daemon options.
func DefaultOptions() *Options {
	return &Options{
		SocketPath:       GetSocketPath(),
		ConfigDir:        state.GetConfigDir(),
		TvserverFile:     defaultTvserverFile,
		HistoryLimit:     defaultHistoryLimit,
		CommandTimeout:   Duration(defaultCommandTimeout),
		ObserverDebounce: Duration(defaultObserverDebounce),
		Logging: LoggingOptions{
			Level:    "info",
			Format:   "json",
			Journald: true,
		},
	}
}

// LoadOptions reads the options file at path over the defaults. A missing
// file is not an error. STREAMBOX_SOCKET_PATH and STREAMBOX_CONFIG_DIR
// override the file.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if v := os.Getenv("STREAMBOX_SOCKET_PATH"); v != "" {
		opts.SocketPath = v
	}
	if v := os.Getenv("STREAMBOX_CONFIG_DIR"); v != "" {
		opts.ConfigDir = v
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options in %s: %w", path, err)
	}
	return opts, nil
}

// Validate checks option values and fills derived defaults.
func (o *Options) Validate() error {
	if o.SocketPath == "" {
		return fmt.Errorf("socket_path cannot be empty")
	}
	if o.ConfigDir == "" {
		return fmt.Errorf("config_dir cannot be empty")
	}
	if o.TvserverFile == "" {
		o.TvserverFile = defaultTvserverFile
	}
	if o.HistoryLimit < 0 {
		return fmt.Errorf("history_limit cannot be negative: %d", o.HistoryLimit)
	}
	if o.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive")
	}
	if o.ObserverDebounce < 0 {
		return fmt.Errorf("observer_debounce cannot be negative")
	}
	if o.HistoryFile == "" {
		o.HistoryFile = filepath.Join(o.ConfigDir, defaultHistoryFile)
	}
	return nil
}

// StoreOptions returns the settings store configuration.
func (o *Options) StoreOptions() state.Options {
	return state.Options{Dir: o.ConfigDir, TvserverFile: o.TvserverFile}
}
