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

// LogFilter defines filtering criteria for log streaming
type LogFilter struct {
	Level     string `json:"level,omitempty"`     // Filter by log level (debug, info, warn, error, alert)
	Component string `json:"component,omitempty"` // Filter by component name
	Tail      int    `json:"tail,omitempty"`      // Show last N log entries before streaming (0 = no tail)
}

// Request represents a command sent to the daemon
type Request struct {
	Value     interface{} `json:"value,omitempty"`
	Command   string      `json:"command"`           // see Server.handlers for the command set
	Path      string      `json:"path,omitempty"`    // dotted path for get/set
	Name      string      `json:"name,omitempty"`    // profile name, or export label
	Text      string      `json:"text,omitempty"`    // serialized document for import
	Apply     bool        `json:"apply,omitempty"`   // import: adopt instead of dry-run
	Device    string      `json:"device,omitempty"`  // mount/unmount target
	Limit     int         `json:"limit,omitempty"`   // history: max records
	Signals   []string    `json:"signals,omitempty"` // monitor: signal names to receive (empty = all)
	LogFilter *LogFilter  `json:"log_filter,omitempty"`
}

// Response represents the daemon's response
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"` // NotFound, InvalidInput, IOFailure, OperationFailed
	Success bool        `json:"success"`
}
