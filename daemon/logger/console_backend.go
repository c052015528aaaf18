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
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// ConsoleBackend writes log entries to a terminal through hclog.
// Used when the daemon runs in the foreground.
type ConsoleBackend struct {
	log hclog.Logger
}

// NewConsoleBackend creates a console backend writing to w
func NewConsoleBackend(w io.Writer, name, format string) *ConsoleBackend {
	return &ConsoleBackend{
		log: hclog.New(&hclog.LoggerOptions{
			Name:       name,
			Output:     w,
			Level:      hclog.Trace, // filtering happens in the logger itself
			JSONFormat: format == "json",
		}),
	}
}

// Write forwards the entry to hclog at the matching level
func (b *ConsoleBackend) Write(entry *Entry) error {
	args := make([]interface{}, 0, 2+2*len(entry.Fields))
	if entry.Component != "" {
		args = append(args, "component", entry.Component)
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, k, entry.Fields[k])
	}

	switch entry.Level {
	case "debug":
		b.log.Debug(entry.Message, args...)
	case "warn":
		b.log.Warn(entry.Message, args...)
	case "error":
		b.log.Error(entry.Message, args...)
	default:
		b.log.Info(entry.Message, args...)
	}
	return nil
}

// Close is a no-op; the writer is owned by the caller
func (b *ConsoleBackend) Close() error {
	return nil
}
