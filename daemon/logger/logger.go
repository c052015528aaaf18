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

// Package logger provides structured logging for the settings daemon.
//
// Entries carry a component name (store, server, observer, system, ...)
// and are fanned out to every configured backend and to the emitter that
// feeds "logs watch" subscribers. Packages take a component logger with
// For and log through it; the global Info/Warn/... helpers use the default
// component from Init.
package logger

import (
	"fmt"
	"os"
	"strings"
)

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger // Create child logger with preset fields
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// Backend is the interface for log output backends
type Backend interface {
	Write(entry *Entry) error
	Close() error
}

// Config holds logger configuration
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // text, json
	Component string // Default component name
}

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name to a LogLevel. Unknown names map to info.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the string representation of a LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// standardLogger is the default implementation of Logger. It is never
// mutated after construction; With returns a new value.
type standardLogger struct {
	level     LogLevel
	backends  []Backend
	emitter   *Emitter
	component string
	fields    map[string]interface{}
}

// New creates a new logger with the given configuration and backends
func New(config Config, backends []Backend, emitter *Emitter) Logger {
	return newStandardLogger(config, backends, emitter)
}

func newStandardLogger(config Config, backends []Backend, emitter *Emitter) *standardLogger {
	return &standardLogger{
		level:     ParseLevel(config.Level),
		backends:  backends,
		emitter:   emitter,
		component: config.Component,
		fields:    map[string]interface{}{},
	}
}

func (l *standardLogger) Debug(msg string, fields ...Field) {
	l.log(l.component, LevelDebug, msg, fields)
}

func (l *standardLogger) Info(msg string, fields ...Field) {
	l.log(l.component, LevelInfo, msg, fields)
}

func (l *standardLogger) Warn(msg string, fields ...Field) {
	l.log(l.component, LevelWarn, msg, fields)
}

func (l *standardLogger) Error(msg string, fields ...Field) {
	l.log(l.component, LevelError, msg, fields)
}

// With creates a child logger with preset fields. A "component" field
// renames the child's component instead of becoming a field.
func (l *standardLogger) With(fields ...Field) Logger {
	child := &standardLogger{
		level:     l.level,
		backends:  l.backends,
		emitter:   l.emitter,
		component: l.component,
		fields:    make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for _, f := range fields {
		if name, ok := f.Value.(string); ok && f.Key == "component" {
			child.component = name
			continue
		}
		child.fields[f.Key] = f.Value
	}
	return child
}

func (l *standardLogger) log(component string, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	entry := NewEntry(level.String(), component, msg, merged)
	for _, backend := range l.backends {
		if err := backend.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Logger backend error: %v\n", err)
		}
	}

	if l.emitter != nil {
		l.emitter.Emit(entry)
	}
}

// componentLogger tags entries with a fixed component and writes through
// whatever global logger is installed at call time.
type componentLogger struct {
	component string
	fields    []Field
}

// For returns a logger for component. It may be created before Init and
// is silent while no global logger is installed.
func For(component string) Logger {
	return componentLogger{component: component}
}

func (c componentLogger) Debug(msg string, fields ...Field) { c.log(LevelDebug, msg, fields) }
func (c componentLogger) Info(msg string, fields ...Field)  { c.log(LevelInfo, msg, fields) }
func (c componentLogger) Warn(msg string, fields ...Field)  { c.log(LevelWarn, msg, fields) }
func (c componentLogger) Error(msg string, fields ...Field) { c.log(LevelError, msg, fields) }

func (c componentLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(c.fields)+len(fields))
	preset = append(preset, c.fields...)
	return componentLogger{component: c.component, fields: append(preset, fields...)}
}

func (c componentLogger) log(level LogLevel, msg string, fields []Field) {
	l := std
	if l == nil {
		return
	}
	if len(c.fields) > 0 {
		fields = append(append([]Field{}, c.fields...), fields...)
	}
	l.log(c.component, level, msg, fields)
}

var (
	std            *standardLogger
	globalEmitter  *Emitter
	globalBackends []Backend
)

// Init installs the global logger
func Init(config Config, backends []Backend, emitter *Emitter) {
	globalEmitter = emitter
	globalBackends = backends
	std = newStandardLogger(config, backends, emitter)
}

// Shutdown closes the backends of the global logger and disables it
func Shutdown() {
	for _, backend := range globalBackends {
		if err := backend.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Logger backend close error: %v\n", err)
		}
	}
	std = nil
	globalEmitter = nil
	globalBackends = nil
}

// GetEmitter returns the global emitter for log stream subscribers
func GetEmitter() *Emitter {
	return globalEmitter
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	if l := std; l != nil {
		l.Debug(msg, fields...)
	}
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	if l := std; l != nil {
		l.Info(msg, fields...)
	}
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	if l := std; l != nil {
		l.Warn(msg, fields...)
	}
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	if l := std; l != nil {
		l.Error(msg, fields...)
	}
}
