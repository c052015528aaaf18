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

// Package system provides low-level system integration for host settings, network status, audio and storage.
package system

import (
	"context"
	"fmt"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

// AVServerProcess is the process name of the AV server.
const AVServerProcess = "streambox-tv"

// AVServer signals the running AV server.
type AVServer struct {
	cmd CommandRunner
}

// NewAVServer creates an AVServer with the given command runner.
func NewAVServer(cmd CommandRunner) *AVServer {
	return &AVServer{cmd: cmd}
}

// Reload asks the AV server to re-read its configuration (SIGHUP).
// pkill exits non-zero when no process matched.
func (a *AVServer) Reload(ctx context.Context) error {
	if _, err := a.cmd.Run(ctx, "pkill", "-HUP", AVServerProcess); err != nil {
		log.Warn("Failed to signal AV server",
			logger.Field{Key: "process", Value: AVServerProcess},
			logger.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("failed to signal %s: %w", AVServerProcess, err)
	}
	log.Info("Signalled AV server to reload", logger.Field{Key: "process", Value: AVServerProcess})
	return nil
}
