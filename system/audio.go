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
	"regexp"
	"strings"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/types"
)

// "card 0: AMLAUGESOUND [AML-AUGESOUND], device 1: TDM-B-dummy-alsaPORT-i2s multicodec-1 []"
var cardLine = regexp.MustCompile(`^card (\d+): ([^,]*), device (\d+):`)

// AudioManager enumerates ALSA PCM devices.
type AudioManager struct {
	cmd CommandRunner
}

// NewAudioManager creates an AudioManager with the given command runner.
func NewAudioManager(cmd CommandRunner) *AudioManager {
	return &AudioManager{cmd: cmd}
}

// Devices lists playback devices (aplay -l) and capture devices (arecord -l).
// A tool that fails contributes an empty list.
func (a *AudioManager) Devices(ctx context.Context) types.AudioDevices {
	return types.AudioDevices{
		Playback: a.list(ctx, "aplay"),
		Capture:  a.list(ctx, "arecord"),
	}
}

func (a *AudioManager) list(ctx context.Context, tool string) []types.AudioDevice {
	out, err := a.cmd.Run(ctx, tool, "-l")
	if err != nil {
		log.Warn("Failed to list audio devices",
			logger.Field{Key: "tool", Value: tool},
			logger.Field{Key: "error", Value: err.Error()})
		return []types.AudioDevice{}
	}
	return parseAudioDevices(string(out))
}

func parseAudioDevices(output string) []types.AudioDevice {
	devices := []types.AudioDevice{}
	for _, line := range strings.Split(output, "\n") {
		match := cardLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		name := match[2]
		if idx := strings.Index(name, "["); idx >= 0 {
			name = name[:idx]
		}

		devices = append(devices, types.AudioDevice{
			Address:     "hw:" + match[1] + "," + match[3],
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(line),
		})
	}
	return devices
}
