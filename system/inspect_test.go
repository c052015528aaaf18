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

package system

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"zero duration", 0, "0m"},
		{"only minutes", 45 * time.Minute, "45m"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2h 30m"},
		{"days hours and minutes", 3*24*time.Hour + 5*time.Hour + 15*time.Minute, "3d 5h 15m"},
		{"exact hours", 5 * time.Hour, "5h 0m"},
		{"exact days", 2 * 24 * time.Hour, "2d 0h 0m"},
		{"23 hours 59 minutes", 23*time.Hour + 59*time.Minute, "23h 59m"},
		{"seconds are truncated", 1*time.Minute + 30*time.Second, "1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.duration))
		})
	}
}

func TestGetSystemInfo(t *testing.T) {
	fs := NewMockFilesystemClient()
	fs.Files["/proc/version"] = []byte("Linux version 6.1.55-streambox (builder@ci) (gcc 12.2.0) #1 SMP PREEMPT\n")
	fs.Files["/proc/uptime"] = []byte("93784.52 180000.10\n")

	info := GetSystemInfo(fs)

	assert.Equal(t, "6.1.55-streambox", info.KernelVersion)
	assert.Equal(t, "1d 2h 3m", info.Uptime)
	assert.NotEmpty(t, info.Hostname)
}

func TestGetSystemInfo_MissingProcFiles(t *testing.T) {
	fs := NewMockFilesystemClient()
	fs.ReadFileError = errors.New("permission denied")

	info := GetSystemInfo(fs)

	assert.Empty(t, info.KernelVersion)
	assert.Empty(t, info.Uptime)
}
