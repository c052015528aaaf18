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
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// SystemInfo holds general system information
type SystemInfo struct {
	Hostname      string `json:"hostname"`
	KernelVersion string `json:"kernel_version"`
	Uptime        string `json:"uptime"`
}

// GetSystemInfo gathers hostname, kernel version and uptime.
func GetSystemInfo(fs FilesystemClient) SystemInfo {
	info := SystemInfo{}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	// "Linux version 6.1.0 (...)"
	if data, err := fs.ReadFile("/proc/version"); err == nil {
		parts := strings.Fields(string(data))
		if len(parts) >= 3 {
			info.KernelVersion = parts[2]
		}
	}

	if data, err := fs.ReadFile("/proc/uptime"); err == nil {
		fields := strings.Fields(string(data))
		if len(fields) >= 1 {
			if seconds, err := strconv.ParseFloat(fields[0], 64); err == nil {
				info.Uptime = FormatDuration(time.Duration(seconds * float64(time.Second)))
			}
		}
	}

	return info
}

// FormatDuration renders d as "1d 2h 3m", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
