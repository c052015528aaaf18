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

// Package types defines the data structures exchanged between the settings
// daemon, its system adapters and the CLI.
package types

// BasicSettings holds the host identity settings managed through systemd tools.
// Empty fields are left untouched when applying.
type BasicSettings struct {
	Hostname string `json:"hostname,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Locale   string `json:"locale,omitempty"`
	NTP      *bool  `json:"ntp,omitempty"` // nil means "do not change"
}

// InterfaceStatus describes the runtime state of a network link
type InterfaceStatus struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	State     string   `json:"state"` // up, down, unknown
	MAC       string   `json:"mac,omitempty"`
	Addresses []string `json:"addresses,omitempty"` // CIDR notation
	MTU       int      `json:"mtu"`
}

// NetworkStatus is the aggregate network view reported to clients
type NetworkStatus struct {
	Interfaces     []InterfaceStatus `json:"interfaces"`
	DefaultGateway string            `json:"default_gateway,omitempty"`
	GatewayDevice  string            `json:"gateway_device,omitempty"`
	DNSServers     []string          `json:"dns_servers,omitempty"`
}

// AudioDevice is an ALSA PCM device as reported by aplay/arecord
type AudioDevice struct {
	Address     string `json:"address"` // hw:CARD,DEVICE
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AudioDevices groups playback and capture devices
type AudioDevices struct {
	Playback []AudioDevice `json:"playback"`
	Capture  []AudioDevice `json:"capture"`
}

// Filesystem describes a mounted block device
type Filesystem struct {
	Device     string `json:"device"`
	MountPoint string `json:"mount_point"`
	FSType     string `json:"fstype"`
	Label      string `json:"label"`
	Size       uint64 `json:"size"`
	Used       uint64 `json:"used"`
	Available  uint64 `json:"available"`
	UsePercent int    `json:"use_percent"`
}

// Signal is a change notification emitted after a successful mutating call
type Signal struct {
	Name      string      `json:"name"` // ConfigChanged, BasicSettingsChanged, NetworkConfigChanged, TvserverConfigChanged
	Timestamp string      `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Signal names
const (
	SignalConfigChanged         = "ConfigChanged"
	SignalBasicSettingsChanged  = "BasicSettingsChanged"
	SignalNetworkConfigChanged  = "NetworkConfigChanged"
	SignalTvserverConfigChanged = "TvserverConfigChanged"
)

// ChangeRecord is one entry of the daemon's change history
type ChangeRecord struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Signal    string `json:"signal"`
	Command   string `json:"command"`
	Detail    string `json:"detail,omitempty"`
}

// DaemonStatus reports the daemon process and its store locations
type DaemonStatus struct {
	PID           int    `json:"pid"`
	Uptime        string `json:"uptime"`
	SocketPath    string `json:"socket_path"`
	ConfigPath    string `json:"config_path"`
	ProfilesDir   string `json:"profiles_dir"`
	TvserverFile  string `json:"tvserver_file"`
	Profiles      int    `json:"profiles"`
	History       bool   `json:"history"`
	Hostname      string `json:"hostname"`
	KernelVersion string `json:"kernel_version"`
	SystemUptime  string `json:"system_uptime"`
}
