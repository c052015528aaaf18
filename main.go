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

// streambox-settings owns the persistent device settings of a StreamBox
// media appliance and serves them to local clients over a Unix socket.
package main

import "github.com/we-are-mono/streambox-settings/cmd"

// Version is the application version, set at build time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersion(Version, BuildTime)
	cmd.Execute()
}
