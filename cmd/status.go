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

// Package cmd implements the streambox-settings CLI using cobra.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/types"
)

var verboseStatus bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon and store status",
	Long:  `Displays the daemon process, store locations and basic system information.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeStatus(cmd.OutOrStdout(), defaultClient, verboseStatus); err != nil {
			reportError(cmd, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&verboseStatus, "verbose", "v", false, "Show store locations")
}

func executeStatus(w io.Writer, client ClientInterface, verbose bool) error {
	resp, err := call(client, daemon.Request{Command: "status"})
	if err != nil {
		return err
	}

	var status types.DaemonStatus
	if err := remarshal(resp.Data, &status); err != nil {
		return err
	}

	fmt.Fprintln(w, "StreamBox Settings Daemon")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "[OK] Daemon:     Running (PID: %d, up %s)\n", status.PID, status.Uptime)
	fmt.Fprintf(w, "     Profiles:   %d\n", status.Profiles)
	if status.History {
		fmt.Fprintln(w, "     History:    enabled")
	} else {
		fmt.Fprintln(w, "     History:    disabled")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Host:   %s\n", orDash(status.Hostname))
	fmt.Fprintf(w, "Kernel: %s\n", orDash(status.KernelVersion))
	fmt.Fprintf(w, "Uptime: %s\n", orDash(status.SystemUptime))

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Socket:   %s\n", status.SocketPath)
		fmt.Fprintf(w, "Config:   %s\n", status.ConfigPath)
		fmt.Fprintf(w, "Profiles: %s\n", status.ProfilesDir)
		fmt.Fprintf(w, "Tvserver: %s\n", status.TvserverFile)
	}
	return nil
}
