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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/types"
)

var systemJSON bool

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Inspect network, audio and storage",
}

var systemNetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show interfaces, default gateway and DNS servers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeNetworkStatus(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var systemAudioCmd = &cobra.Command{
	Use:   "audio",
	Short: "List ALSA playback and capture devices",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeAudioDevices(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var systemStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "List mounted filesystems",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeStorageInfo(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var systemMountCmd = &cobra.Command{
	Use:   "mount <device>",
	Short: "Mount a block device under /media",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeSimple(cmd.OutOrStdout(), defaultClient, daemon.Request{Command: "mount", Device: args[0]}); err != nil {
			reportError(cmd, err)
		}
	},
}

var systemUnmountCmd = &cobra.Command{
	Use:   "unmount <device>",
	Short: "Unmount a block device",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeSimple(cmd.OutOrStdout(), defaultClient, daemon.Request{Command: "unmount", Device: args[0]}); err != nil {
			reportError(cmd, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(systemCmd)
	systemCmd.AddCommand(systemNetworkCmd, systemAudioCmd, systemStorageCmd, systemMountCmd, systemUnmountCmd)
	systemCmd.PersistentFlags().BoolVar(&systemJSON, "json", false, "Print raw JSON")
}

func executeNetworkStatus(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "network-status"})
	if err != nil {
		return err
	}
	if systemJSON {
		return printJSON(w, resp.Data)
	}

	var status types.NetworkStatus
	if err := remarshal(resp.Data, &status); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INTERFACE\tTYPE\tSTATE\tMAC\tMTU\tADDRESSES")
	for _, iface := range status.Interfaces {
		addrs := strings.Join(iface.Addresses, ", ")
		if addrs == "" {
			addrs = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", iface.Name, iface.Type, iface.State, orDash(iface.MAC), iface.MTU, addrs)
	}
	tw.Flush()

	fmt.Fprintln(w)
	if status.DefaultGateway != "" {
		fmt.Fprintf(w, "Gateway: %s (%s)\n", status.DefaultGateway, status.GatewayDevice)
	} else {
		fmt.Fprintln(w, "Gateway: none")
	}
	fmt.Fprintf(w, "DNS:     %s\n", orDash(strings.Join(status.DNSServers, ", ")))
	return nil
}

func executeAudioDevices(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "audio-devices"})
	if err != nil {
		return err
	}
	if systemJSON {
		return printJSON(w, resp.Data)
	}

	var devices types.AudioDevices
	if err := remarshal(resp.Data, &devices); err != nil {
		return err
	}

	printDevices := func(title string, list []types.AudioDevice) {
		fmt.Fprintf(w, "%s:\n", title)
		if len(list) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, d := range list {
			fmt.Fprintf(w, "  %-8s %s\n", d.Address, d.Description)
		}
	}
	printDevices("Playback", devices.Playback)
	printDevices("Capture", devices.Capture)
	return nil
}

func executeStorageInfo(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "storage-info"})
	if err != nil {
		return err
	}
	if systemJSON {
		return printJSON(w, resp.Data)
	}

	var filesystems []types.Filesystem
	if err := remarshal(resp.Data, &filesystems); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tMOUNT\tTYPE\tLABEL\tSIZE\tUSED\tAVAIL\tUSE%")
	for _, fs := range filesystems {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
			fs.Device, fs.MountPoint, fs.FSType, orDash(fs.Label),
			formatBytes(fs.Size), formatBytes(fs.Used), formatBytes(fs.Available), fs.UsePercent)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
