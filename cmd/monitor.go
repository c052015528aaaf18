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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/types"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [signal...]",
	Short: "Print change signals as they happen",
	Long: `Streams change signals from the daemon until interrupted. With arguments,
only the named signals are shown (ConfigChanged, BasicSettingsChanged,
NetworkConfigChanged, TvserverConfigChanged).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := executeMonitor(ctx, cmd.OutOrStdout(), defaultClient, args); err != nil {
			reportError(cmd, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func executeMonitor(ctx context.Context, w io.Writer, client ClientInterface, signals []string) error {
	req := daemon.Request{Command: "monitor", Signals: signals}
	return client.Stream(ctx, req, func(line []byte) error {
		var sig types.Signal
		if err := json.Unmarshal(line, &sig); err != nil {
			return fmt.Errorf("failed to parse signal: %w", err)
		}

		payload := ""
		if sig.Payload != nil {
			if data, err := json.Marshal(sig.Payload); err == nil {
				payload = " " + string(data)
			}
		}
		fmt.Fprintf(w, "[%s] %s%s\n", sig.Timestamp, sig.Name, payload)
		return nil
	})
}
