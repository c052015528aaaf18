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
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

var (
	logsFollow    bool
	logsLines     int
	logsSince     string
	logsComponent string
	logsTail      int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show settings daemon logs",
	Long:  `Display logs from the settings daemon using journalctl (systemd) or tail (non-systemd).`,
	Run:   runLogs,
}

var logsWatchCmd = &cobra.Command{
	Use:   "watch [level]",
	Short: "Watch logs in real-time from the settings daemon",
	Long:  `Stream logs from the daemon in real-time. Optionally filter by log level (debug, info, warn, error).`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogsWatch,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsWatchCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output in real-time")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since time (e.g., '1 hour ago', '2024-01-01')")

	logsWatchCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component name")
	logsWatchCmd.Flags().IntVar(&logsTail, "tail", 0, "Show the last N buffered entries first")
}

func runLogs(cmd *cobra.Command, args []string) {
	var argv []string
	if _, err := exec.LookPath("journalctl"); err == nil {
		argv = journalctlArgs(logsFollow, logsLines, logsSince)
	} else {
		if _, err := os.Stat(defaultLogFile); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "[ERROR] Log file not found: %s\n", defaultLogFile)
			fmt.Fprintf(os.Stderr, "[INFO] Make sure the daemon is running or has been run at least once.\n")
			os.Exit(1)
		}
		if logsSince != "" {
			fmt.Fprintf(os.Stderr, "[WARN] --since flag is not supported without journalctl, ignoring\n")
		}
		argv = tailArgs(logsFollow, logsLines, defaultLogFile)
	}

	execCmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv built from fixed tool names and validated flags
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin

	if err := execCmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to run %s: %v\n", argv[0], err)
		os.Exit(1)
	}
}

func journalctlArgs(follow bool, lines int, since string) []string {
	argv := []string{"journalctl", "-t", journalID}
	if follow {
		argv = append(argv, "-f")
	}
	if lines > 0 && !follow {
		argv = append(argv, "-n", fmt.Sprintf("%d", lines))
	}
	if since != "" {
		argv = append(argv, "--since", since)
	}
	// Prevent paging when not following
	if !follow {
		argv = append(argv, "--no-pager")
	}
	return argv
}

func tailArgs(follow bool, lines int, file string) []string {
	argv := []string{"tail"}
	if follow {
		argv = append(argv, "-f")
	}
	if lines > 0 {
		argv = append(argv, "-n", fmt.Sprintf("%d", lines))
	}
	return append(argv, file)
}

func runLogsWatch(cmd *cobra.Command, args []string) {
	filter := &daemon.LogFilter{Component: logsComponent, Tail: logsTail}
	if len(args) > 0 {
		filter.Level = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeLogsWatch(ctx, cmd.OutOrStdout(), defaultClient, filter); err != nil {
		reportError(cmd, err)
	}
}

func executeLogsWatch(ctx context.Context, w io.Writer, client ClientInterface, filter *daemon.LogFilter) error {
	req := daemon.Request{Command: "logs", LogFilter: filter}
	return client.Stream(ctx, req, func(line []byte) error {
		var entry logger.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fmt.Errorf("failed to parse log entry: %w", err)
		}
		fmt.Fprintf(w, "[%s] [%s] %s: %s\n", entry.Timestamp, entry.Level, entry.Component, entry.Message)
		return nil
	})
}
