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
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/state"
)

const (
	defaultPIDFile = "/var/run/streambox-settings.pid"
	defaultLogFile = "/var/log/streambox-settings/streambox-settings.log"
	journalID      = "streambox-settings"
)

var (
	daemonOptionsPath string
	daemonForeground  bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the settings daemon",
	Long:  `Starts the settings daemon which listens for commands on a Unix socket.`,
	Run:   runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().StringVarP(&daemonOptionsPath, "config", "c", daemon.DefaultOptionsPath, "Daemon options file")
	daemonCmd.Flags().BoolVar(&daemonForeground, "foreground", false, "Log to the console instead of journald or a file")
}

func runDaemon(cmd *cobra.Command, args []string) {
	opts, err := daemon.LoadOptions(daemonOptionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	// Check for existing daemon via PID file
	pidFile := os.Getenv("STREAMBOX_PID_FILE")
	if pidFile == "" {
		pidFile = defaultPIDFile
	}
	if err := checkExistingDaemon(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	// Write our PID to file
	if err := writePIDFile(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to write PID file: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(pidFile)

	// Initialize structured logger
	if err := initializeLogger(opts.Logging, daemonForeground); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown()

	store := state.NewStore(opts.StoreOptions())
	services := daemon.DefaultServices(time.Duration(opts.CommandTimeout))

	server, err := daemon.NewServer(opts, store, services)
	if err != nil {
		logger.Error("Failed to create server", logger.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Shutting down...", logger.Field{Key: "signal", Value: sig.String()})
		if err := server.Stop(); err != nil {
			logger.Error("Failed to stop server", logger.Field{Key: "error", Value: err.Error()})
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error("Server failed", logger.Field{Key: "error", Value: err.Error()})
		server.Stop()
		os.Remove(pidFile)
		os.Exit(1)
	}
	logger.Info("Daemon stopped")
}

// checkExistingDaemon checks if another daemon is already running
func checkExistingDaemon(pidFile string) error {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("PID file exists but cannot be read: %w (remove %s manually if daemon is not running)", err, pidFile)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return fmt.Errorf("invalid PID in %s: %s (remove file manually if daemon is not running)", pidFile, pidStr)
	}

	// Signal 0 checks for a live process
	process, err := os.FindProcess(pid)
	if err == nil {
		err = process.Signal(syscall.Signal(0))
	}
	if err != nil {
		os.Remove(pidFile)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d (stop it first or remove %s if it's stale)", pid, pidFile)
}

// writePIDFile writes the current process PID to a file
func writePIDFile(pidFile string) error {
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0600)
}

// initializeLogger sets up the global logger from the daemon options.
// Without --foreground it prefers journald and falls back to a file.
func initializeLogger(opts daemon.LoggingOptions, foreground bool) error {
	config := logger.Config{
		Level:     opts.Level,
		Format:    opts.Format,
		Component: "daemon",
	}

	var backends []logger.Backend
	emitter := logger.NewEmitter()
	backend := "console"
	var journaldErr error

	switch {
	case foreground:
		backends = append(backends, logger.NewConsoleBackend(os.Stderr, journalID, config.Format))

	case opts.Journald:
		journaldBackend, err := logger.NewJournaldBackend(journalID, config.Format)
		if err != nil {
			journaldErr = err
		} else {
			backends = append(backends, journaldBackend)
			backend = "journald"
		}
	}

	logFile := opts.File
	if len(backends) == 0 || logFile != "" {
		if logFile == "" {
			logFile = defaultLogFile
		}
		fileBackend, err := logger.NewFileBackend(logFile, config.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize file backend: %w", err)
		}
		backends = append(backends, fileBackend)
		if len(backends) == 1 {
			backend = "file"
		}
	}

	logger.Init(config, backends, emitter)
	logger.Info("Logging initialized",
		logger.Field{Key: "backend", Value: backend},
		logger.Field{Key: "format", Value: config.Format})
	if journaldErr != nil {
		logger.Warn("Journald unavailable, logging to file",
			logger.Field{Key: "error", Value: journaldErr.Error()})
	}
	return nil
}
