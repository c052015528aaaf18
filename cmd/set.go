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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
)

var setCmd = &cobra.Command{
	Use:   "set [path...] [value]",
	Short: "Set a configuration value",
	Long: `Sets a value in the settings document and saves it. Path components may
be given as separate arguments or joined with dots; the last argument is the
value.

Values are typed: true/false, null, numbers, and JSON objects or lists are
stored as such; anything else is stored as a string.

Examples:
  streambox-settings set basic hostname studio-box
  streambox-settings set network.wired.method static
  streambox-settings set network wired mtu 1400
  streambox-settings set network wired dns_servers '["1.1.1.1","8.8.8.8"]'
  streambox-settings set network wired gateway null`,
	Args: cobra.MinimumNArgs(2),
	Run:  runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) {
	if err := executeSet(cmd.OutOrStdout(), defaultClient, args); err != nil {
		reportError(cmd, err)
	}
}

// parseSetArgs parses the arguments for the set command.
// It returns the path and the parsed value.
func parseSetArgs(args []string) (string, interface{}, error) {
	if len(args) < 2 {
		return "", nil, fmt.Errorf("requires at least 2 arguments (path and value)")
	}

	// Last argument is always the value
	value := parseValue(args[len(args)-1])
	return joinPath(args[:len(args)-1]), value, nil
}

// parseValue converts a command line argument into a typed value
func parseValue(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v interface{}
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

// executeSet executes the set command with the given client and arguments.
func executeSet(w io.Writer, client ClientInterface, args []string) error {
	path, value, err := parseSetArgs(args)
	if err != nil {
		return err
	}

	resp, err := call(client, daemon.Request{
		Command: "set",
		Path:    path,
		Value:   value,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, resp.Message)
	return nil
}
