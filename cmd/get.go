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
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
)

var getDefault string

var getCmd = &cobra.Command{
	Use:   "get [path...]",
	Short: "Get a configuration value",
	Long: `Gets a value from the settings document. Path components may be given
as separate arguments or joined with dots.

If no path is provided, prints the whole document.

Examples:
  streambox-settings get
  streambox-settings get basic hostname
  streambox-settings get network.wired.method
  streambox-settings get network wifi_ap ssid --default StreamBox`,
	Run: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getDefault, "default", "", "Value to print when the path does not exist")
}

func runGet(cmd *cobra.Command, args []string) {
	var def interface{}
	if cmd.Flags().Changed("default") {
		def = parseValue(getDefault)
	}
	if err := executeGet(cmd.OutOrStdout(), defaultClient, args, def); err != nil {
		reportError(cmd, err)
	}
}

// joinPath builds a dotted path from the command arguments.
func joinPath(args []string) string {
	return strings.Join(args, ".")
}

// executeGet executes the get command with the given client and arguments.
func executeGet(w io.Writer, client ClientInterface, args []string, def interface{}) error {
	resp, err := call(client, daemon.Request{
		Command: "get",
		Path:    joinPath(args),
		Value:   def,
	})
	if err != nil {
		return err
	}
	return printJSON(w, resp.Data)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
