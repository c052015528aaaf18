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

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
)

var tvserverCmd = &cobra.Command{
	Use:   "tvserver",
	Short: "Read or replace the AV server configuration file",
}

var tvserverShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the AV server configuration",
	Args:  cobra.NoArgs,
	Run:   showAction("tvserver-get"),
}

var tvserverSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Replace the AV server configuration with the JSON object in file",
	Args:  cobra.ExactArgs(1),
	Run:   setDocumentAction("tvserver-set"),
}

var hdmiCmd = &cobra.Command{
	Use:   "hdmi",
	Short: "Manage HDMI loopout settings",
}

var hdmiShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print HDMI loopout settings with defaults filled in",
	Args:  cobra.NoArgs,
	Run:   showAction("hdmi-get"),
}

var hdmiSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Write HDMI loopout settings and reload the AV server",
	Args:  cobra.ExactArgs(1),
	Run:   setDocumentAction("hdmi-set"),
}

func init() {
	rootCmd.AddCommand(tvserverCmd, hdmiCmd)
	tvserverCmd.AddCommand(tvserverShowCmd, tvserverSetCmd)
	hdmiCmd.AddCommand(hdmiShowCmd, hdmiSetCmd)
}

// showAction prints the data returned by a read-only command.
func showAction(command string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := executeShow(cmd.OutOrStdout(), defaultClient, command); err != nil {
			reportError(cmd, err)
		}
	}
}

func executeShow(w io.Writer, client ClientInterface, command string) error {
	resp, err := call(client, daemon.Request{Command: command})
	if err != nil {
		return err
	}
	return printJSON(w, resp.Data)
}

// setDocumentAction sends the JSON object read from the file argument.
func setDocumentAction(command string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := executeSetDocument(cmd.OutOrStdout(), cmd.InOrStdin(), defaultClient, command, args[0]); err != nil {
			reportError(cmd, err)
		}
	}
}

func executeSetDocument(w io.Writer, stdin io.Reader, client ClientInterface, command, path string) error {
	data, err := readInput(stdin, path)
	if err != nil {
		return err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s must contain a JSON object: %w", path, err)
	}
	return executeSimple(w, client, daemon.Request{Command: command, Value: doc})
}
