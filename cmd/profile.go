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
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"profiles"},
	Short:   "Manage saved settings profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeProfileList(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the live document as a profile",
	Args:  cobra.ExactArgs(1),
	Run:   profileAction("profile-save"),
}

var profileLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Replace the live document with a saved profile",
	Args:  cobra.ExactArgs(1),
	Run:   profileAction("profile-load"),
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	Run:   profileAction("profile-delete"),
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd, profileSaveCmd, profileLoadCmd, profileDeleteCmd)
}

func profileAction(command string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		req := daemon.Request{Command: command, Name: args[0]}
		if err := executeSimple(cmd.OutOrStdout(), defaultClient, req); err != nil {
			reportError(cmd, err)
		}
	}
}

func executeProfileList(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "profile-list"})
	if err != nil {
		return err
	}

	profiles, _ := resp.Data.([]interface{})
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No saved profiles")
		return nil
	}
	for _, name := range profiles {
		fmt.Fprintf(w, "  %v\n", name)
	}
	return nil
}
