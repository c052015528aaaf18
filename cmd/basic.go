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
	"github.com/we-are-mono/streambox-settings/types"
)

var (
	basicHostname string
	basicTimezone string
	basicLocale   string
	basicNTP      bool
	listFilter    string
)

var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Show or change hostname, timezone, locale and NTP",
}

var basicShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current basic settings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeBasicShow(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var basicSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Apply basic settings",
	Long: `Applies the given settings to the system and records them in the store.

Examples:
  streambox-settings basic set --hostname studio-box
  streambox-settings basic set --timezone Europe/Ljubljana --ntp=true`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings := types.BasicSettings{
			Hostname: basicHostname,
			Timezone: basicTimezone,
			Locale:   basicLocale,
		}
		if cmd.Flags().Changed("ntp") {
			ntp := basicNTP
			settings.NTP = &ntp
		}
		if err := executeBasicSet(cmd.OutOrStdout(), defaultClient, settings); err != nil {
			reportError(cmd, err)
		}
	},
}

var basicTimezonesCmd = &cobra.Command{
	Use:   "timezones",
	Short: "List available timezones",
	Args:  cobra.NoArgs,
	Run:   listAction("timezones"),
}

var basicLocalesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List installed locales",
	Args:  cobra.NoArgs,
	Run:   listAction("locales"),
}

func init() {
	rootCmd.AddCommand(basicCmd)
	basicCmd.AddCommand(basicShowCmd, basicSetCmd, basicTimezonesCmd, basicLocalesCmd)

	basicSetCmd.Flags().StringVar(&basicHostname, "hostname", "", "Static hostname")
	basicSetCmd.Flags().StringVar(&basicTimezone, "timezone", "", "Timezone, e.g. Europe/Berlin")
	basicSetCmd.Flags().StringVar(&basicLocale, "locale", "", "Locale, e.g. en_US.UTF-8")
	basicSetCmd.Flags().BoolVar(&basicNTP, "ntp", true, "Enable network time synchronisation")

	basicTimezonesCmd.Flags().StringVar(&listFilter, "filter", "", "Only show entries containing this text")
	basicLocalesCmd.Flags().StringVar(&listFilter, "filter", "", "Only show entries containing this text")
}

func executeBasicShow(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "basic-get"})
	if err != nil {
		return err
	}

	var settings types.BasicSettings
	if err := remarshal(resp.Data, &settings); err != nil {
		return err
	}

	ntp := "unknown"
	if settings.NTP != nil {
		ntp = map[bool]string{true: "enabled", false: "disabled"}[*settings.NTP]
	}
	fmt.Fprintf(w, "Hostname:  %s\n", settings.Hostname)
	fmt.Fprintf(w, "Timezone:  %s\n", settings.Timezone)
	fmt.Fprintf(w, "Locale:    %s\n", settings.Locale)
	fmt.Fprintf(w, "NTP:       %s\n", ntp)
	return nil
}

func executeBasicSet(w io.Writer, client ClientInterface, settings types.BasicSettings) error {
	if settings == (types.BasicSettings{}) {
		return fmt.Errorf("nothing to set: pass at least one of --hostname, --timezone, --locale, --ntp")
	}
	return executeSimple(w, client, daemon.Request{Command: "basic-set", Value: settings})
}

func listAction(command string) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := executeList(cmd.OutOrStdout(), defaultClient, command, listFilter); err != nil {
			reportError(cmd, err)
		}
	}
}

func executeList(w io.Writer, client ClientInterface, command, filter string) error {
	resp, err := call(client, daemon.Request{Command: command})
	if err != nil {
		return err
	}

	items, _ := resp.Data.([]interface{})
	for _, item := range items {
		s := fmt.Sprint(item)
		if filter != "" && !strings.Contains(strings.ToLower(s), strings.ToLower(filter)) {
			continue
		}
		fmt.Fprintln(w, s)
	}
	return nil
}

// remarshal converts decoded response data into a typed value.
func remarshal(data interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("unexpected response format: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("unexpected response format: %w", err)
	}
	return nil
}
