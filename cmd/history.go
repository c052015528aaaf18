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
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/types"
)

var (
	historyLimit   int
	historySignals []string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent settings changes",
	Long:  `Lists the most recent changes recorded by the daemon, newest first.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeHistory(cmd.OutOrStdout(), defaultClient, historyLimit, historySignals); err != nil {
			reportError(cmd, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "lines", "n", 20, "Number of records to show")
	historyCmd.Flags().StringSliceVar(&historySignals, "signal", nil, "Only show these signals (repeatable)")
}

func executeHistory(w io.Writer, client ClientInterface, limit int, signals []string) error {
	resp, err := call(client, daemon.Request{Command: "history", Limit: limit, Signals: signals})
	if err != nil {
		return err
	}

	var records []types.ChangeRecord
	if err := remarshal(resp.Data, &records); err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No changes recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSIGNAL\tCOMMAND\tDETAIL")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Timestamp, r.Signal, r.Command, orDash(r.Detail))
	}
	return tw.Flush()
}
