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
	"os"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
)

var (
	exportOutput string
	importApply  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the whole settings document",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the live settings document",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeConfigShow(cmd.OutOrStdout(), defaultClient); err != nil {
			reportError(cmd, err)
		}
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the live document to disk",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeSimple(cmd.OutOrStdout(), defaultClient, daemon.Request{Command: "save"}); err != nil {
			reportError(cmd, err)
		}
	},
}

var configReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the document from disk, discarding unsaved changes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeSimple(cmd.OutOrStdout(), defaultClient, daemon.Request{Command: "reload"}); err != nil {
			reportError(cmd, err)
		}
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export the live document as a named profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		if err := executeConfigExport(cmd.OutOrStdout(), defaultClient, name, exportOutput); err != nil {
			reportError(cmd, err)
		}
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Check an exported document, and adopt it with --apply",
	Long: `Reads a settings document or an exported profile from file ("-" for stdin).
Without --apply the document is only checked.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeConfigImport(cmd.OutOrStdout(), cmd.InOrStdin(), defaultClient, args[0], importApply); err != nil {
			reportError(cmd, err)
		}
	},
}

var configReplaceCmd = &cobra.Command{
	Use:   "replace <file>",
	Short: "Replace the live document with the JSON object in file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeConfigReplace(cmd.OutOrStdout(), cmd.InOrStdin(), defaultClient, args[0]); err != nil {
			reportError(cmd, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSaveCmd, configReloadCmd, configExportCmd, configImportCmd, configReplaceCmd)

	configExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	configImportCmd.Flags().BoolVar(&importApply, "apply", false, "Adopt the imported document")
}

// executeSimple sends a request without payload and prints its message.
func executeSimple(w io.Writer, client ClientInterface, req daemon.Request) error {
	resp, err := call(client, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "[OK] %s\n", resp.Message)
	return nil
}

func executeConfigShow(w io.Writer, client ClientInterface) error {
	resp, err := call(client, daemon.Request{Command: "config-get"})
	if err != nil {
		return err
	}
	return printJSON(w, resp.Data)
}

func executeConfigExport(w io.Writer, client ClientInterface, name, output string) error {
	resp, err := call(client, daemon.Request{Command: "export", Name: name})
	if err != nil {
		return err
	}

	if output == "" {
		return printJSON(w, resp.Data)
	}

	data, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format export: %w", err)
	}
	if err := os.WriteFile(output, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(w, "[OK] Exported configuration to %s\n", output)
	return nil
}

// readInput reads a file argument, where "-" means stdin.
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func executeConfigImport(w io.Writer, stdin io.Reader, client ClientInterface, path string, apply bool) error {
	data, err := readInput(stdin, path)
	if err != nil {
		return err
	}
	return executeSimple(w, client, daemon.Request{Command: "import", Text: string(data), Apply: apply})
}

func executeConfigReplace(w io.Writer, stdin io.Reader, client ClientInterface, path string) error {
	data, err := readInput(stdin, path)
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return executeSimple(w, client, daemon.Request{Command: "config-set", Value: doc})
}
