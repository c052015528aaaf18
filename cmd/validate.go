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
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/streambox-settings/daemon"
	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/validation"
)

var validateStore bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate settings without applying them",
	Long: `Checks settings for syntax errors and invalid network values.

Without arguments the daemon validates its live document. Given a file, the
document or exported profile in it is checked locally. With --store, the
persisted document and every profile in the store directory are checked
without contacting the daemon.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateStore, "store", false, "Check the files in the store directory")
}

func runValidate(cmd *cobra.Command, args []string) {
	var err error
	switch {
	case validateStore:
		err = executeValidateStore(cmd.OutOrStdout(), state.GetConfigDir())
	case len(args) == 1:
		err = validateFile(args[0])
		if err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: valid\n", args[0])
		}
	default:
		err = executeSimple(cmd.OutOrStdout(), defaultClient, daemon.Request{Command: "validate"})
	}
	if err != nil {
		reportError(cmd, err)
	}
}

// validateFile checks JSON syntax and settings values of a document or
// exported profile.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}

	doc, err := state.Parse(data)
	if err != nil {
		return err
	}
	if inner, ok := doc.Field("config"); ok {
		doc = inner
	}

	settings, ok := doc.Interface().(map[string]interface{})
	if !ok {
		return fmt.Errorf("top-level value is %s, not an object", doc.Kind())
	}
	return validation.ValidateSettings(settings)
}

// executeValidateStore checks config.json and every profile under dir.
func executeValidateStore(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Validating settings in %s...\n\n", dir)

	files := []string{filepath.Join(dir, "config.json")}
	profiles, _ := filepath.Glob(filepath.Join(dir, "profiles", "*.json"))
	sort.Strings(profiles)
	files = append(files, profiles...)

	hasErrors := false
	for _, path := range files {
		rel, _ := filepath.Rel(dir, path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Fprintf(w, "⊘ %s: not found\n", rel)
			continue
		}

		if err := validateFile(path); err != nil {
			fmt.Fprintf(w, "❌ %s: %v\n", rel, err)
			hasErrors = true
		} else {
			fmt.Fprintf(w, "✓ %s: valid\n", rel)
		}
	}

	fmt.Fprintln(w)
	if hasErrors {
		return fmt.Errorf("validation failed - please fix the errors above")
	}
	fmt.Fprintln(w, "✓ All settings files are valid")
	return nil
}
