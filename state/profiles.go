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

package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

const profileExt = ".json"

// ValidateProfileName rejects names that cannot be used as a file stem
// inside the profiles directory.
func ValidateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: profile name cannot be empty", ErrInvalidInput)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: invalid profile name %q", ErrInvalidInput, name)
	}
	return nil
}

func (s *Store) profilePath(name string) (string, error) {
	if err := ValidateProfileName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.profilesDir, name+profileExt), nil
}

// ListProfiles returns the names of all saved profiles in sorted order.
func (s *Store) ListProfiles() ([]string, error) {
	entries, err := os.ReadDir(s.profilesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: failed to list profiles: %w", ErrStorage, err)
	}

	profiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, profileExt) {
			continue
		}
		profiles = append(profiles, strings.TrimSuffix(name, profileExt))
	}
	sort.Strings(profiles)
	return profiles, nil
}

// SaveProfile snapshots the live document under name, replacing any
// existing profile with the same name.
func (s *Store) SaveProfile(name string) error {
	path, err := s.profilePath(name)
	if err != nil {
		return err
	}

	if err := WriteDocument(path, s.ExportConfig(name)); err != nil {
		log.Error("Failed to save profile",
			logger.Field{Key: "profile", Value: name},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}

	log.Info("Saved profile", logger.Field{Key: "profile", Value: name})
	return nil
}

// LoadProfile restores a saved profile: its config is merged onto the
// defaults, persisted and adopted. On failure the live document is unchanged.
func (s *Store) LoadProfile(name string) error {
	path, err := s.profilePath(name)
	if err != nil {
		return err
	}

	doc, err := ReadDocument(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Error("Profile not found", logger.Field{Key: "profile", Value: name})
			return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		log.Error("Failed to load profile",
			logger.Field{Key: "profile", Value: name},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}

	config, ok := doc.Field("config")
	if !ok || !config.IsObject() {
		log.Error("Profile has no config section", logger.Field{Key: "profile", Value: name})
		return fmt.Errorf("%w: profile %s has no config object", ErrInvalidInput, name)
	}

	if err := s.commit(MergeDefaults(config)); err != nil {
		return err
	}

	log.Info("Loaded profile", logger.Field{Key: "profile", Value: name})
	return nil
}

// DeleteProfile removes a saved profile.
func (s *Store) DeleteProfile(name string) error {
	path, err := s.profilePath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Error("Profile not found", logger.Field{Key: "profile", Value: name})
			return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		log.Error("Failed to delete profile",
			logger.Field{Key: "profile", Value: name},
			logger.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("%w: failed to delete profile %s: %w", ErrStorage, name, err)
	}

	log.Info("Deleted profile", logger.Field{Key: "profile", Value: name})
	return nil
}
