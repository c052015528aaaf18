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

	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

// The tvserver file belongs to streambox-tv. The store only proxies raw
// reads and writes of it: no defaults, no merge, no validation.

// TvserverFile returns the path of the AV server config
func (s *Store) TvserverFile() string { return s.tvserverFile }

// TvserverConfig returns the content of the AV server config. A missing or
// unreadable file yields an empty object.
func (s *Store) TvserverConfig() *Value {
	doc, err := ReadDocument(s.tvserverFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Error("Failed to load tvserver config",
				logger.Field{Key: "path", Value: s.tvserverFile},
				logger.Field{Key: "error", Value: err.Error()})
		}
		return EmptyObject()
	}
	return doc
}

// SetTvserverConfig replaces the AV server config with doc.
func (s *Store) SetTvserverConfig(doc *Value) error {
	if err := os.MkdirAll(filepath.Dir(s.tvserverFile), 0755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", ErrStorage, filepath.Dir(s.tvserverFile), err)
	}

	if err := WriteDocument(s.tvserverFile, doc); err != nil {
		log.Error("Failed to save tvserver config",
			logger.Field{Key: "path", Value: s.tvserverFile},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}
	// streambox-tv runs as its own user and must be able to read the file.
	if err := os.Chmod(s.tvserverFile, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions on %s: %w", ErrStorage, s.tvserverFile, err)
	}

	log.Info("Saved tvserver configuration", logger.Field{Key: "path", Value: s.tvserverFile})
	return nil
}

// HdmiConfig returns the HDMI loopout settings: the built-in defaults with
// each default section shallow-updated from the tvserver file.
func (s *Store) HdmiConfig() *Value {
	config := DefaultHdmiConfig()
	existing := s.TvserverConfig()

	for _, key := range config.Keys() {
		section, ok := existing.Field(key)
		if !ok || !section.IsObject() {
			continue
		}
		target, _ := config.Field(key)
		for _, field := range section.Keys() {
			value, _ := section.Field(field)
			target.SetField(field, value.Clone())
		}
	}
	return config
}
