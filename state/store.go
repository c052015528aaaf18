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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
)

const (
	configFileName  = "config.json"
	profilesDirName = "profiles"
)

var log = logger.For("store")

// Options configures where a Store keeps its documents.
type Options struct {
	Dir          string // Store directory; defaults to GetConfigDir()
	TvserverFile string // Externally owned AV server config; defaults to /etc/streambox-tv/config.json
}

// Profile is a named snapshot of a settings document.
type Profile struct {
	Name   string `json:"name"`
	Config *Value `json:"config"`
}

// Store owns the live settings document.
//
// A Store is not safe for concurrent use. The daemon serialises every
// request before it reaches the store, and callers must not issue a second
// mutating call while one is outstanding.
type Store struct {
	dir          string
	file         string
	profilesDir  string
	tvserverFile string

	config      *Value
	watchers    []context.CancelFunc
	initialized bool
}

// NewStore creates a store seeded with the default schema.
// Nothing touches the filesystem until Initialize is called.
func NewStore(opts Options) *Store {
	dir := opts.Dir
	if dir == "" {
		dir = GetConfigDir()
	}
	tvserver := opts.TvserverFile
	if tvserver == "" {
		tvserver = defaultTvserverPath
	}

	return &Store{
		dir:          dir,
		file:         filepath.Join(dir, configFileName),
		profilesDir:  filepath.Join(dir, profilesDirName),
		tvserverFile: tvserver,
		config:       DefaultSchema(),
	}
}

// Path returns the location of the persisted document
func (s *Store) Path() string { return s.file }

// ProfilesDir returns the directory holding profile documents
func (s *Store) ProfilesDir() string { return s.profilesDir }

// Initialize prepares the store directories and loads the persisted
// document. Calling it again after a successful call does nothing.
func (s *Store) Initialize() error {
	if s.initialized {
		return nil
	}

	log.Info("Initializing settings store", logger.Field{Key: "dir", Value: s.dir})

	if err := s.ensureDirectories(); err != nil {
		return err
	}

	if err := s.load(); err != nil {
		return err
	}

	if _, err := os.Stat(s.tvserverFile); err != nil {
		log.Warn("Tvserver config file not found",
			logger.Field{Key: "path", Value: s.tvserverFile})
	}

	s.initialized = true
	log.Info("Settings store initialized")
	return nil
}

func (s *Store) ensureDirectories() error {
	for _, dir := range []string{s.dir, s.profilesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create %s: %w", ErrStorage, dir, err)
		}
	}
	return nil
}

// load adopts the persisted document merged onto the defaults. A missing
// file is replaced by the defaults, which are written out immediately. An
// unreadable file falls back to the defaults without persisting them.
func (s *Store) load() error {
	doc, err := ReadDocument(s.file)
	switch {
	case err == nil && doc.IsObject():
		s.config = MergeDefaults(doc)
		log.Info("Loaded configuration", logger.Field{Key: "path", Value: s.file})
		return nil

	case errors.Is(err, fs.ErrNotExist):
		log.Info("No existing config found, using defaults")
		s.config = DefaultSchema()
		return s.Save()

	case err == nil:
		err = fmt.Errorf("%w: top-level value is %s, not an object", ErrInvalidInput, doc.Kind())
	}

	log.Error("Failed to load config, using defaults",
		logger.Field{Key: "path", Value: s.file},
		logger.Field{Key: "error", Value: err.Error()})
	s.config = DefaultSchema()
	return nil
}

// Get returns a copy of the value at a dotted path, or def when any segment
// is missing or a non-object is reached first.
func (s *Store) Get(path string, def *Value) *Value {
	v := Lookup(s.config, path, nil)
	if v == nil {
		return def
	}
	return v.Clone()
}

// Set assigns value at a dotted path, creating intermediate objects as
// needed. The change is not persisted until Save is called.
func (s *Store) Set(path string, value *Value) {
	Assign(s.config, path, value.Clone())
}

// SetAndSave assigns value at a dotted path and persists the result. The
// live document is left unchanged when the write fails.
func (s *Store) SetAndSave(path string, value *Value) error {
	return s.Update(func(doc *Value) {
		Assign(doc, path, value.Clone())
	})
}

// Update applies fn to a copy of the live document, persists the copy and
// only then adopts it.
func (s *Store) Update(fn func(doc *Value)) error {
	doc := s.config.Clone()
	fn(doc)
	return s.commit(doc)
}

// GetSection returns a copy of a top-level section, or an empty object.
func (s *Store) GetSection(name string) *Value {
	section, ok := s.config.Field(name)
	if !ok {
		return EmptyObject()
	}
	return section.Clone()
}

// SetSection replaces a top-level section. Not persisted until Save.
func (s *Store) SetSection(name string, doc *Value) {
	s.config.SetField(name, doc.Clone())
}

// Document returns a copy of the whole live document.
func (s *Store) Document() *Value {
	return s.config.Clone()
}

// Replace merges doc onto the defaults, persists the result and adopts it.
func (s *Store) Replace(doc *Value) error {
	if !doc.IsObject() {
		return fmt.Errorf("%w: configuration must be an object, got %s", ErrInvalidInput, doc.Kind())
	}
	return s.commit(MergeDefaults(doc))
}

// Save writes the live document to disk. Failures are returned to the
// caller since memory and disk would otherwise silently diverge.
func (s *Store) Save() error {
	if err := WriteDocument(s.file, s.config); err != nil {
		log.Error("Failed to save config",
			logger.Field{Key: "path", Value: s.file},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}
	log.Info("Saved configuration", logger.Field{Key: "path", Value: s.file})
	return nil
}

// Reload re-reads the persisted document, discarding unsaved changes.
func (s *Store) Reload() error {
	return s.load()
}

// commit persists doc and only then makes it the live document.
func (s *Store) commit(doc *Value) error {
	if err := WriteDocument(s.file, doc); err != nil {
		log.Error("Failed to save config",
			logger.Field{Key: "path", Value: s.file},
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}
	s.config = doc
	log.Info("Saved configuration", logger.Field{Key: "path", Value: s.file})
	return nil
}

// ExportConfig wraps a copy of the live document in a named profile.
func (s *Store) ExportConfig(name string) Profile {
	return Profile{Name: name, Config: s.config.Clone()}
}

// ImportConfig parses a serialized document or profile. A top-level
// "config" field is unwrapped first. With apply set, the result is merged
// onto the defaults and persisted; otherwise the text is only validated.
func (s *Store) ImportConfig(text []byte, apply bool) error {
	doc, err := Parse(text)
	if err != nil {
		log.Error("Failed to import config", logger.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if inner, ok := doc.Field("config"); ok {
		doc = inner
	}

	if !doc.IsObject() {
		log.Error("Failed to import config",
			logger.Field{Key: "error", Value: "not an object"},
			logger.Field{Key: "kind", Value: doc.Kind().String()})
		return fmt.Errorf("%w: imported configuration must be an object, got %s", ErrInvalidInput, doc.Kind())
	}

	if !apply {
		return nil
	}

	return s.commit(MergeDefaults(doc))
}

// AddWatcher registers a cancel function to be called by Cleanup.
func (s *Store) AddWatcher(cancel context.CancelFunc) {
	s.watchers = append(s.watchers, cancel)
}

// Cleanup cancels all registered watchers.
func (s *Store) Cleanup() {
	log.Info("Cleaning up settings store",
		logger.Field{Key: "watchers", Value: len(s.watchers)})
	for _, cancel := range s.watchers {
		cancel()
	}
	s.watchers = nil
}
