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

// Package daemon implements the settings daemon server and IPC protocol.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/system"
	"github.com/we-are-mono/streambox-settings/types"
	"github.com/we-are-mono/streambox-settings/validation"
)

const (
	defaultExportName   = "export"
	defaultHistoryQuery = 50
)

func (s *Server) handleStatus() Response {
	status := types.DaemonStatus{
		PID:          os.Getpid(),
		Uptime:       system.FormatDuration(time.Since(s.startTime)),
		SocketPath:   s.opts.SocketPath,
		ConfigPath:   s.store.Path(),
		ProfilesDir:  s.store.ProfilesDir(),
		TvserverFile: s.store.TvserverFile(),
		History:      s.journal != nil,
	}
	if profiles, err := s.store.ListProfiles(); err == nil {
		status.Profiles = len(profiles)
	}
	if s.svc.Filesystem != nil {
		info := system.GetSystemInfo(s.svc.Filesystem)
		status.Hostname = info.Hostname
		status.KernelVersion = info.KernelVersion
		status.SystemUptime = info.Uptime
	}

	return Response{Success: true, Data: status}
}

// handleGet returns the value at path, the whole document for an empty
// path, or the client supplied default when the path is missing.
func (s *Server) handleGet(path string, def interface{}) Response {
	if path == "" {
		return Response{Success: true, Data: s.store.Document()}
	}

	if v := s.store.Get(path, nil); v != nil {
		return Response{Success: true, Data: v}
	}
	if def != nil {
		return Response{Success: true, Data: def}
	}
	return Response{
		Success: false,
		Error:   fmt.Sprintf("path not found: %s", path),
		Code:    state.KindNotFound,
	}
}

// handleSet assigns and persists a single value
func (s *Server) handleSet(path string, raw interface{}) Response {
	if path == "" {
		return Response{Success: false, Error: "path required", Code: state.KindInvalidInput}
	}

	value, err := state.FromInterface(raw)
	if err != nil {
		return Response{Success: false, Error: fmt.Sprintf("invalid value: %v", err), Code: state.KindInvalidInput}
	}

	if err := s.store.SetAndSave(path, value); err != nil {
		return errorResponse(err)
	}

	s.emit(types.SignalConfigChanged, "set", map[string]interface{}{"path": path, "value": value})
	return Response{Success: true, Message: fmt.Sprintf("Set %s", path)}
}

func (s *Server) handleConfigGet() Response {
	return Response{Success: true, Data: s.store.Document()}
}

// handleConfigSet replaces the whole document
func (s *Server) handleConfigSet(raw interface{}) Response {
	doc, err := state.FromInterface(raw)
	if err != nil {
		return Response{Success: false, Error: fmt.Sprintf("invalid configuration: %v", err), Code: state.KindInvalidInput}
	}

	if err := s.store.Replace(doc); err != nil {
		return errorResponse(err)
	}

	s.emit(types.SignalConfigChanged, "config-set", nil)
	return Response{Success: true, Message: "Configuration replaced"}
}

func (s *Server) handleSave() Response {
	if err := s.store.Save(); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: "Configuration saved"}
}

func (s *Server) handleReload() Response {
	if err := s.store.Reload(); err != nil {
		return errorResponse(err)
	}
	s.emit(types.SignalConfigChanged, "reload", nil)
	return Response{Success: true, Message: "Configuration reloaded"}
}

func (s *Server) handleExport(name string) Response {
	if name == "" {
		name = defaultExportName
	}
	return Response{Success: true, Data: s.store.ExportConfig(name)}
}

// handleImport validates text and, with apply set, adopts it
func (s *Server) handleImport(text string, apply bool) Response {
	if err := s.store.ImportConfig([]byte(text), apply); err != nil {
		return errorResponse(err)
	}

	if !apply {
		return Response{Success: true, Message: "Configuration is valid (not applied)"}
	}
	s.emit(types.SignalConfigChanged, "import", nil)
	return Response{Success: true, Message: "Configuration imported"}
}

// handleValidate checks the network settings of doc, or of the live
// document when doc is nil
func (s *Server) handleValidate(raw interface{}) Response {
	doc := s.store.Document()
	if raw != nil {
		parsed, err := state.FromInterface(raw)
		if err != nil {
			return Response{Success: false, Error: fmt.Sprintf("invalid configuration: %v", err), Code: state.KindInvalidInput}
		}
		doc = parsed
	}

	settings, ok := doc.Interface().(map[string]interface{})
	if !ok {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("configuration must be an object, got %s", doc.Kind()),
			Code:    state.KindInvalidInput,
		}
	}

	if err := validation.ValidateSettings(settings); err != nil {
		return Response{Success: false, Error: err.Error(), Code: state.KindInvalidInput}
	}
	return Response{Success: true, Message: "Configuration is valid"}
}

func (s *Server) handleProfileList() Response {
	profiles, err := s.store.ListProfiles()
	if err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Data: profiles}
}

func (s *Server) handleProfileSave(name string) Response {
	if err := s.store.SaveProfile(name); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: fmt.Sprintf("Profile %s saved", name)}
}

func (s *Server) handleProfileLoad(name string) Response {
	if err := s.store.LoadProfile(name); err != nil {
		return errorResponse(err)
	}
	s.emit(types.SignalConfigChanged, "profile-load", map[string]interface{}{"profile": name})
	return Response{Success: true, Message: fmt.Sprintf("Profile %s loaded", name)}
}

func (s *Server) handleProfileDelete(name string) Response {
	if err := s.store.DeleteProfile(name); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: fmt.Sprintf("Profile %s deleted", name)}
}

func (s *Server) handleTvserverGet() Response {
	return Response{Success: true, Data: s.store.TvserverConfig()}
}

func (s *Server) handleTvserverSet(raw interface{}) Response {
	doc, err := objectValue(raw)
	if err != nil {
		return errorResponse(err)
	}
	if err := s.store.SetTvserverConfig(doc); err != nil {
		return errorResponse(err)
	}
	s.emit(types.SignalTvserverConfigChanged, "tvserver-set", nil)
	return Response{Success: true, Message: "Tvserver configuration saved"}
}

func (s *Server) handleHdmiGet() Response {
	return Response{Success: true, Data: s.store.HdmiConfig()}
}

// handleHdmiSet writes the loopout settings and asks the AV server to
// reload. The config is saved even when no AV server is running.
func (s *Server) handleHdmiSet(raw interface{}) Response {
	doc, err := objectValue(raw)
	if err != nil {
		return errorResponse(err)
	}
	if err := s.store.SetTvserverConfig(doc); err != nil {
		return errorResponse(err)
	}

	if s.svc.AVServer != nil {
		_ = s.svc.AVServer.Reload(s.ctx)
	}

	s.emit(types.SignalTvserverConfigChanged, "hdmi-set", doc)
	return Response{Success: true, Message: "HDMI configuration saved"}
}

func objectValue(raw interface{}) (*state.Value, error) {
	doc, err := state.FromInterface(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", state.ErrInvalidInput, err)
	}
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: configuration must be an object, got %s", state.ErrInvalidInput, doc.Kind())
	}
	return doc, nil
}

func (s *Server) handleHistory(limit int, signals []string) Response {
	if s.journal == nil {
		return Response{Success: false, Error: "change history is disabled", Code: state.KindOperationFailed}
	}
	if limit <= 0 {
		limit = defaultHistoryQuery
	}

	records, err := s.journal.Recent(limit, signals)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Data: records}
}

// decodeInto converts a decoded JSON value into a typed struct
func decodeInto(raw interface{}, target interface{}) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", state.ErrInvalidInput, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %w", state.ErrInvalidInput, err)
	}
	return nil
}
