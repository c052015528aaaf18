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
	"errors"
	"fmt"

	"github.com/we-are-mono/streambox-settings/state"
	"github.com/we-are-mono/streambox-settings/types"
)

var errServiceUnavailable = errors.New("service unavailable")

func unavailable(name string) Response {
	return errorResponse(fmt.Errorf("%w: %s", errServiceUnavailable, name))
}

func (s *Server) handleBasicGet() Response {
	if s.svc.Basic == nil {
		return unavailable("basic settings")
	}
	return Response{Success: true, Data: s.svc.Basic.Settings(s.ctx)}
}

// handleBasicSet applies host settings and mirrors the ones that took
// effect into the basic section of the store
func (s *Server) handleBasicSet(raw interface{}) Response {
	if s.svc.Basic == nil {
		return unavailable("basic settings")
	}

	var settings types.BasicSettings
	if err := decodeInto(raw, &settings); err != nil {
		return errorResponse(err)
	}

	applied, applyErr := s.svc.Basic.Apply(s.ctx, settings)

	mirrored := map[string]string{
		"basic.hostname": applied.Hostname,
		"basic.timezone": applied.Timezone,
		"basic.locale":   applied.Locale,
	}
	changed := applied.Hostname != "" || applied.Timezone != "" || applied.Locale != ""

	if changed {
		err := s.store.Update(func(doc *state.Value) {
			for path, v := range mirrored {
				if v != "" {
					state.Assign(doc, path, state.String(v))
				}
			}
		})
		if err != nil {
			return errorResponse(err)
		}
	}
	if changed || applied.NTP != nil {
		s.emit(types.SignalBasicSettingsChanged, "basic-set", applied)
	}

	if applyErr != nil {
		resp := errorResponse(applyErr)
		resp.Data = applied
		return resp
	}
	return Response{Success: true, Message: "Basic settings applied", Data: applied}
}

func (s *Server) handleTimezones() Response {
	if s.svc.Basic == nil {
		return unavailable("basic settings")
	}
	return Response{Success: true, Data: s.svc.Basic.Timezones(s.ctx)}
}

func (s *Server) handleLocales() Response {
	if s.svc.Basic == nil {
		return unavailable("basic settings")
	}
	return Response{Success: true, Data: s.svc.Basic.Locales(s.ctx)}
}

func (s *Server) handleNetworkStatus() Response {
	if s.svc.Network == nil {
		return unavailable("network")
	}
	status, err := s.svc.Network.Status()
	if err != nil {
		return errorResponse(fmt.Errorf("failed to get network status: %w", err))
	}
	return Response{Success: true, Data: status}
}

func (s *Server) handleAudioDevices() Response {
	if s.svc.Audio == nil {
		return unavailable("audio")
	}
	return Response{Success: true, Data: s.svc.Audio.Devices(s.ctx)}
}

func (s *Server) handleStorageInfo() Response {
	if s.svc.Storage == nil {
		return unavailable("storage")
	}
	filesystems, err := s.svc.Storage.Filesystems(s.ctx)
	if err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Data: filesystems}
}

func (s *Server) handleMount(device string) Response {
	if s.svc.Storage == nil {
		return unavailable("storage")
	}
	mountPoint, err := s.svc.Storage.Mount(s.ctx, device)
	if err != nil {
		return errorResponse(err)
	}
	return Response{
		Success: true,
		Message: fmt.Sprintf("Mounted %s at %s", device, mountPoint),
		Data:    map[string]string{"device": device, "mount_point": mountPoint},
	}
}

func (s *Server) handleUnmount(device string) Response {
	if s.svc.Storage == nil {
		return unavailable("storage")
	}
	if err := s.svc.Storage.Unmount(s.ctx, device); err != nil {
		return errorResponse(err)
	}
	return Response{Success: true, Message: fmt.Sprintf("Unmounted %s", device)}
}
