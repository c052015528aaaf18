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

// Package system provides low-level system integration for host settings, network status, audio and storage.
package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/types"
)

const (
	mountsPath = "/proc/mounts"
	mediaRoot  = "/media"
)

// ErrInvalidDevice is returned for device names outside /dev.
var ErrInvalidDevice = errors.New("invalid device")

// StorageManager lists, mounts and unmounts block device filesystems.
type StorageManager struct {
	cmd CommandRunner
	fs  FilesystemClient
}

// NewStorageManager creates a StorageManager with the given clients.
func NewStorageManager(cmd CommandRunner, fs FilesystemClient) *StorageManager {
	return &StorageManager{cmd: cmd, fs: fs}
}

// Filesystems lists mounted block device filesystems with their usage.
func (s *StorageManager) Filesystems(ctx context.Context) ([]types.Filesystem, error) {
	data, err := s.fs.ReadFile(mountsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", mountsPath, err)
	}

	filesystems := []types.Filesystem{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		device, mountPoint, fstype := fields[0], unescapeMount(fields[1]), fields[2]
		if !strings.HasPrefix(device, "/dev/") || fstype == "tmpfs" || fstype == "devtmpfs" {
			continue
		}
		if seen[mountPoint] {
			continue
		}
		seen[mountPoint] = true

		fsInfo := types.Filesystem{
			Device:     device,
			MountPoint: mountPoint,
			FSType:     fstype,
			Label:      s.label(ctx, device),
		}
		if usage, err := s.fs.Statfs(mountPoint); err == nil {
			fsInfo.Size = usage.Size
			fsInfo.Used = usage.Used
			fsInfo.Available = usage.Available
			fsInfo.UsePercent = usePercent(usage)
		} else {
			log.Warn("Failed to stat filesystem",
				logger.Field{Key: "mount_point", Value: mountPoint},
				logger.Field{Key: "error", Value: err.Error()})
		}
		filesystems = append(filesystems, fsInfo)
	}
	return filesystems, nil
}

// Mount mounts device under /media, named after its label or device name,
// and returns the mount point.
func (s *StorageManager) Mount(ctx context.Context, device string) (string, error) {
	device, err := NormalizeDevice(device)
	if err != nil {
		return "", err
	}

	name := sanitizeLabel(s.label(ctx, device))
	if name == "" {
		name = filepath.Base(device)
	}
	mountPoint := filepath.Join(mediaRoot, name)

	if err := s.fs.MkdirAll(mountPoint, 0755); err != nil {
		return "", fmt.Errorf("failed to create mount point %s: %w", mountPoint, err)
	}
	if _, err := s.cmd.Run(ctx, "mount", device, mountPoint); err != nil {
		log.Error("Mount failed",
			logger.Field{Key: "device", Value: device},
			logger.Field{Key: "error", Value: err.Error()})
		return "", fmt.Errorf("failed to mount %s: %w", device, err)
	}

	log.Info("Mounted device",
		logger.Field{Key: "device", Value: device},
		logger.Field{Key: "mount_point", Value: mountPoint})
	return mountPoint, nil
}

// Unmount unmounts device.
func (s *StorageManager) Unmount(ctx context.Context, device string) error {
	device, err := NormalizeDevice(device)
	if err != nil {
		return err
	}
	if _, err := s.cmd.Run(ctx, "umount", device); err != nil {
		log.Error("Unmount failed",
			logger.Field{Key: "device", Value: device},
			logger.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("failed to unmount %s: %w", device, err)
	}
	log.Info("Unmounted device", logger.Field{Key: "device", Value: device})
	return nil
}

// NormalizeDevice prefixes bare device names with /dev/ and rejects paths
// that resolve outside /dev.
func NormalizeDevice(device string) (string, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return "", fmt.Errorf("%w: device cannot be empty", ErrInvalidDevice)
	}
	if !strings.HasPrefix(device, "/dev/") {
		device = "/dev/" + device
	}
	if clean := filepath.Clean(device); !strings.HasPrefix(clean, "/dev/") || clean != device {
		return "", fmt.Errorf("%w: %s", ErrInvalidDevice, device)
	}
	return device, nil
}

func (s *StorageManager) label(ctx context.Context, device string) string {
	out, err := s.cmd.Run(ctx, "lsblk", "-no", "LABEL", device)
	if err != nil {
		return ""
	}
	return trimOutput(out)
}

func sanitizeLabel(label string) string {
	label = strings.Map(func(r rune) rune {
		if r == '/' || r == 0 {
			return '_'
		}
		return r
	}, label)
	if label == "." || label == ".." {
		return ""
	}
	return label
}

// usePercent rounds up like df does
func usePercent(u DiskUsage) int {
	total := u.Used + u.Available
	if total == 0 {
		return 0
	}
	return int((u.Used*100 + total - 1) / total)
}

// unescapeMount decodes the octal escapes (\040 etc.) used in /proc/mounts
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
