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

// Package system provides low-level system integration: host identity,
// network inspection, audio devices, storage and the AV server process.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// DefaultCommandTimeout bounds every external command.
const DefaultCommandTimeout = 30 * time.Second

// NetlinkClient abstracts netlink operations for testability.
type NetlinkClient interface {
	LinkList() ([]netlink.Link, error)
	LinkByIndex(index int) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	RouteList(link netlink.Link, family int) ([]netlink.Route, error)

	// Subscriptions stop when done is closed
	LinkSubscribe(ch chan<- netlink.LinkUpdate, done <-chan struct{}) error
	AddrSubscribe(ch chan<- netlink.AddrUpdate, done <-chan struct{}) error
	RouteSubscribe(ch chan<- netlink.RouteUpdate, done <-chan struct{}) error
}

// FilesystemClient abstracts filesystem operations for testability.
type FilesystemClient interface {
	// ReadFile reads the entire file content
	ReadFile(filename string) ([]byte, error)
	// MkdirAll creates a directory and its parents
	MkdirAll(path string, perm os.FileMode) error
	// Statfs reports usage of the filesystem mounted at path
	Statfs(path string) (DiskUsage, error)
}

// DiskUsage is the capacity of a mounted filesystem in bytes.
type DiskUsage struct {
	Size      uint64
	Used      uint64
	Available uint64
}

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	// Run executes a command and returns its standard output.
	// A non-zero exit status is reported as an error carrying stderr.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultNetlinkClient implements NetlinkClient using real netlink calls.
type DefaultNetlinkClient struct{}

// NewDefaultNetlinkClient creates a new DefaultNetlinkClient.
func NewDefaultNetlinkClient() *DefaultNetlinkClient {
	return &DefaultNetlinkClient{}
}

func (c *DefaultNetlinkClient) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

func (c *DefaultNetlinkClient) LinkByIndex(index int) (netlink.Link, error) {
	return netlink.LinkByIndex(index)
}

func (c *DefaultNetlinkClient) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

func (c *DefaultNetlinkClient) RouteList(link netlink.Link, family int) ([]netlink.Route, error) {
	return netlink.RouteList(link, family)
}

func (c *DefaultNetlinkClient) LinkSubscribe(ch chan<- netlink.LinkUpdate, done <-chan struct{}) error {
	return netlink.LinkSubscribe(ch, done)
}

func (c *DefaultNetlinkClient) AddrSubscribe(ch chan<- netlink.AddrUpdate, done <-chan struct{}) error {
	return netlink.AddrSubscribe(ch, done)
}

func (c *DefaultNetlinkClient) RouteSubscribe(ch chan<- netlink.RouteUpdate, done <-chan struct{}) error {
	return netlink.RouteSubscribe(ch, done)
}

// DefaultFilesystemClient implements FilesystemClient using real filesystem operations.
type DefaultFilesystemClient struct{}

// NewDefaultFilesystemClient creates a new DefaultFilesystemClient.
func NewDefaultFilesystemClient() *DefaultFilesystemClient {
	return &DefaultFilesystemClient{}
}

func (c *DefaultFilesystemClient) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

func (c *DefaultFilesystemClient) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (c *DefaultFilesystemClient) Statfs(path string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskUsage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize)
	return DiskUsage{
		Size:      st.Blocks * bsize,
		Used:      (st.Blocks - st.Bfree) * bsize,
		Available: st.Bavail * bsize,
	}, nil
}

// DefaultCommandRunner implements CommandRunner using real command execution.
type DefaultCommandRunner struct {
	Timeout time.Duration
}

// NewDefaultCommandRunner creates a new DefaultCommandRunner.
func NewDefaultCommandRunner(timeout time.Duration) *DefaultCommandRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &DefaultCommandRunner{Timeout: timeout}
}

func (c *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out after %s", name, c.Timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return output, fmt.Errorf("%s failed: %w: %s", name, err, trimOutput(exitErr.Stderr))
		}
		return output, fmt.Errorf("%s failed: %w", name, err)
	}
	return output, nil
}
