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
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vishvananda/netlink"
)

// MockNetlinkClient is a mock implementation of NetlinkClient for testing.
type MockNetlinkClient struct {
	mu sync.Mutex

	// State
	Links     []netlink.Link
	Addresses map[string][]netlink.Addr
	Routes    []netlink.Route

	// Subscribers registered through the Subscribe methods
	LinkSubscribers  []chan<- netlink.LinkUpdate
	AddrSubscribers  []chan<- netlink.AddrUpdate
	RouteSubscribers []chan<- netlink.RouteUpdate

	// Call counters for verification
	LinkListCalls  int
	AddrListCalls  int
	RouteListCalls int

	// Error injection for testing error paths
	LinkListError  error
	AddrListError  error
	RouteListError error
	SubscribeError error
}

// NewMockNetlinkClient creates a new MockNetlinkClient.
func NewMockNetlinkClient() *MockNetlinkClient {
	return &MockNetlinkClient{
		Addresses: make(map[string][]netlink.Addr),
	}
}

func (m *MockNetlinkClient) LinkList() ([]netlink.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkListCalls++

	if m.LinkListError != nil {
		return nil, m.LinkListError
	}
	return append([]netlink.Link(nil), m.Links...), nil
}

func (m *MockNetlinkClient) LinkByIndex(index int) (netlink.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.Links {
		if link.Attrs().Index == index {
			return link, nil
		}
	}
	return nil, fmt.Errorf("Link not found")
}

func (m *MockNetlinkClient) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddrListCalls++

	if m.AddrListError != nil {
		return nil, m.AddrListError
	}
	return m.Addresses[link.Attrs().Name], nil
}

func (m *MockNetlinkClient) RouteList(link netlink.Link, family int) ([]netlink.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RouteListCalls++

	if m.RouteListError != nil {
		return nil, m.RouteListError
	}
	return m.Routes, nil
}

func (m *MockNetlinkClient) LinkSubscribe(ch chan<- netlink.LinkUpdate, done <-chan struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeError != nil {
		return m.SubscribeError
	}
	m.LinkSubscribers = append(m.LinkSubscribers, ch)
	return nil
}

func (m *MockNetlinkClient) AddrSubscribe(ch chan<- netlink.AddrUpdate, done <-chan struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeError != nil {
		return m.SubscribeError
	}
	m.AddrSubscribers = append(m.AddrSubscribers, ch)
	return nil
}

func (m *MockNetlinkClient) RouteSubscribe(ch chan<- netlink.RouteUpdate, done <-chan struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubscribeError != nil {
		return m.SubscribeError
	}
	m.RouteSubscribers = append(m.RouteSubscribers, ch)
	return nil
}

// Subscribed reports whether link, address and route subscriptions are all registered.
func (m *MockNetlinkClient) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.LinkSubscribers) > 0 && len(m.AddrSubscribers) > 0 && len(m.RouteSubscribers) > 0
}

// SendLinkUpdate delivers update to every link subscriber.
func (m *MockNetlinkClient) SendLinkUpdate(update netlink.LinkUpdate) {
	m.mu.Lock()
	subs := append([]chan<- netlink.LinkUpdate(nil), m.LinkSubscribers...)
	m.mu.Unlock()
	for _, ch := range subs {
		ch <- update
	}
}

// SendAddrUpdate delivers update to every address subscriber.
func (m *MockNetlinkClient) SendAddrUpdate(update netlink.AddrUpdate) {
	m.mu.Lock()
	subs := append([]chan<- netlink.AddrUpdate(nil), m.AddrSubscribers...)
	m.mu.Unlock()
	for _, ch := range subs {
		ch <- update
	}
}

// MockFilesystemClient is a mock implementation of FilesystemClient for testing.
type MockFilesystemClient struct {
	mu sync.Mutex

	// State
	Files map[string][]byte
	Dirs  []string
	Usage map[string]DiskUsage

	// Error injection
	ReadFileError error
	MkdirAllError error
	StatfsError   error
}

// NewMockFilesystemClient creates a new MockFilesystemClient.
func NewMockFilesystemClient() *MockFilesystemClient {
	return &MockFilesystemClient{
		Files: make(map[string][]byte),
		Usage: make(map[string]DiskUsage),
	}
}

func (m *MockFilesystemClient) ReadFile(filename string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}

	data, ok := m.Files[filename]
	if !ok {
		return nil, fmt.Errorf("file not found: %s: %w", filename, os.ErrNotExist)
	}
	return data, nil
}

func (m *MockFilesystemClient) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MkdirAllError != nil {
		return m.MkdirAllError
	}
	m.Dirs = append(m.Dirs, path)
	return nil
}

func (m *MockFilesystemClient) Statfs(path string) (DiskUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatfsError != nil {
		return DiskUsage{}, m.StatfsError
	}
	usage, ok := m.Usage[path]
	if !ok {
		return DiskUsage{}, fmt.Errorf("statfs %s: no such file or directory", path)
	}
	return usage, nil
}

// MockCommandRunner is a mock implementation of CommandRunner for testing.
type MockCommandRunner struct {
	mu sync.Mutex

	// State
	CommandOutputs map[string][]byte
	CommandErrors  map[string]error

	// Call tracking
	Commands [][]string
	RunCalls int

	// Error injection for every command
	RunError error
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		CommandOutputs: make(map[string][]byte),
		CommandErrors:  make(map[string]error),
		Commands:       make([][]string, 0),
	}
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunCalls++

	cmd := append([]string{name}, args...)
	m.Commands = append(m.Commands, cmd)

	if m.RunError != nil {
		return nil, m.RunError
	}

	key := commandKey(name, args)
	if err, ok := m.CommandErrors[key]; ok {
		return nil, err
	}
	return m.CommandOutputs[key], nil
}

// SetOutput sets the output for a specific command.
func (m *MockCommandRunner) SetOutput(name string, args []string, output []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandOutputs[commandKey(name, args)] = output
}

// SetError makes a specific command fail with err.
func (m *MockCommandRunner) SetError(name string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandErrors[commandKey(name, args)] = err
}

// Ran reports whether the given command line was executed.
func (m *MockCommandRunner) Ran(name string, args ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := commandKey(name, args)
	for _, cmd := range m.Commands {
		if commandKey(cmd[0], cmd[1:]) == key {
			return true
		}
	}
	return false
}

func commandKey(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
