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
	"context"
	"time"

	"github.com/vishvananda/netlink"
	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/system"
	"golang.org/x/sys/unix"
)

// NetworkObserver watches netlink for link, address and route changes and
// reports them, coalesced over a debounce window, through onChange.
var observerLog = logger.For("observer")

type NetworkObserver struct {
	netlink  system.NetlinkClient
	debounce time.Duration
	onChange func()

	linkCh  chan netlink.LinkUpdate
	addrCh  chan netlink.AddrUpdate
	routeCh chan netlink.RouteUpdate

	pending bool
}

// NewNetworkObserver creates an observer; onChange runs on the observer goroutine.
func NewNetworkObserver(nl system.NetlinkClient, debounce time.Duration, onChange func()) *NetworkObserver {
	return &NetworkObserver{
		netlink:  nl,
		debounce: debounce,
		onChange: onChange,
		linkCh:   make(chan netlink.LinkUpdate),
		addrCh:   make(chan netlink.AddrUpdate),
		routeCh:  make(chan netlink.RouteUpdate),
	}
}

// Run subscribes to netlink events and blocks until ctx is cancelled
func (o *NetworkObserver) Run(ctx context.Context) error {
	monitorDone := make(chan struct{})
	defer close(monitorDone)

	if err := o.netlink.LinkSubscribe(o.linkCh, monitorDone); err != nil {
		observerLog.Error("Failed to subscribe to link events",
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}
	if err := o.netlink.AddrSubscribe(o.addrCh, monitorDone); err != nil {
		observerLog.Error("Failed to subscribe to address events",
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}
	if err := o.netlink.RouteSubscribe(o.routeCh, monitorDone); err != nil {
		observerLog.Error("Failed to subscribe to route events",
			logger.Field{Key: "error", Value: err.Error()})
		return err
	}

	observerLog.Info("Network observer started")

	// Armed by the first event of each window
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case update := <-o.linkCh:
			o.handleLinkUpdate(update)
			o.schedule(timer)
		case update := <-o.addrCh:
			o.handleAddrUpdate(update)
			o.schedule(timer)
		case update := <-o.routeCh:
			o.handleRouteUpdate(update)
			o.schedule(timer)
		case <-timer.C:
			o.flush()
		case <-ctx.Done():
			observerLog.Info("Network observer stopped")
			return nil
		}
	}
}

// schedule starts the debounce window unless one is already open
func (o *NetworkObserver) schedule(timer *time.Timer) {
	if o.pending {
		return
	}
	o.pending = true
	timer.Reset(o.debounce)
}

func (o *NetworkObserver) flush() {
	o.pending = false

	if o.onChange != nil {
		o.onChange()
	}
}

func (o *NetworkObserver) handleLinkUpdate(update netlink.LinkUpdate) {
	attrs := update.Link.Attrs()
	flags := update.IfInfomsg.Flags

	observerLog.Info("Link change detected",
		logger.Field{Key: "interface", Value: attrs.Name},
		logger.Field{Key: "index", Value: attrs.Index},
		logger.Field{Key: "up", Value: flags&unix.IFF_UP != 0},
		logger.Field{Key: "running", Value: flags&unix.IFF_RUNNING != 0},
		logger.Field{Key: "mtu", Value: attrs.MTU})
}

func (o *NetworkObserver) handleAddrUpdate(update netlink.AddrUpdate) {
	linkName := "unknown"
	if link, err := o.netlink.LinkByIndex(update.LinkIndex); err == nil {
		linkName = link.Attrs().Name
	}

	action := "removed"
	if update.NewAddr {
		action = "added"
	}

	observerLog.Info("Address change detected",
		logger.Field{Key: "action", Value: action},
		logger.Field{Key: "interface", Value: linkName},
		logger.Field{Key: "address", Value: update.LinkAddress.String()})
}

func (o *NetworkObserver) handleRouteUpdate(update netlink.RouteUpdate) {
	action := "modified"
	switch update.Type {
	case unix.RTM_NEWROUTE:
		action = "added"
	case unix.RTM_DELROUTE:
		action = "deleted"
	}

	dst := "default"
	if update.Route.Dst != nil {
		dst = update.Route.Dst.String()
	}

	observerLog.Info("Route change detected",
		logger.Field{Key: "action", Value: action},
		logger.Field{Key: "dst", Value: dst},
		logger.Field{Key: "via", Value: update.Route.Gw.String()})
}
