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
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/vishvananda/netlink"
	"github.com/we-are-mono/streambox-settings/types"
)

const resolvConfPath = "/etc/resolv.conf"

// NetworkInspector reports the runtime network state from netlink.
type NetworkInspector struct {
	netlink NetlinkClient
	fs      FilesystemClient
}

// NewNetworkInspector creates a NetworkInspector with the given clients.
func NewNetworkInspector(nl NetlinkClient, fs FilesystemClient) *NetworkInspector {
	return &NetworkInspector{netlink: nl, fs: fs}
}

// NewDefaultNetworkInspector creates a NetworkInspector with real system clients.
func NewDefaultNetworkInspector() *NetworkInspector {
	return NewNetworkInspector(NewDefaultNetlinkClient(), NewDefaultFilesystemClient())
}

// Status gathers link state, addresses, the default gateway and resolvers.
func (n *NetworkInspector) Status() (*types.NetworkStatus, error) {
	links, err := n.netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	status := &types.NetworkStatus{Interfaces: []types.InterfaceStatus{}}
	names := make(map[int]string, len(links))

	for _, link := range links {
		attrs := link.Attrs()
		names[attrs.Index] = attrs.Name

		// Skip loopback
		if attrs.Flags&net.FlagLoopback != 0 || attrs.Name == "lo" {
			continue
		}

		iface := types.InterfaceStatus{
			Name:  attrs.Name,
			Type:  interfaceType(attrs.Name),
			State: linkState(attrs),
			MTU:   attrs.MTU,
		}
		if len(attrs.HardwareAddr) > 0 {
			iface.MAC = attrs.HardwareAddr.String()
		}

		if addrs, err := n.netlink.AddrList(link, netlink.FAMILY_ALL); err == nil {
			for _, addr := range addrs {
				if addr.IPNet != nil {
					iface.Addresses = append(iface.Addresses, addr.IPNet.String())
				}
			}
		}

		status.Interfaces = append(status.Interfaces, iface)
	}

	sort.Slice(status.Interfaces, func(i, j int) bool {
		return status.Interfaces[i].Name < status.Interfaces[j].Name
	})

	if routes, err := n.netlink.RouteList(nil, netlink.FAMILY_V4); err == nil {
		for _, route := range routes {
			if isDefaultRoute(route) && route.Gw != nil {
				status.DefaultGateway = route.Gw.String()
				status.GatewayDevice = names[route.LinkIndex]
				break
			}
		}
	}

	status.DNSServers = n.nameservers()
	return status, nil
}

func (n *NetworkInspector) nameservers() []string {
	data, err := n.fs.ReadFile(resolvConfPath)
	if err != nil {
		return nil
	}
	return parseNameservers(string(data))
}

func parseNameservers(content string) []string {
	var servers []string
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	return servers
}

func isDefaultRoute(route netlink.Route) bool {
	if route.Dst == nil {
		return true
	}
	ones, _ := route.Dst.Mask.Size()
	return ones == 0 && route.Dst.IP.IsUnspecified()
}

// interfaceType classifies a link by its conventional name prefix
func interfaceType(name string) string {
	switch {
	case strings.HasPrefix(name, "eth"), strings.HasPrefix(name, "enp"), strings.HasPrefix(name, "end"):
		return "wired"
	case strings.HasPrefix(name, "wlan"), strings.HasPrefix(name, "wlp"):
		return "wifi"
	case strings.HasPrefix(name, "br"):
		return "bridge"
	default:
		return "other"
	}
}

func linkState(attrs *netlink.LinkAttrs) string {
	switch attrs.OperState {
	case netlink.OperUp:
		return "up"
	case netlink.OperDown, netlink.OperLowerLayerDown, netlink.OperNotPresent:
		return "down"
	}
	if attrs.Flags&net.FlagUp != 0 {
		return "up"
	}
	return "unknown"
}
