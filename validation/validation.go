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

// Package validation provides reusable validation helpers for settings documents.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// ValidateIP validates that a string is a valid IPv4 or IPv6 address.
func ValidateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("IP address cannot be empty")
	}

	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}

	return nil
}

// ValidateCIDR validates that a string is valid CIDR notation.
func ValidateCIDR(cidr string) error {
	if cidr == "" {
		return fmt.Errorf("CIDR cannot be empty")
	}

	// Special case: "default" is allowed for default routes
	if cidr == "default" {
		return nil
	}

	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR notation %s: %w", cidr, err)
	}

	return nil
}

// ValidateDomain validates a DNS domain name.
// Allows standard domain names and wildcards (e.g., "*.example.com").
func ValidateDomain(domain string) error {
	if domain == "" {
		return nil // Empty domain is often optional
	}

	// Basic domain name regex - allows letters, numbers, hyphens, dots, and wildcards
	// RFC 1035 compliant with wildcard support
	domainRegex := regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain name: %s", domain)
	}

	// Check total length (RFC 1035: max 253 characters)
	if len(domain) > 253 {
		return fmt.Errorf("domain name too long: %s (max 253 characters)", domain)
	}

	// Check individual label length (max 63 characters)
	labels := strings.Split(strings.TrimPrefix(domain, "*."), ".")
	for _, label := range labels {
		if len(label) > 63 {
			return fmt.Errorf("domain label too long in %s (max 63 characters per label)", domain)
		}
	}

	return nil
}

// ValidateMAC validates a MAC address in common formats.
// Accepts formats: "00:11:22:33:44:55", "00-11-22-33-44-55", "0011.2233.4455"
func ValidateMAC(mac string) error {
	if mac == "" {
		return nil // Empty MAC is often optional
	}

	// Try parsing as hardware address
	_, err := net.ParseMAC(mac)
	if err != nil {
		return fmt.Errorf("invalid MAC address %s: %w", mac, err)
	}

	return nil
}

// ValidateMTU validates that an MTU value is within reasonable bounds.
// RFC 791: Minimum IPv4 MTU is 68 bytes
// Practical maximum is 65535 (jumbo frames go higher but are uncommon)
func ValidateMTU(mtu int) error {
	if mtu < 68 || mtu > 65535 {
		return fmt.Errorf("MTU %d out of valid range [68, 65535]", mtu)
	}
	return nil
}

// ValidateNetmask validates an IPv4 netmask.
// Accepts formats: "255.255.255.0" (dotted decimal) or "/24" (CIDR prefix)
func ValidateNetmask(netmask string) error {
	if netmask == "" {
		return fmt.Errorf("netmask cannot be empty")
	}

	// Check if it's CIDR prefix notation (e.g., "/24")
	if strings.HasPrefix(netmask, "/") {
		prefix := strings.TrimPrefix(netmask, "/")
		prefixLen, err := strconv.Atoi(prefix)
		if err != nil {
			return fmt.Errorf("invalid CIDR prefix %s: %w", netmask, err)
		}
		if prefixLen < 0 || prefixLen > 32 {
			return fmt.Errorf("invalid CIDR prefix %s: must be between 0 and 32", netmask)
		}
		return nil
	}

	// Check if it's dotted decimal notation
	ip := net.ParseIP(netmask)
	if ip == nil {
		return fmt.Errorf("invalid netmask format %s (expected dotted decimal or CIDR prefix)", netmask)
	}

	// Verify it's a valid netmask (contiguous 1 bits followed by 0 bits)
	ipv4 := ip.To4()
	if ipv4 == nil {
		return fmt.Errorf("invalid netmask %s (not an IPv4 address)", netmask)
	}

	// Convert to uint32 and check if it's a valid netmask
	mask := uint32(ipv4[0])<<24 | uint32(ipv4[1])<<16 | uint32(ipv4[2])<<8 | uint32(ipv4[3])

	// A valid netmask has contiguous 1s followed by contiguous 0s
	// Invert it, add 1, and check if it's a power of 2
	inverted := ^mask
	if (inverted+1)&inverted != 0 && mask != 0 {
		return fmt.Errorf("invalid netmask %s (not a valid contiguous netmask)", netmask)
	}

	return nil
}

// ValidateHostname validates a static hostname as accepted by hostnamectl.
// A single trailing dot is allowed.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if len(hostname) > 253 {
		return fmt.Errorf("hostname too long: %d characters (max 253)", len(hostname))
	}
	if strings.HasPrefix(hostname, "-") {
		return fmt.Errorf("hostname cannot start with a hyphen: %s", hostname)
	}
	for _, r := range strings.TrimSuffix(hostname, ".") {
		if !isHostnameRune(r) {
			return fmt.Errorf("invalid character %q in hostname %s", r, hostname)
		}
	}
	return nil
}

func isHostnameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '.'
}

// ValidateInterfaceName validates a Linux network interface name (IFNAMSIZ - 1).
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if len(name) > 15 {
		return fmt.Errorf("interface name %s too long (max 15 characters)", name)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/ \t\n:") {
		return fmt.Errorf("invalid interface name: %s", name)
	}
	return nil
}

// ValidateSSID validates an 802.11 SSID (1 to 32 bytes).
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return fmt.Errorf("SSID cannot be empty")
	}
	if len(ssid) > 32 {
		return fmt.Errorf("SSID too long: %d bytes (max 32)", len(ssid))
	}
	return nil
}

// ValidatePassphrase validates a WPA passphrase (8 to 63 printable ASCII characters).
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) < 8 || len(passphrase) > 63 {
		return fmt.Errorf("passphrase must be 8 to 63 characters, got %d", len(passphrase))
	}
	for _, r := range passphrase {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("passphrase contains a non-printable character")
		}
	}
	return nil
}
