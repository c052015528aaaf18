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

package validation

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

var (
	addressMethods = []string{"dhcp", "static"}
	wifiSecurity   = []string{"open", "WEP", "WPA", "WPA2", "WPA3"}
)

// ValidateSettings checks the basic and network sections of a settings
// document (as decoded JSON) and reports every problem found.
// Null fields are treated as unset.
func ValidateSettings(doc map[string]interface{}) error {
	ec := NewCollector()

	if basic, ok := doc["basic"].(map[string]interface{}); ok {
		validateBasic(ec.WithContext("basic"), basic)
	}

	network, ok := doc["network"].(map[string]interface{})
	if !ok {
		return ec.Error()
	}
	if wired, ok := network["wired"].(map[string]interface{}); ok {
		validateAddressing(ec.WithContext("network.wired"), wired)
	}
	if client, ok := network["wifi_client"].(map[string]interface{}); ok {
		validateWifiClient(ec.WithContext("network.wifi_client"), client)
	}
	if ap, ok := network["wifi_ap"].(map[string]interface{}); ok {
		validateWifiAP(ec.WithContext("network.wifi_ap"), ap)
	}

	return ec.Error()
}

func validateBasic(ec *ErrorCollector, basic map[string]interface{}) {
	if hostname, ok := stringField(ec, basic, "hostname"); ok {
		ec.Check(ValidateHostname(hostname))
	}
	if server, ok := stringField(ec, basic, "ntp_server"); ok && net.ParseIP(server) == nil {
		ec.CheckMsg(ValidateDomain(server), "ntp_server")
	}
}

func validateAddressing(ec *ErrorCollector, section map[string]interface{}) {
	if name, ok := stringField(ec, section, "interface"); ok {
		ec.Check(ValidateInterfaceName(name))
	}
	if mac, ok := stringField(ec, section, "mac_address"); ok {
		ec.Check(ValidateMAC(mac))
	}
	switch mtu := section["mtu"].(type) {
	case float64:
		ec.Check(ValidateMTU(int(mtu)))
	case json.Number:
		n, err := mtu.Int64()
		if err != nil {
			ec.Check(fmt.Errorf("invalid MTU %s: must be an integer", mtu))
		} else {
			ec.Check(ValidateMTU(int(n)))
		}
	}

	method, _ := stringField(ec, section, "method")
	if method != "" && !contains(addressMethods, method) {
		ec.Check(fmt.Errorf("invalid method %s (must be one of: %s)", method, strings.Join(addressMethods, ", ")))
	}

	address, hasAddress := stringField(ec, section, "ip_address")
	netmask, hasNetmask := stringField(ec, section, "netmask")
	if method == "static" {
		if !hasAddress {
			ec.Check(fmt.Errorf("ip_address is required for static method"))
		}
		if !hasNetmask && !strings.Contains(address, "/") {
			ec.Check(fmt.Errorf("netmask is required for static method"))
		}
	}
	if hasAddress {
		if strings.Contains(address, "/") {
			ec.CheckMsg(ValidateCIDR(address), "ip_address")
		} else {
			ec.CheckMsg(ValidateIP(address), "ip_address")
		}
	}
	if hasNetmask {
		ec.CheckMsg(ValidateNetmask(netmask), "netmask")
	}
	if gateway, ok := stringField(ec, section, "gateway"); ok {
		ec.CheckMsg(ValidateIP(gateway), "gateway")
	}

	switch servers := section["dns_servers"].(type) {
	case nil:
	case []interface{}:
		for i, raw := range servers {
			server, ok := raw.(string)
			if !ok {
				ec.Check(fmt.Errorf("dns_servers[%d] must be a string", i))
				continue
			}
			ec.CheckMsg(ValidateIP(server), fmt.Sprintf("dns_servers[%d]", i))
		}
	default:
		ec.Check(fmt.Errorf("dns_servers must be a list"))
	}
}

func validateWifiClient(ec *ErrorCollector, section map[string]interface{}) {
	validateAddressing(ec, section)

	ssid, hasSSID := stringField(ec, section, "ssid")
	if hasSSID {
		ec.Check(ValidateSSID(ssid))
	}
	validateSecurity(ec, section)
}

func validateWifiAP(ec *ErrorCollector, section map[string]interface{}) {
	if name, ok := stringField(ec, section, "interface"); ok {
		ec.Check(ValidateInterfaceName(name))
	}

	enabled, _ := section["enabled"].(bool)
	ssid, hasSSID := stringField(ec, section, "ssid")
	if hasSSID {
		ec.Check(ValidateSSID(ssid))
	} else if enabled {
		ec.Check(fmt.Errorf("ssid is required when the access point is enabled"))
	}

	security := validateSecurity(ec, section)
	if enabled && strings.HasPrefix(security, "WPA") {
		if _, ok := stringField(ec, section, "password"); !ok {
			ec.Check(fmt.Errorf("password is required for %s", security))
		}
	}

	var start, end net.IP
	if address, ok := stringField(ec, section, "ip_address"); ok {
		ec.CheckMsg(ValidateIP(address), "ip_address")
	}
	if value, ok := stringField(ec, section, "ip_range_start"); ok {
		ec.CheckMsg(ValidateIP(value), "ip_range_start")
		start = net.ParseIP(value).To4()
	}
	if value, ok := stringField(ec, section, "ip_range_end"); ok {
		ec.CheckMsg(ValidateIP(value), "ip_range_end")
		end = net.ParseIP(value).To4()
	}
	if start != nil && end != nil && compareIPv4(start, end) > 0 {
		ec.Check(fmt.Errorf("ip_range_start %s is after ip_range_end %s", start, end))
	}
}

// validateSecurity checks the security mode and the password it implies,
// returning the mode.
func validateSecurity(ec *ErrorCollector, section map[string]interface{}) string {
	security, ok := stringField(ec, section, "security")
	if !ok {
		return ""
	}
	if !contains(wifiSecurity, security) {
		ec.Check(fmt.Errorf("invalid security %s (must be one of: %s)", security, strings.Join(wifiSecurity, ", ")))
		return security
	}
	if password, ok := stringField(ec, section, "password"); ok && strings.HasPrefix(security, "WPA") {
		ec.CheckMsg(ValidatePassphrase(password), "password")
	}
	return security
}

// stringField returns a non-empty string field. Values of any other type
// than string or null are reported.
func stringField(ec *ErrorCollector, section map[string]interface{}, key string) (string, bool) {
	switch v := section[key].(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	default:
		ec.Check(fmt.Errorf("%s must be a string", key))
		return "", false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func compareIPv4(a, b net.IP) int {
	for i := 0; i < net.IPv4len; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
