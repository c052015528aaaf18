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

// DefaultSchema returns a fresh copy of the built-in settings document.
// It is the base of every load, import and profile restore.
func DefaultSchema() *Value {
	return Object(map[string]*Value{
		"basic": Object(map[string]*Value{
			"hostname":   String("streambox"),
			"timezone":   String("UTC"),
			"locale":     String("en_US.UTF-8"),
			"ntp_server": String("pool.ntp.org"),
		}),
		"network": Object(map[string]*Value{
			"wired": Object(map[string]*Value{
				"interface":   String("eth0"),
				"method":      String("dhcp"),
				"ip_address":  Null(),
				"netmask":     Null(),
				"gateway":     Null(),
				"dns_servers": List(),
			}),
			"wifi_client": Object(map[string]*Value{
				"interface":   String("wlan0"),
				"ssid":        Null(),
				"security":    Null(),
				"password":    Null(),
				"method":      String("dhcp"),
				"ip_address":  Null(),
				"netmask":     Null(),
				"gateway":     Null(),
				"dns_servers": List(),
			}),
			"wifi_ap": Object(map[string]*Value{
				"enabled":        Bool(false),
				"interface":      String("wlan0"),
				"ssid":           String("StreamBox-AP"),
				"security":       String("WPA2"),
				"password":       Null(),
				"dhcp_enabled":   Bool(true),
				"ip_address":     String("192.168.4.1"),
				"ip_range_start": String("192.168.4.100"),
				"ip_range_end":   String("192.168.4.200"),
			}),
		}),
	})
}

// DefaultHdmiConfig returns the loopout defaults shipped with streambox-tv.
func DefaultHdmiConfig() *Value {
	return Object(map[string]*Value{
		"video": Object(map[string]*Value{
			"game_mode":   Number(2),
			"vrr_mode":    Number(2),
			"hdmi_source": String("HDMI2"),
		}),
		"audio": Object(map[string]*Value{
			"enabled":         Bool(true),
			"capture_device":  String("hw:0,2"),
			"playback_device": String("hw:0,0"),
			"latency_us":      Number(10000),
			"sample_format":   String("S16_LE"),
			"channels":        Number(2),
			"sample_rate":     Number(48000),
		}),
		"hdcp": Object(map[string]*Value{
			"enabled": Bool(false),
			"version": String("auto"),
		}),
		"debug": Object(map[string]*Value{
			"trace_level": Number(0),
		}),
	})
}
