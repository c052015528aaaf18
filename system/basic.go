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
	"sort"
	"strings"

	"github.com/we-are-mono/streambox-settings/daemon/logger"
	"github.com/we-are-mono/streambox-settings/types"
	"github.com/we-are-mono/streambox-settings/validation"
)

// ErrInvalidSetting is returned when a requested value is rejected before
// any system tool is invoked.
var ErrInvalidSetting = errors.New("invalid setting")

var log = logger.For("system")

// Values reported when the corresponding tool is unavailable
const (
	fallbackHostname = "streambox"
	fallbackTimezone = "UTC"
	fallbackLocale   = "en_US.UTF-8"
)

var fallbackLocales = []string{
	"en_US.utf8", "en_US.UTF-8", "C.utf8", "C.UTF-8", "en_GB.utf8",
	"zh_CN.utf8", "zh_TW.utf8", "ja_JP.utf8", "ko_KR.utf8",
	"de_DE.utf8", "fr_FR.utf8", "es_ES.utf8",
}

// BasicManager reads and applies host identity settings through
// hostnamectl, timedatectl and localectl.
type BasicManager struct {
	cmd CommandRunner
}

// NewBasicManager creates a BasicManager with the given command runner.
func NewBasicManager(cmd CommandRunner) *BasicManager {
	return &BasicManager{cmd: cmd}
}

// NewDefaultBasicManager creates a BasicManager running real commands.
func NewDefaultBasicManager() *BasicManager {
	return NewBasicManager(NewDefaultCommandRunner(DefaultCommandTimeout))
}

func (m *BasicManager) output(ctx context.Context, name string, args ...string) (string, bool) {
	out, err := m.cmd.Run(ctx, name, args...)
	if err != nil {
		log.Warn("Command failed",
			logger.Field{Key: "command", Value: commandKey(name, args)},
			logger.Field{Key: "error", Value: err.Error()})
		return "", false
	}
	return trimOutput(out), true
}

// Hostname returns the static hostname.
func (m *BasicManager) Hostname(ctx context.Context) string {
	if hostname, ok := m.output(ctx, "hostnamectl", "--static"); ok && hostname != "" {
		return hostname
	}
	return fallbackHostname
}

// Timezone returns the configured timezone.
func (m *BasicManager) Timezone(ctx context.Context) string {
	if tz, ok := m.output(ctx, "timedatectl", "show", "-p", "Timezone", "--value"); ok && tz != "" {
		return tz
	}
	return fallbackTimezone
}

// Locale returns the system LANG setting.
func (m *BasicManager) Locale(ctx context.Context) string {
	out, ok := m.output(ctx, "localectl", "status", "--no-pager")
	if ok {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			// "System Locale: LANG=en_US.UTF-8" on the first line
			if idx := strings.Index(line, "LANG="); idx >= 0 {
				return strings.TrimSpace(line[idx+len("LANG="):])
			}
		}
	}
	return fallbackLocale
}

// NTP reports whether network time synchronisation is enabled.
func (m *BasicManager) NTP(ctx context.Context) bool {
	out, ok := m.output(ctx, "timedatectl", "show", "-p", "NTP", "--value")
	if !ok {
		return true
	}
	return out == "yes"
}

// Settings gathers the current basic settings.
func (m *BasicManager) Settings(ctx context.Context) types.BasicSettings {
	ntp := m.NTP(ctx)
	return types.BasicSettings{
		Hostname: m.Hostname(ctx),
		Timezone: m.Timezone(ctx),
		Locale:   m.Locale(ctx),
		NTP:      &ntp,
	}
}

// Timezones lists the timezones known to timedatectl.
func (m *BasicManager) Timezones(ctx context.Context) []string {
	out, ok := m.output(ctx, "timedatectl", "list-timezones")
	if !ok || out == "" {
		return []string{fallbackTimezone}
	}
	return splitLines(out)
}

// Locales lists the installed locales, sorted and de-duplicated.
func (m *BasicManager) Locales(ctx context.Context) []string {
	out, ok := m.output(ctx, "locale", "-a")
	if ok {
		if locales := uniqueSorted(splitLines(out)); len(locales) > 0 {
			return locales
		}
	}
	log.Warn("Failed to get locales from system, using fallback list")
	return append([]string(nil), fallbackLocales...)
}

// SetHostname validates and applies a static hostname.
func (m *BasicManager) SetHostname(ctx context.Context, hostname string) error {
	if err := validation.ValidateHostname(hostname); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	if _, err := m.cmd.Run(ctx, "hostnamectl", "set-hostname", hostname); err != nil {
		return fmt.Errorf("failed to set hostname: %w", err)
	}
	log.Info("Hostname set", logger.Field{Key: "hostname", Value: hostname})
	return nil
}

// SetTimezone applies a timezone that timedatectl knows about.
func (m *BasicManager) SetTimezone(ctx context.Context, timezone string) error {
	if !contains(m.Timezones(ctx), timezone) {
		return fmt.Errorf("%w: unknown timezone %s", ErrInvalidSetting, timezone)
	}
	if _, err := m.cmd.Run(ctx, "timedatectl", "set-timezone", timezone); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}
	log.Info("Timezone set", logger.Field{Key: "timezone", Value: timezone})
	return nil
}

// SetLocale applies an installed locale as LANG.
func (m *BasicManager) SetLocale(ctx context.Context, locale string) error {
	if !contains(m.Locales(ctx), locale) {
		return fmt.Errorf("%w: unknown locale %s", ErrInvalidSetting, locale)
	}
	if _, err := m.cmd.Run(ctx, "localectl", "set-locale", "LANG="+locale); err != nil {
		return fmt.Errorf("failed to set locale: %w", err)
	}
	log.Info("Locale set", logger.Field{Key: "locale", Value: locale})
	return nil
}

// SetNTP enables or disables network time synchronisation.
func (m *BasicManager) SetNTP(ctx context.Context, enabled bool) error {
	if _, err := m.cmd.Run(ctx, "timedatectl", "set-ntp", fmt.Sprintf("%t", enabled)); err != nil {
		return fmt.Errorf("failed to set NTP: %w", err)
	}
	log.Info("NTP set", logger.Field{Key: "enabled", Value: enabled})
	return nil
}

// Apply sets every non-empty field of settings. All fields are attempted;
// the returned error joins every failure and applied lists what succeeded.
func (m *BasicManager) Apply(ctx context.Context, settings types.BasicSettings) (applied types.BasicSettings, err error) {
	var errs []error

	if settings.Hostname != "" {
		if e := m.SetHostname(ctx, settings.Hostname); e != nil {
			errs = append(errs, e)
		} else {
			applied.Hostname = settings.Hostname
		}
	}
	if settings.Timezone != "" {
		if e := m.SetTimezone(ctx, settings.Timezone); e != nil {
			errs = append(errs, e)
		} else {
			applied.Timezone = settings.Timezone
		}
	}
	if settings.Locale != "" {
		if e := m.SetLocale(ctx, settings.Locale); e != nil {
			errs = append(errs, e)
		} else {
			applied.Locale = settings.Locale
		}
	}
	if settings.NTP != nil {
		if e := m.SetNTP(ctx, *settings.NTP); e != nil {
			errs = append(errs, e)
		} else {
			ntp := *settings.NTP
			applied.NTP = &ntp
		}
	}

	return applied, errors.Join(errs...)
}

func trimOutput(out []byte) string {
	return strings.TrimSpace(string(out))
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
