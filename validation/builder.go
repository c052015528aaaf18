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
	"errors"
	"fmt"
)

// ErrorCollector accumulates validation errors so that every problem in a
// settings document is reported at once.
type ErrorCollector struct {
	errs []error
	ctx  string // Section prefix, e.g. "network.wired"
}

// NewCollector creates a new error collector.
func NewCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// WithContext sets the section prefix for subsequent errors
// ("network.wifi_ap: ...").
func (ec *ErrorCollector) WithContext(ctx string) *ErrorCollector {
	ec.ctx = ctx
	return ec
}

// Check collects err, prefixed with the current section. Nil is ignored.
func (ec *ErrorCollector) Check(err error) {
	if err != nil {
		if ec.ctx != "" {
			ec.errs = append(ec.errs, fmt.Errorf("%s: %w", ec.ctx, err))
		} else {
			ec.errs = append(ec.errs, err)
		}
	}
}

// CheckMsg collects err with msg inserted between the section prefix and
// the error, typically a field name.
func (ec *ErrorCollector) CheckMsg(err error, msg string) {
	if err != nil {
		if ec.ctx != "" {
			ec.errs = append(ec.errs, fmt.Errorf("%s: %s: %w", ec.ctx, msg, err))
		} else {
			ec.errs = append(ec.errs, fmt.Errorf("%s: %w", msg, err))
		}
	}
}

// Error returns the collected errors joined, one per line, or nil.
func (ec *ErrorCollector) Error() error {
	return errors.Join(ec.errs...)
}
