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

import "errors"

var (
	// ErrProfileNotFound is returned when a named profile has no backing file.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidInput is returned for text that does not parse or lacks the expected shape.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage is returned when reading or writing a document fails for reasons other than absence.
	ErrStorage = errors.New("storage failure")
)

// Error kinds reported to clients.
const (
	KindNotFound        = "NotFound"
	KindInvalidInput    = "InvalidInput"
	KindIOFailure       = "IOFailure"
	KindOperationFailed = "OperationFailed"
)

// ErrorKind classifies err into one of the client-facing error kinds.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProfileNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrStorage):
		return KindIOFailure
	default:
		return KindOperationFailed
	}
}
