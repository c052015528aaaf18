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

import "strings"

// SplitPath splits a dotted path such as "network.wired.gateway" into keys.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// Lookup walks doc along a dotted path. It returns def as soon as a key is
// missing or a non-object is reached before the path is exhausted.
func Lookup(doc *Value, path string, def *Value) *Value {
	current := doc
	for _, key := range SplitPath(path) {
		next, ok := current.Field(key)
		if !ok {
			return def
		}
		current = next
	}
	return current
}

// Assign stores value at a dotted path inside doc, which must be an object.
// Missing intermediate keys become empty objects. An intermediate that holds
// anything other than an object is replaced by an empty object, discarding
// its previous contents.
func Assign(doc *Value, path string, value *Value) {
	keys := SplitPath(path)
	current := doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := current.Field(key)
		if !ok || !next.IsObject() {
			next = EmptyObject()
			current.SetField(key, next)
		}
		current = next
	}
	current.SetField(keys[len(keys)-1], value)
}
