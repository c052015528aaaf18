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

// Merge overlays update onto base in place and returns base.
// Where both sides hold an object for the same key the merge recurses;
// otherwise the update value replaces the base value wholesale, so lists
// and scalars are never merged element-wise. Keys only in base survive,
// keys only in update are added. Values taken from update are cloned.
func Merge(base, update *Value) *Value {
	if !base.IsObject() || !update.IsObject() {
		return update.Clone()
	}
	for key, incoming := range update.fields {
		current, exists := base.fields[key]
		if exists && current.IsObject() && incoming.IsObject() {
			Merge(current, incoming)
			continue
		}
		base.fields[key] = incoming.Clone()
	}
	return base
}

// MergeDefaults returns a fresh copy of DefaultSchema with update overlaid.
func MergeDefaults(update *Value) *Value {
	return Merge(DefaultSchema(), update)
}
