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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupReturnsDefault(t *testing.T) {
	def := String("D")

	tests := []struct {
		name string
		doc  *Value
	}{
		{"a absent", Object(map[string]*Value{"x": String("1")})},
		{"a.b absent", Object(map[string]*Value{"a": Object(map[string]*Value{"x": String("1")})})},
		{"a not an object", Object(map[string]*Value{"a": String("flat")})},
		{"a is a list", Object(map[string]*Value{"a": Strings("b", "c")})},
		{"a.b not an object", Object(map[string]*Value{"a": Object(map[string]*Value{"b": Number(7)})})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, def, Lookup(tt.doc, "a.b.c", def))
		})
	}
}

func TestLookupReturnsIntermediateValues(t *testing.T) {
	doc := DefaultSchema()

	wired := Lookup(doc, "network.wired", nil)
	require.NotNil(t, wired)
	assert.True(t, wired.IsObject())

	dns := Lookup(doc, "network.wired.dns_servers", nil)
	require.NotNil(t, dns)
	assert.Equal(t, KindList, dns.Kind())

	gw := Lookup(doc, "network.wired.gateway", String("unset"))
	assert.True(t, gw.IsNull(), "present null must not be replaced by the default")
}

func TestAssignCreatesIntermediates(t *testing.T) {
	doc := EmptyObject()
	Assign(doc, "a.b.c", Number(1))

	assert.True(t, Number(1).Equal(Lookup(doc, "a.b.c", nil)))
	assert.True(t, Lookup(doc, "a.b", nil).IsObject())
}

func TestAssignOverwritesNonObjectIntermediate(t *testing.T) {
	doc := Object(map[string]*Value{
		"basic": Object(map[string]*Value{"hostname": String("streambox")}),
	})

	Assign(doc, "basic.hostname.short", String("sb"))

	hostname := Lookup(doc, "basic.hostname", nil)
	require.NotNil(t, hostname)
	assert.True(t, hostname.IsObject(), "string intermediate is replaced by an object")
	assert.Equal(t, []string{"short"}, hostname.Keys())
}

func TestAssignSingleSegment(t *testing.T) {
	doc := DefaultSchema()
	Assign(doc, "basic", String("flat"))
	assert.Equal(t, "flat", mustString(t, Lookup(doc, "basic", nil)))
}
