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

// Package state manages the settings document, its defaults, profiles and persistence.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

// String returns the JSON name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of a configuration document.
// A nil *Value behaves like null for every read accessor.
type Value struct {
	kind   Kind
	flag   bool
	number float64
	text   string // string contents, or the literal of a decoded number
	items  []*Value
	fields map[string]*Value
}

// Null returns a null value
func Null() *Value { return &Value{kind: KindNull} }

// Bool returns a boolean value
func Bool(b bool) *Value { return &Value{kind: KindBool, flag: b} }

// Number returns a numeric value
func Number(n float64) *Value { return &Value{kind: KindNumber, number: n} }

// numberLiteral returns a number that is written back exactly as lit.
func numberLiteral(lit json.Number) (*Value, error) {
	if lit == "" || !json.Valid([]byte(lit)) || (lit[0] != '-' && (lit[0] < '0' || lit[0] > '9')) {
		return nil, fmt.Errorf("invalid number %q", lit)
	}
	f, err := strconv.ParseFloat(string(lit), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("invalid number %q: %w", lit, err)
	}
	return &Value{kind: KindNumber, number: f, text: string(lit)}, nil
}

// String returns a string value
func String(s string) *Value { return &Value{kind: KindString, text: s} }

// List returns a list value holding the given items.
func List(items ...*Value) *Value {
	out := make([]*Value, 0, len(items))
	for _, item := range items {
		if item == nil {
			item = Null()
		}
		out = append(out, item)
	}
	return &Value{kind: KindList, items: out}
}

// Strings is a shorthand for a list of string values.
func Strings(values ...string) *Value {
	items := make([]*Value, 0, len(values))
	for _, s := range values {
		items = append(items, String(s))
	}
	return &Value{kind: KindList, items: items}
}

// Object returns an object value holding the given fields.
// The map is copied; the field values are not.
func Object(fields map[string]*Value) *Value {
	v := &Value{kind: KindObject, fields: make(map[string]*Value, len(fields))}
	for k, f := range fields {
		v.SetField(k, f)
	}
	return v
}

// EmptyObject returns an object with no fields.
func EmptyObject() *Value {
	return &Value{kind: KindObject, fields: make(map[string]*Value)}
}

// Kind returns the variant held by v.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsObject reports whether v is an object
func (v *Value) IsObject() bool { return v.Kind() == KindObject }

// IsNull reports whether v is null
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// AsString returns the string held by v.
func (v *Value) AsString() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.text, true
}

// AsBool returns the boolean held by v.
func (v *Value) AsBool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.flag, true
}

// AsNumber returns the number held by v. Decoded numbers beyond float64
// precision are rounded; NumberText keeps them exact.
func (v *Value) AsNumber() (float64, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}
	return v.number, true
}

// NumberText returns the JSON text of a number.
func (v *Value) NumberText() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	if v.text != "" {
		return v.text, true
	}
	return strconv.FormatFloat(v.number, 'f', -1, 64), true
}

// Items returns the elements of a list, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != KindList {
		return nil
	}
	return v.items
}

// Field returns the named field of an object.
func (v *Value) Field(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// SetField assigns a field on an object. It panics if v is not an object.
func (v *Value) SetField(key string, f *Value) {
	if v.Kind() != KindObject {
		panic(fmt.Sprintf("state: SetField on %s value", v.Kind()))
	}
	if f == nil {
		f = Null()
	}
	v.fields[key] = f
}

// DeleteField removes a field from an object if present.
func (v *Value) DeleteField(key string) {
	if v.Kind() == KindObject {
		delete(v.fields, key)
	}
}

// Keys returns the field names of an object in sorted order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of fields or items.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindObject:
		return len(v.fields)
	case KindList:
		return len(v.items)
	default:
		return 0
	}
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	out := &Value{kind: v.kind, flag: v.flag, number: v.number, text: v.text}
	switch v.kind {
	case KindList:
		out.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	case KindObject:
		out.fields = make(map[string]*Value, len(v.fields))
		for k, f := range v.fields {
			out.fields[k] = f.Clone()
		}
	}
	return out
}

// Equal reports whether two values are structurally identical.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.flag == other.flag
	case KindNumber:
		return numbersEqual(v, other)
	case KindString:
		return v.text == other.text
	case KindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for k, f := range v.fields {
			o, ok := other.fields[k]
			if !ok || !f.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b *Value) bool {
	if a.text == "" || b.text == "" {
		return a.number == b.number
	}
	x, okA := new(big.Rat).SetString(a.text)
	y, okB := new(big.Rat).SetString(b.text)
	if !okA || !okB {
		return a.number == b.number
	}
	return x.Cmp(y) == 0
}

// Interface converts v into plain Go values (map[string]interface{},
// []interface{}, string, float64 or json.Number, bool, nil) for JSON
// encoding in responses. Decoded numbers come back as their json.Number text.
func (v *Value) Interface() interface{} {
	switch v.Kind() {
	case KindBool:
		return v.flag
	case KindNumber:
		if v.text != "" {
			return json.Number(v.text)
		}
		return v.number
	case KindString:
		return v.text
	case KindList:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.fields))
		for k, f := range v.fields {
			out[k] = f.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface converts decoded JSON (or equivalent Go values) into a Value.
func FromInterface(raw interface{}) (*Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return x.Clone(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		return numberLiteral(x)
	case []string:
		return Strings(x...), nil
	case []interface{}:
		items := make([]*Value, 0, len(x))
		for i, item := range x {
			v, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return &Value{kind: KindList, items: items}, nil
	case map[string]interface{}:
		obj := EmptyObject()
		for k, item := range x {
			v, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			obj.fields[k] = v
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// MarshalJSON implements json.Marshaler. Object keys are emitted sorted.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v.Kind() == KindNumber && v.text == "" && (math.IsNaN(v.number) || math.IsInf(v.number, 0)) {
		return nil, fmt.Errorf("cannot encode non-finite number %v", v.number)
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := UnmarshalJSON(data, &raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// Parse decodes JSON text into a Value, reporting syntax errors with their
// line and column.
func Parse(data []byte) (*Value, error) {
	var raw interface{}
	if err := UnmarshalJSON(data, &raw); err != nil {
		return nil, err
	}
	return FromInterface(raw)
}
