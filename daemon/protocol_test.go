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

package daemon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRequestOmitEmpty tests that empty fields are omitted from JSON
func TestRequestOmitEmpty(t *testing.T) {
	req := Request{
		Command: "status",
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var jsonMap map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &jsonMap))

	// Only command should be present
	assert.Equal(t, map[string]interface{}{"command": "status"}, jsonMap)
}

// TestResponseOmitEmpty tests that empty response fields are omitted
func TestResponseOmitEmpty(t *testing.T) {
	data, err := json.Marshal(Response{Success: true})
	require.NoError(t, err)

	var jsonMap map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &jsonMap))

	assert.Contains(t, jsonMap, "success")
	assert.NotContains(t, jsonMap, "message")
	assert.NotContains(t, jsonMap, "error")
	assert.NotContains(t, jsonMap, "code")
	assert.NotContains(t, jsonMap, "data")
}

func TestRequestWireNames(t *testing.T) {
	raw := `{"command":"import","text":"{\"a\":1}","apply":true,"signals":["ConfigChanged"],"log_filter":{"level":"error","tail":5}}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	assert.Equal(t, "import", req.Command)
	assert.Equal(t, `{"a":1}`, req.Text)
	assert.True(t, req.Apply)
	assert.Equal(t, []string{"ConfigChanged"}, req.Signals)
	require.NotNil(t, req.LogFilter)
	assert.Equal(t, "error", req.LogFilter.Level)
	assert.Equal(t, 5, req.LogFilter.Tail)
}

func TestResponseErrorCode(t *testing.T) {
	data, err := json.Marshal(Response{Success: false, Error: "profile not found: x", Code: "NotFound"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"error":"profile not found: x","code":"NotFound"}`, string(data))
}
