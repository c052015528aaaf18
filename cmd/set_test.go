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

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/streambox-settings/daemon"
)

// mockClient is a mock implementation of ClientInterface for testing.
type mockClient struct {
	sendFunc   func(req daemon.Request) (*daemon.Response, error)
	streamFunc func(ctx context.Context, req daemon.Request, handle func(line []byte) error) error
}

func (m *mockClient) Send(req daemon.Request) (*daemon.Response, error) {
	if m.sendFunc != nil {
		return m.sendFunc(req)
	}
	return &daemon.Response{Success: true, Message: "OK"}, nil
}

func (m *mockClient) Stream(ctx context.Context, req daemon.Request, handle func(line []byte) error) error {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, req, handle)
	}
	return nil
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  interface{}
	}{
		{name: "true", input: "true", want: true},
		{name: "false", input: "false", want: false},
		{name: "null", input: "null", want: nil},
		{name: "integer", input: "1400", want: 1400},
		{name: "negative integer", input: "-10", want: -10},
		{name: "float", input: "0.5", want: 0.5},
		{name: "plain string", input: "studio-box", want: "studio-box"},
		{name: "ip address stays a string", input: "192.168.1.1", want: "192.168.1.1"},
		{name: "json list", input: `["1.1.1.1","8.8.8.8"]`, want: []interface{}{"1.1.1.1", "8.8.8.8"}},
		{name: "json object", input: `{"ssid":"StreamBox"}`, want: map[string]interface{}{"ssid": "StreamBox"}},
		{name: "broken json stays a string", input: "{oops", want: "{oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.input))
		})
	}
}

func TestParseSetArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPath  string
		wantValue interface{}
		wantError bool
	}{
		{
			name:      "separate components",
			args:      []string{"basic", "hostname", "studio-box"},
			wantPath:  "basic.hostname",
			wantValue: "studio-box",
		},
		{
			name:      "dotted path",
			args:      []string{"network.wired.mtu", "1400"},
			wantPath:  "network.wired.mtu",
			wantValue: 1400,
		},
		{
			name:      "boolean",
			args:      []string{"network", "wifi_ap", "enabled", "true"},
			wantPath:  "network.wifi_ap.enabled",
			wantValue: true,
		},
		{
			name:      "insufficient arguments",
			args:      []string{"basic"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, value, err := parseSetArgs(tt.args)

			if tt.wantError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestExecuteSet(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		mockResponse   *daemon.Response
		mockError      error
		wantError      bool
		wantOutput     string
		wantErrContain string
	}{
		{
			name:         "successful set",
			args:         []string{"basic", "hostname", "studio-box"},
			mockResponse: &daemon.Response{Success: true, Message: "Set basic.hostname"},
			wantOutput:   "Set basic.hostname\n",
		},
		{
			name: "daemon error",
			args: []string{"basic", "hostname", "x"},
			mockResponse: &daemon.Response{
				Success: false,
				Error:   "failed to write config.json",
				Code:    "IOFailure",
			},
			wantError:      true,
			wantErrContain: "IOFailure",
		},
		{
			name:           "connection error",
			args:           []string{"basic", "ntp", "true"},
			mockError:      fmt.Errorf("failed to connect to daemon"),
			wantError:      true,
			wantErrContain: "failed to connect",
		},
		{
			name:           "invalid arguments",
			args:           []string{"basic"},
			wantError:      true,
			wantErrContain: "requires at least 2 arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mockCli := &mockClient{
				sendFunc: func(req daemon.Request) (*daemon.Response, error) {
					if tt.mockError != nil {
						return nil, tt.mockError
					}
					assert.Equal(t, "set", req.Command)
					return tt.mockResponse, nil
				},
			}

			err := executeSet(&buf, mockCli, tt.args)

			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrContain)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestExecuteSet_RequestFields(t *testing.T) {
	var captured daemon.Request
	mockCli := &mockClient{
		sendFunc: func(req daemon.Request) (*daemon.Response, error) {
			captured = req
			return &daemon.Response{Success: true}, nil
		},
	}

	var buf bytes.Buffer
	require.NoError(t, executeSet(&buf, mockCli, []string{"network", "wired", "gateway", "null"}))

	assert.Equal(t, "network.wired.gateway", captured.Path)
	assert.Nil(t, captured.Value)
}
