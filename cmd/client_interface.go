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

// Package cmd implements the streambox-settings CLI using cobra.
package cmd

import (
	"context"
	"fmt"

	"github.com/we-are-mono/streambox-settings/client"
	"github.com/we-are-mono/streambox-settings/daemon"
)

// ClientInterface defines the interface for communicating with the settings daemon.
// This interface allows for easy testing by enabling mock implementations.
type ClientInterface interface {
	Send(req daemon.Request) (*daemon.Response, error)
	Stream(ctx context.Context, req daemon.Request, handle func(line []byte) error) error
}

// realClient wraps the client package to implement ClientInterface.
type realClient struct{}

func (r *realClient) Send(req daemon.Request) (*daemon.Response, error) {
	return client.Send(req)
}

func (r *realClient) Stream(ctx context.Context, req daemon.Request, handle func(line []byte) error) error {
	return client.Stream(ctx, req, handle)
}

// defaultClient is the default client used by CLI commands.
// Tests can replace this with a mock implementation.
var defaultClient ClientInterface = &realClient{}

// call sends req and converts a daemon failure into an error.
func call(c ClientInterface, req daemon.Request) (*daemon.Response, error) {
	resp, err := c.Send(req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Code != "" {
			return resp, fmt.Errorf("%s (%s)", resp.Error, resp.Code)
		}
		return resp, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}
