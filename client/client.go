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

// Package client provides a client library for communicating with the settings daemon.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/we-are-mono/streambox-settings/daemon"
)

// GetSocketPath returns the socket path, preferring STREAMBOX_SOCKET_PATH env var
func GetSocketPath() string {
	return daemon.GetSocketPath()
}

func dial(req daemon.Request) (net.Conn, error) {
	conn, err := net.Dial("unix", GetSocketPath())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon (is it running?): %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	data = append(data, '\n')
	if _, err = conn.Write(data); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return conn, nil
}

// Send issues a single request and waits for the response
func Send(req daemon.Request) (*daemon.Response, error) {
	conn, err := dial(req)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp daemon.Response
	dec := json.NewDecoder(bytes.NewReader(respData))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// Stream issues a streaming request (logs, monitor) and passes every line
// the daemon writes to handle. It returns when ctx is cancelled, the daemon
// closes the connection, or handle fails.
func Stream(ctx context.Context, req daemon.Request, handle func(line []byte) error) error {
	conn, err := dial(req)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) || len(line) == 0 {
				return nil
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		if err := streamError(line); err != nil {
			return err
		}
		if err := handle(line); err != nil {
			return err
		}
	}
}

// streamError reports a daemon error response sent in place of the stream
func streamError(line []byte) error {
	var resp struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(line, &resp) != nil || resp.Success == nil || *resp.Success {
		return nil
	}
	return fmt.Errorf("daemon error: %s", resp.Error)
}
