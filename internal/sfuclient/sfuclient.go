// SPDX-License-Identifier: AGPL-3.0-or-later
// Accord - a chat-and-voice platform server
// Copyright (C) 2026 The Accord Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package sfuclient is what an embedded-SFU edge process (ACCORD_MODE=sfu)
// uses to register and heartbeat itself against a main Accord instance's
// /api/v1/sfu/nodes surface, the same way the teacher's repeaterdb/userdb
// updaters fetch their flat files over plain net/http rather than a
// generated API client.
package sfuclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/accordchat/accordserver/internal/config"
)

// Client registers and heartbeats this process's embedded SFU with a main instance.
type Client struct {
	http   *http.Client
	cfg    config.SFU
	mainURL string
}

func New(cfg config.SFU) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		cfg:     cfg,
		mainURL: cfg.MainURL,
	}
}

type registerRequest struct {
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"`
	Capacity int    `json:"capacity"`
}

// Register PUTs this node's connection info to the main instance.
func (c *Client) Register(ctx context.Context) error {
	body, err := json.Marshal(registerRequest{
		Endpoint: c.cfg.Endpoint,
		Region:   c.cfg.Region,
		Capacity: c.cfg.Capacity,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sfu registration: %w", err)
	}
	return c.do(ctx, http.MethodPut, "/api/v1/sfu/nodes/"+c.cfg.NodeID, body)
}

type heartbeatRequest struct {
	CurrentLoad int `json:"current_load"`
}

// Heartbeat reports the node's current participant load to the main instance.
func (c *Client) Heartbeat(ctx context.Context, currentLoad int) error {
	body, err := json.Marshal(heartbeatRequest{CurrentLoad: currentLoad})
	if err != nil {
		return fmt.Errorf("failed to encode sfu heartbeat: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/v1/sfu/nodes/"+c.cfg.NodeID+"/heartbeat", body)
}

// Deregister removes this node from the main instance's directory, best effort on shutdown.
func (c *Client) Deregister(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sfu/nodes/"+c.cfg.NodeID, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, c.mainURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AdminToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to main instance failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("main instance rejected %s %s: status %d", method, path, resp.StatusCode)
	}
	return nil
}
