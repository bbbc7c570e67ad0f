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

package sfuclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/sfuclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, srv.URL
}

func TestRegisterSendsAuthenticatedPUT(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]any

	srv, url := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})
	_ = srv

	client := sfuclient.New(config.SFU{
		MainURL:    url,
		AdminToken: "admin-token",
		NodeID:     "node-1",
		Region:     "us-east",
		Capacity:   42,
		Endpoint:   "wss://node-1.example.com",
	})

	err := client.Register(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/sfu/nodes/node-1", gotPath)
	assert.Equal(t, "Bearer admin-token", gotAuth)
	assert.Equal(t, "wss://node-1.example.com", gotBody["endpoint"])
	assert.Equal(t, "us-east", gotBody["region"])
	assert.Equal(t, float64(42), gotBody["capacity"])
}

func TestHeartbeatSendsCurrentLoad(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	_, url := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	client := sfuclient.New(config.SFU{MainURL: url, NodeID: "node-1"})
	require.NoError(t, client.Heartbeat(context.Background(), 7))

	assert.Equal(t, "/api/v1/sfu/nodes/node-1/heartbeat", gotPath)
	assert.Equal(t, float64(7), gotBody["current_load"])
}

func TestDeregisterSendsDELETE(t *testing.T) {
	var gotMethod string

	_, url := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	client := sfuclient.New(config.SFU{MainURL: url, NodeID: "node-1"})
	require.NoError(t, client.Deregister(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestNonSuccessStatusReturnsError(t *testing.T) {
	_, url := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client := sfuclient.New(config.SFU{MainURL: url, NodeID: "node-1"})
	err := client.Register(context.Background())
	assert.Error(t, err)
}
