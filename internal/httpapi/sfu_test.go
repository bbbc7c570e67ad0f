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

package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSfuNodeLifecycle covers S6: register, heartbeat, list, deregister.
func TestSfuNodeLifecycle(t *testing.T) {
	f := newFixture(t)
	adminToken := f.createAdminToken(t)

	w, resp := f.do(t, http.MethodPut, "/api/v1/sfu/nodes/n1", adminToken, map[string]any{
		"endpoint": "ws://n1.example.com",
		"region":   "us-east",
		"capacity": 100,
	})
	require.Equal(t, http.StatusOK, w.Code, "register response: %v", resp)

	w, resp = f.do(t, http.MethodPost, "/api/v1/sfu/nodes/n1/heartbeat", adminToken, map[string]any{"current_load": 42})
	require.Equal(t, http.StatusOK, w.Code, "heartbeat response: %v", resp)

	w, resp = f.do(t, http.MethodGet, "/api/v1/sfu/nodes", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "list response: %v", resp)
	nodes := resp["data"].([]any)
	require.Len(t, nodes, 1)
	assert.Equal(t, float64(42), nodes[0].(map[string]any)["current_load"])

	w, resp = f.do(t, http.MethodDelete, "/api/v1/sfu/nodes/n1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "delete response: %v", resp)

	w, resp = f.do(t, http.MethodGet, "/api/v1/sfu/nodes", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "list response: %v", resp)
	assert.Empty(t, resp["data"])
}

// TestSfuNodeManagementRequiresInstanceAdmin ensures a regular member
// cannot register edge nodes.
func TestSfuNodeManagementRequiresInstanceAdmin(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")

	w, resp := f.do(t, http.MethodPut, "/api/v1/sfu/nodes/n1", token, map[string]any{
		"endpoint": "ws://n1.example.com",
		"region":   "us-east",
		"capacity": 100,
	})
	require.Equal(t, http.StatusForbidden, w.Code, "register response: %v", resp)
	assert.Equal(t, "forbidden", resp["error"].(map[string]any)["code"])
}
