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

// TestBanThenInviteRedeemForbidden covers S5: a banned user cannot redeem
// an invite back into the space.
func TestBanThenInviteRedeemForbidden(t *testing.T) {
	f := newFixture(t)
	ownerToken, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, ownerToken, "Team")
	spaceID := space["id"].(string)

	bobToken, bobUser := f.registerUser(t, "bob")
	bobID := bobUser["id"].(string)

	w, resp := f.do(t, http.MethodPut, "/api/v1/spaces/"+spaceID+"/bans/"+bobID, ownerToken, map[string]any{"reason": "spam"})
	require.Equal(t, http.StatusOK, w.Code, "put ban response: %v", resp)

	w, resp = f.do(t, http.MethodPost, "/api/v1/spaces/"+spaceID+"/invites", ownerToken, map[string]any{"max_uses": 0, "max_age": 0})
	require.Equal(t, http.StatusCreated, w.Code, "create invite response: %v", resp)
	code := resp["data"].(map[string]any)["code"].(string)

	w, resp = f.do(t, http.MethodPost, "/api/v1/invites/"+code, bobToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code, "redeem response: %v", resp)
	assert.Equal(t, "forbidden", resp["error"].(map[string]any)["code"])
}

// TestUnbanAllowsRejoin checks the ban removal path restores the invite
// flow for a previously banned user.
func TestUnbanAllowsRejoin(t *testing.T) {
	f := newFixture(t)
	ownerToken, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, ownerToken, "Team")
	spaceID := space["id"].(string)

	bobToken, bobUser := f.registerUser(t, "bob")
	bobID := bobUser["id"].(string)

	w, resp := f.do(t, http.MethodPut, "/api/v1/spaces/"+spaceID+"/bans/"+bobID, ownerToken, map[string]any{"reason": "spam"})
	require.Equal(t, http.StatusOK, w.Code, "put ban response: %v", resp)

	w, resp = f.do(t, http.MethodDelete, "/api/v1/spaces/"+spaceID+"/bans/"+bobID, ownerToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code, "delete ban response: %v", resp)

	w, resp = f.do(t, http.MethodPost, "/api/v1/spaces/"+spaceID+"/invites", ownerToken, map[string]any{"max_uses": 0, "max_age": 0})
	require.Equal(t, http.StatusCreated, w.Code, "create invite response: %v", resp)
	code := resp["data"].(map[string]any)["code"].(string)

	w, resp = f.do(t, http.MethodPost, "/api/v1/invites/"+code, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "redeem response: %v", resp)
}
