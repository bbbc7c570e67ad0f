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

// TestCreateSpaceBootstrapsEveryoneAndGeneral covers S1's space-creation
// step: a fresh space always carries an @everyone role at position 0 and
// a #general text channel the owner can immediately see.
func TestCreateSpaceBootstrapsEveryoneAndGeneral(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")

	space := f.createSpace(t, token, "Team")
	spaceID := space["id"].(string)

	w, resp := f.do(t, http.MethodGet, "/api/v1/spaces/"+spaceID+"/roles", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "list roles response: %v", resp)
	roles := resp["data"].([]any)
	require.NotEmpty(t, roles)
	everyone := roles[0].(map[string]any)
	assert.Equal(t, "@everyone", everyone["name"])
	assert.Equal(t, float64(0), everyone["position"])

	w, resp = f.do(t, http.MethodGet, "/api/v1/spaces/"+spaceID+"/channels", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "list channels response: %v", resp)
	channels := resp["data"].([]any)
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].(map[string]any)["name"])
}

// TestPatchSpaceRequiresManageSpace exercises the permission resolver's
// membership path end to end: a user whose join of a private space is
// refused cannot rename it, while the owner can.
func TestPatchSpaceRequiresManageSpace(t *testing.T) {
	f := newFixture(t)
	ownerToken, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, ownerToken, "Team")
	spaceID := space["id"].(string)

	memberToken, memberUser := f.registerUser(t, "carol")
	w, resp := f.do(t, http.MethodPost, "/api/v1/spaces/"+spaceID+"/join", memberToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code, "join private space should be forbidden: %v", resp)
	_ = memberUser

	// Direct membership via repository-level join isn't exposed over
	// HTTP for private spaces in this core; instead verify that the
	// owner (who the bootstrap assigns Admin) can patch while a party
	// with no membership at all is rejected outright.
	w, resp = f.do(t, http.MethodPatch, "/api/v1/spaces/"+spaceID, memberToken, map[string]any{"name": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code, "patch response: %v", resp)
	assert.Equal(t, "forbidden", resp["error"].(map[string]any)["code"])

	w, resp = f.do(t, http.MethodPatch, "/api/v1/spaces/"+spaceID, ownerToken, map[string]any{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code, "owner patch response: %v", resp)
	assert.Equal(t, "Renamed", resp["data"].(map[string]any)["name"])
}

func TestPublicSpaceJoin(t *testing.T) {
	f := newFixture(t)
	ownerToken, _ := f.registerUser(t, "alice")
	w, resp := f.do(t, http.MethodPost, "/api/v1/spaces", ownerToken, map[string]any{"name": "Open Team", "public": true})
	require.Equal(t, http.StatusCreated, w.Code, "create space response: %v", resp)
	space := resp["data"].(map[string]any)
	spaceID := space["id"].(string)

	joinerToken, _ := f.registerUser(t, "dave")
	w, resp = f.do(t, http.MethodPost, "/api/v1/spaces/"+spaceID+"/join", joinerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "join response: %v", resp)

	w, resp = f.do(t, http.MethodGet, "/api/v1/spaces/"+spaceID+"/members/@me", joinerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "self member response: %v", resp)
}
