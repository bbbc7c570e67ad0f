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

// generalChannelID resolves the #general text channel id a bootstrapped
// space always carries.
func (f *fixture) generalChannelID(t *testing.T, token, spaceID string) string {
	t.Helper()
	w, resp := f.do(t, http.MethodGet, "/api/v1/spaces/"+spaceID+"/channels", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "list channels response: %v", resp)
	channels := resp["data"].([]any)
	require.NotEmpty(t, channels)
	return channels[0].(map[string]any)["id"].(string)
}

// TestPostAndReadChannelMessage covers S1: a space owner sends a message
// to #general and can read it back.
func TestPostAndReadChannelMessage(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, token, "Team")
	spaceID := space["id"].(string)
	generalID := f.generalChannelID(t, token, spaceID)

	w, resp := f.do(t, http.MethodPost, "/api/v1/channels/"+generalID+"/messages", token, map[string]any{"content": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, "post message response: %v", resp)
	msg := resp["data"].(map[string]any)
	assert.Equal(t, "hi", msg["content"])

	w, resp = f.do(t, http.MethodGet, "/api/v1/channels/"+generalID+"/messages/"+msg["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, w.Code, "get message response: %v", resp)
	assert.Equal(t, "hi", resp["data"].(map[string]any)["content"])
}

// TestPostMessageDeniedForNonMember covers S2: a user who never joined
// the space gets a 403 forbidden, not a 404 or a silent success.
func TestPostMessageDeniedForNonMember(t *testing.T) {
	f := newFixture(t)
	ownerToken, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, ownerToken, "Team")
	generalID := f.generalChannelID(t, ownerToken, space["id"].(string))

	bobToken, _ := f.registerUser(t, "bob")
	w, resp := f.do(t, http.MethodPost, "/api/v1/channels/"+generalID+"/messages", bobToken, map[string]any{"content": "x"})
	require.Equal(t, http.StatusForbidden, w.Code, "post message response: %v", resp)
	assert.Equal(t, "forbidden", resp["error"].(map[string]any)["code"])
}

// TestEditMessageAllowsAuthor ensures the author-or-administrator check in
// patchMessage lets a message's author edit it.
func TestEditMessageAllowsAuthor(t *testing.T) {
	f := newFixture(t)
	ownerToken, ownerUser := f.registerUser(t, "alice")
	space := f.createSpace(t, ownerToken, "Team")
	spaceID := space["id"].(string)
	generalID := f.generalChannelID(t, ownerToken, spaceID)
	_ = ownerUser

	w, resp := f.do(t, http.MethodPost, "/api/v1/channels/"+generalID+"/messages", ownerToken, map[string]any{"content": "original"})
	require.Equal(t, http.StatusCreated, w.Code)
	messageID := resp["data"].(map[string]any)["id"].(string)

	// Owner (the message's author) can edit their own message.
	w, resp = f.do(t, http.MethodPatch, "/api/v1/channels/"+generalID+"/messages/"+messageID, ownerToken, map[string]any{"content": "edited"})
	require.Equal(t, http.StatusOK, w.Code, "edit response: %v", resp)
	assert.Equal(t, "edited", resp["data"].(map[string]any)["content"])
}
