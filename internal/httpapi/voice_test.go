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

// createVoiceChannel is the voice-channel counterpart of generalChannelID:
// spaces only bootstrap a text #general, so callers that need a voice
// channel create one explicitly.
func (f *fixture) createVoiceChannel(t *testing.T, token, spaceID string) string {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/api/v1/spaces/"+spaceID+"/channels", token, map[string]any{
		"name": "general-voice",
		"type": "voice",
	})
	require.Equal(t, http.StatusCreated, w.Code, "create channel response: %v", resp)
	return resp["data"].(map[string]any)["id"].(string)
}

// TestVoiceJoinReturnsStateBackendAndToken covers the HTTP-only portion
// of S3: joining a voice channel hands back a voice_state, the media
// router's backend, and a join token in one response.
func TestVoiceJoinReturnsStateBackendAndToken(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, token, "Team")
	spaceID := space["id"].(string)
	voiceChannelID := f.createVoiceChannel(t, token, spaceID)

	w, resp := f.do(t, http.MethodPost, "/api/v1/channels/"+voiceChannelID+"/voice/join", token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, "voice join response: %v", resp)
	d := resp["data"].(map[string]any)
	assert.Equal(t, "custom", d["backend"])
	assert.Equal(t, "fake-token", d["token"])
	state := d["voice_state"].(map[string]any)
	assert.Equal(t, voiceChannelID, state["ChannelID"])

	w, resp = f.do(t, http.MethodGet, "/api/v1/channels/"+voiceChannelID+"/voice/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "voice status response: %v", resp)
	states := resp["data"].([]any)
	require.Len(t, states, 1)

	w, resp = f.do(t, http.MethodPost, "/api/v1/channels/"+voiceChannelID+"/voice/leave", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code, "voice leave response: %v", resp)
}

// TestVoiceJoinDeniedOnTextChannel covers the channel-type gate: joining
// voice on a text channel is rejected with 400.
func TestVoiceJoinDeniedOnTextChannel(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")
	space := f.createSpace(t, token, "Team")
	generalID := f.generalChannelID(t, token, space["id"].(string))

	w, resp := f.do(t, http.MethodPost, "/api/v1/channels/"+generalID+"/voice/join", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code, "voice join on text channel response: %v", resp)
}
