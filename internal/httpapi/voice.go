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

package httpapi

import (
	"net/http"
	"time"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/gin-gonic/gin"
)

const httpVoiceTokenTTL = 10 * time.Minute

type voiceJoinRequest struct {
	SelfMute *bool `json:"self_mute"`
	SelfDeaf *bool `json:"self_deaf"`
}

// postVoiceJoin mirrors the gateway's voice coordination subflow (see
// internal/gateway/voice.go) for clients that join voice over plain HTTP
// rather than through an open gateway session.
func (a *api) postVoiceJoin(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if channel.Type != repository.ChannelTypeVoice {
		fail(c, apperr.BadRequest("channel is not a voice channel"))
		return
	}
	if !perms.Has(repository.PermissionConnect) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing connect permission"))
		return
	}
	if channel.SpaceID == nil {
		fail(c, apperr.BadRequest("channel has no space"))
		return
	}

	var req voiceJoinRequest
	if !bindJSON(c, &req) {
		return
	}
	flags := voice.Flags{SelfMute: req.SelfMute, SelfDeaf: req.SelfDeaf}

	state, previousChannel := a.deps.VoiceStates.Join(principal.UserID, *channel.SpaceID, channel.ID, 0, flags)
	if previousChannel != nil {
		_ = a.deps.MediaRouter.RemoveParticipant(c.Request.Context(), *previousChannel, principal.UserID)
		_ = a.deps.MediaRouter.DeleteRoomIfEmpty(c.Request.Context(), *previousChannel)
	}
	a.broadcastVoiceState(*channel.SpaceID, state)

	if err := a.deps.MediaRouter.EnsureRoom(c.Request.Context(), channel.ID); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	token, err := a.deps.MediaRouter.GenerateToken(c.Request.Context(), principal.UserID, principal.UserID.String(), channel.ID, httpVoiceTokenTTL)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	data(c, http.StatusOK, gin.H{
		"voice_state": state,
		"backend":     string(a.deps.MediaRouter.Backend()),
		"url":         a.deps.MediaRouter.ExternalURL(),
		"token":       token,
	})
}

func (a *api) postVoiceLeave(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}

	current := a.deps.VoiceStates.ByUser(principal.UserID)
	if current == nil || current.ChannelID != channel.ID {
		fail(c, apperr.BadRequest("not connected to this voice channel"))
		return
	}

	prior := a.deps.VoiceStates.Leave(principal.UserID)
	if prior == nil {
		c.Status(http.StatusNoContent)
		return
	}
	a.broadcastVoiceState(prior.SpaceID, gin.H{"user_id": principal.UserID, "channel_id": nil})
	_ = a.deps.MediaRouter.RemoveParticipant(c.Request.Context(), prior.ChannelID, principal.UserID)
	_ = a.deps.MediaRouter.DeleteRoomIfEmpty(c.Request.Context(), prior.ChannelID)
	c.Status(http.StatusNoContent)
}

func (a *api) getVoiceStatus(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	data(c, http.StatusOK, a.deps.VoiceStates.ByChannel(channel.ID))
}

func (a *api) broadcastVoiceState(spaceID repository.ID, payload any) {
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "voice.state_update", SpaceID: spaceID, HasSpaceID: true, Payload: payload})
}

// getVoiceRegions lists every region with at least one registered SFU
// node, for clients picking a preferred region before joining voice.
func (a *api) getVoiceRegions(c *gin.Context) {
	data(c, http.StatusOK, a.deps.NodeDirectory.Regions())
}
