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

package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/voice"
)

const voiceTokenTTL = 10 * time.Minute

func parseID(s string) (repository.ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return repository.ID(v), nil
}

// handleVoiceStateUpdate implements the voice coordination subflow:
// ignoring updates outside the session's space set, applying in-place
// flag updates when the channel is unchanged, and otherwise validating,
// joining, and provisioning the new media-router room.
func (a *ConnectionActor) handleVoiceStateUpdate(ctx context.Context, f Frame) {
	var payload VoiceStateUpdate
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		return
	}

	spaceID, err := parseID(payload.SpaceID)
	if err != nil || !a.session.hasSpace(spaceID) {
		return
	}

	flags := voice.Flags{
		SelfMute:   payload.SelfMute,
		SelfDeaf:   payload.SelfDeaf,
		SelfVideo:  payload.SelfVideo,
		SelfStream: payload.SelfStream,
	}

	if payload.ChannelID == nil {
		a.handleVoiceLeave(ctx, spaceID)
		return
	}

	channelID, err := parseID(*payload.ChannelID)
	if err != nil {
		return
	}

	if existing := a.deps.VoiceStates.ByUser(a.session.UserID); existing != nil && existing.ChannelID == channelID {
		updated := a.deps.VoiceStates.UpdateFlags(a.session.UserID, flags)
		if updated != nil {
			a.broadcastVoiceState(spaceID, *updated)
		}
		return
	}

	channel, err := a.deps.Repo.GetChannel(ctx, channelID)
	if err != nil || channel.Type != repository.ChannelTypeVoice {
		return
	}
	principal := auth.Principal{UserID: a.session.UserID, IsBot: a.session.IsBot, IsAdmin: a.session.IsAdmin}
	perms, err := a.deps.Perms.ChannelPermissions(ctx, channel, principal)
	if err != nil || !perms.Has(repository.PermissionConnect) {
		return
	}

	state, previousChannel := a.deps.VoiceStates.Join(a.session.UserID, spaceID, channelID, a.session.ID, flags)
	if previousChannel != nil {
		_ = a.deps.MediaRouter.RemoveParticipant(ctx, *previousChannel, a.session.UserID)
		_ = a.deps.MediaRouter.DeleteRoomIfEmpty(ctx, *previousChannel)
	}

	a.broadcastVoiceState(spaceID, state)
	if a.deps.Metrics != nil {
		a.deps.Metrics.VoiceJoinsTotal.WithLabelValues(string(a.deps.MediaRouter.Backend())).Inc()
	}

	if err := a.deps.MediaRouter.EnsureRoom(ctx, channelID); err != nil {
		slog.Error("gateway: ensure voice room", "error", err, "channel_id", channelID.String())
		return
	}
	token, err := a.deps.MediaRouter.GenerateToken(ctx, a.session.UserID, a.session.UserID.String(), channelID, voiceTokenTTL)
	if err != nil {
		slog.Error("gateway: generate voice token", "error", err, "channel_id", channelID.String())
		return
	}

	raw, _ := json.Marshal(map[string]any{
		"space_id":   spaceID.String(),
		"channel_id": channelID.String(),
		"backend":    string(a.deps.MediaRouter.Backend()),
		"url":        a.deps.MediaRouter.ExternalURL(),
		"token":      token,
	})
	seq := a.session.nextSeq()
	select {
	case a.session.Outbound <- Frame{Op: OpEvent, Type: "voice.server_update", Seq: &seq, Data: raw}:
	default:
	}
}

func (a *ConnectionActor) handleVoiceLeave(ctx context.Context, spaceID repository.ID) {
	prior := a.deps.VoiceStates.Leave(a.session.UserID)
	if prior == nil {
		return
	}
	a.broadcastVoiceState(spaceID, struct {
		UserID    repository.ID `json:"user_id"`
		ChannelID *string       `json:"channel_id"`
	}{UserID: a.session.UserID, ChannelID: nil})

	_ = a.deps.MediaRouter.RemoveParticipant(ctx, prior.ChannelID, a.session.UserID)
	_ = a.deps.MediaRouter.DeleteRoomIfEmpty(ctx, prior.ChannelID)
	if a.deps.Metrics != nil {
		a.deps.Metrics.VoiceLeavesTotal.WithLabelValues(string(a.deps.MediaRouter.Backend())).Inc()
	}
}

func (a *ConnectionActor) broadcastVoiceState(spaceID repository.ID, state any) {
	a.deps.Bus.Publish(eventbus.DomainEvent{
		Type: "voice.state_update", SpaceID: spaceID, HasSpaceID: true, Payload: state,
	})
}
