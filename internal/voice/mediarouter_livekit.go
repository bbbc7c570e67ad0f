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

package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/accordchat/accordserver/internal/repository"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// LiveKitClient drives a managed or self-hosted LiveKit SFU cluster
// through its admin API: rooms are named by channel id, participants by
// user id.
type LiveKitClient struct {
	rooms       *lksdk.RoomServiceClient
	apiKey      string
	apiSecret   string
	externalURL string
}

// NewLiveKitClient builds a client against a LiveKit server reachable at
// adminURL (http(s)) with clients dialing externalURL (usually wss).
func NewLiveKitClient(adminURL, externalURL, apiKey, apiSecret string) *LiveKitClient {
	return &LiveKitClient{
		rooms:       lksdk.NewRoomServiceClient(adminURL, apiKey, apiSecret),
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		externalURL: externalURL,
	}
}

func roomName(channelID repository.ID) string {
	return fmt.Sprintf("channel-%s", channelID.String())
}

func (c *LiveKitClient) EnsureRoom(ctx context.Context, channelID repository.ID) error {
	_, err := c.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            roomName(channelID),
		EmptyTimeout:    300,
		DepartureTimeout: 30,
	})
	return err
}

func (c *LiveKitClient) GenerateToken(_ context.Context, userID repository.ID, displayName string, channelID repository.ID, ttl time.Duration) (string, error) {
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName(channelID),
	}
	token := auth.NewAccessToken(c.apiKey, c.apiSecret).
		SetIdentity(userID.String()).
		SetName(displayName).
		SetVideoGrant(grant).
		SetValidFor(ttl)
	return token.ToJWT()
}

func (c *LiveKitClient) RemoveParticipant(ctx context.Context, channelID, userID repository.ID) error {
	_, err := c.rooms.RemoveParticipant(ctx, &livekit.RoomParticipantIdentity{
		Room:     roomName(channelID),
		Identity: userID.String(),
	})
	return err
}

func (c *LiveKitClient) DeleteRoomIfEmpty(ctx context.Context, channelID repository.ID) error {
	resp, err := c.rooms.ListParticipants(ctx, &livekit.ListParticipantsRequest{Room: roomName(channelID)})
	if err != nil {
		return err
	}
	if len(resp.GetParticipants()) > 0 {
		return nil
	}
	_, err = c.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: roomName(channelID)})
	return err
}

func (c *LiveKitClient) ExternalURL() string { return c.externalURL }

func (c *LiveKitClient) Backend() Backend { return BackendLiveKit }
