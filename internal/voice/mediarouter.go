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
	"time"

	"github.com/accordchat/accordserver/internal/repository"
)

// Backend names the media-plane implementation behind a MediaRouterClient.
type Backend string

const (
	BackendLiveKit Backend = "livekit"
	BackendCustom  Backend = "custom"
)

// MediaRouterClient is the abstraction a voice channel join/leave speaks
// to, independent of which SFU backend is actually running the media
// plane. Implementations must be safe for concurrent use.
type MediaRouterClient interface {
	// EnsureRoom creates the media-plane room for channelID if it does
	// not already exist. Idempotent.
	EnsureRoom(ctx context.Context, channelID repository.ID) error

	// GenerateToken mints a short-lived credential a client uses to
	// connect directly to the media plane for channelID.
	GenerateToken(ctx context.Context, userID repository.ID, displayName string, channelID repository.ID, ttl time.Duration) (string, error)

	// RemoveParticipant evicts userID from channelID's room. Best
	// effort: callers should log, not fail, on error.
	RemoveParticipant(ctx context.Context, channelID repository.ID, userID repository.ID) error

	// DeleteRoomIfEmpty removes the media-plane room for channelID when
	// it has no remaining participants. Best effort.
	DeleteRoomIfEmpty(ctx context.Context, channelID repository.ID) error

	// ExternalURL is the address clients should dial to join the media
	// plane (e.g. wss://voice.example.com).
	ExternalURL() string

	// Backend identifies which implementation this is, for metrics and
	// diagnostics.
	Backend() Backend
}
