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

// Package voice holds the in-memory authoritative voice-session state
// (VoiceStateTable, NodeDirectory) and the MediaRouterClient abstraction
// over the two supported voice backends.
package voice

import (
	"sync"

	"github.com/accordchat/accordserver/internal/repository"
	"github.com/puzpuzpuz/xsync/v4"
)

// State is a user's current voice presence.
type State struct {
	UserID    repository.ID
	SpaceID   repository.ID
	ChannelID repository.ID
	SessionID repository.ID
	SelfMute  bool
	SelfDeaf  bool
	SelfVideo bool
	SelfStream bool
}

// Flags is the mutable subset of State a VOICE_STATE_UPDATE frame may
// carry; nil pointers mean "leave unchanged".
type Flags struct {
	SelfMute   *bool
	SelfDeaf   *bool
	SelfVideo  *bool
	SelfStream *bool
}

func (f Flags) apply(s *State) {
	if f.SelfMute != nil {
		s.SelfMute = *f.SelfMute
	}
	if f.SelfDeaf != nil {
		s.SelfDeaf = *f.SelfDeaf
	}
	if f.SelfVideo != nil {
		s.SelfVideo = *f.SelfVideo
	}
	if f.SelfStream != nil {
		s.SelfStream = *f.SelfStream
	}
}

type userSlot struct {
	mu    sync.Mutex
	state *State
}

// StateTable is the authoritative in-memory map user_id -> VoiceState.
// Every mutation acquires that user's slot exclusively (single-writer
// semantics per user, not a single process-wide lock).
type StateTable struct {
	users *xsync.Map[repository.ID, *userSlot]
}

// NewStateTable returns a ready-to-use StateTable.
func NewStateTable() *StateTable {
	return &StateTable{users: xsync.NewMap[repository.ID, *userSlot]()}
}

func (t *StateTable) slot(userID repository.ID) *userSlot {
	slot, _ := t.users.LoadOrStore(userID, &userSlot{})
	return slot
}

// Join sets the user's full voice state atomically. If the user already
// held a state pointing at a different channel, that prior channel id is
// returned so the caller can tear down its media-router room.
func (t *StateTable) Join(userID, spaceID, channelID, sessionID repository.ID, flags Flags) (State, *repository.ID) {
	slot := t.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	var previous *repository.ID
	if slot.state != nil && slot.state.ChannelID != channelID {
		prior := slot.state.ChannelID
		previous = &prior
	}

	next := State{UserID: userID, SpaceID: spaceID, ChannelID: channelID, SessionID: sessionID}
	flags.apply(&next)
	slot.state = &next
	return next, previous
}

// UpdateFlags updates only the mutable flags of an existing state
// in-place, never tearing down the media-router session. Returns nil if
// the user has no current state.
func (t *StateTable) UpdateFlags(userID repository.ID, flags Flags) *State {
	slot := t.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.state == nil {
		return nil
	}
	next := *slot.state
	flags.apply(&next)
	slot.state = &next
	out := next
	return &out
}

// Leave removes the user's state entirely, returning the prior state if
// one existed.
func (t *StateTable) Leave(userID repository.ID) *State {
	slot := t.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.state == nil {
		return nil
	}
	prior := *slot.state
	slot.state = nil
	return &prior
}

// ByUser returns the current state for a user, if any.
func (t *StateTable) ByUser(userID repository.ID) *State {
	slot := t.slot(userID)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.state == nil {
		return nil
	}
	out := *slot.state
	return &out
}

// ByChannel returns every current state pointing at channelID.
func (t *StateTable) ByChannel(channelID repository.ID) []State {
	var out []State
	t.users.Range(func(_ repository.ID, slot *userSlot) bool {
		slot.mu.Lock()
		if slot.state != nil && slot.state.ChannelID == channelID {
			out = append(out, *slot.state)
		}
		slot.mu.Unlock()
		return true
	})
	return out
}
