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

// Package presence is the in-memory user -> presence record table. A
// Presence exists for a user iff that user has at least one live gateway
// session with a published (non-invisible) status; it is refcounted by
// session id so that a user's second session closing doesn't clear a
// presence the first session still holds.
package presence

import (
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/puzpuzpuz/xsync/v4"
)

// Status is the presence status enum. Invisible is accepted on input but
// never stored or broadcast as itself: every consumer-facing view of an
// invisible status is "offline".
type Status string

const (
	StatusOnline    Status = "online"
	StatusIdle      Status = "idle"
	StatusDND       Status = "dnd"
	StatusInvisible Status = "invisible"
	StatusOffline   Status = "offline"
)

// ClampStatus validates s against the known enum, defaulting to online.
func ClampStatus(s string) Status {
	switch Status(s) {
	case StatusOnline, StatusIdle, StatusDND, StatusInvisible:
		return Status(s)
	default:
		return StatusOnline
	}
}

// Broadcast returns the status a presence.update event should actually
// carry: invisible is never shown to other users and is reported as
// offline instead.
func (s Status) Broadcast() Status {
	if s == StatusInvisible {
		return StatusOffline
	}
	return s
}

// Activity is a single free-form activity entry attached to a presence.
type Activity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record is one user's current presence.
type Record struct {
	Status     Status     `json:"status"`
	Activities []Activity `json:"activities,omitempty"`
}

type entry struct {
	record   Record
	sessions map[repository.ID]struct{}
}

// Table is the concurrent-safe user -> Record map. Every mutating method
// takes the owning session id so refcounting stays correct without a
// separate SessionRegistry round-trip.
type Table struct {
	users *xsync.Map[repository.ID, *entry]
}

// New returns a ready-to-use Table.
func New() *Table {
	return &Table{users: xsync.NewMap[repository.ID, *entry]()}
}

// Acquire registers sessionID as holding userID's presence and sets its
// initial status to online, returning true iff this is the user's first
// live session (i.e. presence was just created rather than already
// existing).
func (t *Table) Acquire(userID, sessionID repository.ID) bool {
	created := false
	t.users.Compute(userID, func(e *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if !loaded {
			created = true
			e = &entry{record: Record{Status: StatusOnline}, sessions: map[repository.ID]struct{}{}}
		}
		e.sessions[sessionID] = struct{}{}
		return e, xsync.UpdateOp
	})
	return created
}

// Update sets the status/activities PRESENCE_UPDATE supplied, provided
// sessionID still holds the presence.
func (t *Table) Update(userID, sessionID repository.ID, status Status, activities []Activity) {
	t.users.Compute(userID, func(e *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if !loaded {
			return nil, xsync.CancelOp
		}
		if _, ok := e.sessions[sessionID]; !ok {
			return e, xsync.CancelOp
		}
		e.record.Status = status
		e.record.Activities = activities
		return e, xsync.UpdateOp
	})
}

// Release removes sessionID from userID's holder set, returning true iff
// that was the last session holding the presence (in which case it has
// now been cleared entirely).
func (t *Table) Release(userID, sessionID repository.ID) bool {
	cleared := false
	t.users.Compute(userID, func(e *entry, loaded bool) (*entry, xsync.ComputeOp) {
		if !loaded {
			return nil, xsync.CancelOp
		}
		delete(e.sessions, sessionID)
		if len(e.sessions) == 0 {
			cleared = true
			return nil, xsync.DeleteOp
		}
		return e, xsync.UpdateOp
	})
	return cleared
}

// Get returns the current record for userID and whether one exists.
func (t *Table) Get(userID repository.ID) (Record, bool) {
	e, ok := t.users.Load(userID)
	if !ok {
		return Record{}, false
	}
	return e.record, true
}

// Snapshot returns the current Record for each of the given user ids that
// has one, used to build the initial presence set sent in READY.
func (t *Table) Snapshot(userIDs []repository.ID) map[repository.ID]Record {
	out := make(map[repository.ID]Record)
	for _, id := range userIDs {
		if rec, ok := t.Get(id); ok {
			out[id] = rec
		}
	}
	return out
}
