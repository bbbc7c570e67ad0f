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

package presence_test

import (
	"testing"

	"github.com/accordchat/accordserver/internal/presence"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestTable_AcquireFirstSessionCreatesPresence(t *testing.T) {
	tbl := presence.New()
	created := tbl.Acquire(1, 100)
	assert.True(t, created)

	rec, ok := tbl.Get(1)
	assert.True(t, ok)
	assert.Equal(t, presence.StatusOnline, rec.Status)
}

func TestTable_SecondSessionDoesNotRecreate(t *testing.T) {
	tbl := presence.New()
	tbl.Acquire(1, 100)
	created := tbl.Acquire(1, 200)
	assert.False(t, created)
}

func TestTable_ReleaseKeepsPresenceWhileAnotherSessionHoldsIt(t *testing.T) {
	tbl := presence.New()
	tbl.Acquire(1, 100)
	tbl.Acquire(1, 200)

	cleared := tbl.Release(1, 100)
	assert.False(t, cleared)
	_, ok := tbl.Get(1)
	assert.True(t, ok)
}

func TestTable_ReleaseLastSessionClearsPresence(t *testing.T) {
	tbl := presence.New()
	tbl.Acquire(1, 100)
	tbl.Acquire(1, 200)

	tbl.Release(1, 100)
	cleared := tbl.Release(1, 200)
	assert.True(t, cleared)

	_, ok := tbl.Get(1)
	assert.False(t, ok)
}

func TestTable_UpdateRequiresHoldingSession(t *testing.T) {
	tbl := presence.New()
	tbl.Acquire(1, 100)

	// A session id that never acquired the presence cannot mutate it.
	tbl.Update(1, repository.ID(999), presence.StatusDND, nil)
	rec, _ := tbl.Get(1)
	assert.Equal(t, presence.StatusOnline, rec.Status)

	tbl.Update(1, 100, presence.StatusDND, nil)
	rec, _ = tbl.Get(1)
	assert.Equal(t, presence.StatusDND, rec.Status)
}

func TestClampStatus(t *testing.T) {
	assert.Equal(t, presence.StatusIdle, presence.ClampStatus("idle"))
	assert.Equal(t, presence.StatusOnline, presence.ClampStatus("bogus"))
}

func TestStatus_BroadcastHidesInvisible(t *testing.T) {
	assert.Equal(t, presence.StatusOffline, presence.StatusInvisible.Broadcast())
	assert.Equal(t, presence.StatusOnline, presence.StatusOnline.Broadcast())
}

func TestTable_Snapshot(t *testing.T) {
	tbl := presence.New()
	tbl.Acquire(1, 100)
	tbl.Acquire(2, 200)

	snap := tbl.Snapshot([]repository.ID{1, 2, 3})
	assert.Len(t, snap, 2)
	_, ok := snap[3]
	assert.False(t, ok)
}
