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

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/snowflake"
	"github.com/stretchr/testify/require"
)

// fixture is a fresh in-memory-sqlite repository plus a private snowflake
// allocator, shared by every auth package test.
type fixture struct {
	repo repository.Repository
	ids  *snowflake.Allocator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.NewGormRepository(&config.Config{TestMode: true})
	require.NoError(t, err)
	return &fixture{repo: repo, ids: snowflake.NewAllocator()}
}

func (f *fixture) newID() repository.ID {
	return repository.NewID(f.ids)
}

func (f *fixture) createUser(t *testing.T, username string, isAdmin bool) *repository.User {
	t.Helper()
	u := &repository.User{
		ID:       f.newID(),
		Username: username,
		IsAdmin:  isAdmin,
	}
	require.NoError(t, f.repo.CreateUser(context.Background(), u))
	return u
}

// createSpace bootstraps a space owned by owner, returning the space and
// its @everyone/Moderator/Admin roles in that order.
func (f *fixture) createSpace(t *testing.T, owner *repository.User) (*repository.Space, []repository.Role) {
	t.Helper()
	space := &repository.Space{ID: f.newID(), Name: "test space", Slug: "test-space-" + owner.Username}
	require.NoError(t, f.repo.CreateSpaceBootstrapped(context.Background(), space, owner.ID))
	roles, err := f.repo.ListRoles(context.Background(), space.ID)
	require.NoError(t, err)
	return space, roles
}

func (f *fixture) joinSpace(t *testing.T, spaceID, userID repository.ID) {
	t.Helper()
	require.NoError(t, f.repo.AddMember(context.Background(), &repository.Member{
		SpaceID:  spaceID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}))
}
