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

	"github.com/accordchat/accordserver/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_UserTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)
	user := f.createUser(t, "alice", false)

	raw, err := store.CreateUserToken(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	principal, err := store.Resolve(context.Background(), "Bearer "+raw)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.UserID)
	assert.False(t, principal.IsBot)
}

func TestTokenStore_BotTokenRequiresBotPrefix(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)
	bot := f.createUser(t, "relaybot", false)

	raw, err := store.CreateBotToken(context.Background(), bot.ID)
	require.NoError(t, err)

	// A bot token presented as a Bearer credential does not resolve: the
	// kind recorded at mint time must match the header's scheme.
	principal, err := store.Resolve(context.Background(), "Bearer "+raw)
	require.NoError(t, err)
	assert.Nil(t, principal)

	principal, err = store.Resolve(context.Background(), "Bot "+raw)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, bot.ID, principal.UserID)
}

func TestTokenStore_ResolveRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)
	user := f.createUser(t, "bob", false)

	raw, err := store.CreateUserToken(context.Background(), user.ID, -time.Minute)
	require.NoError(t, err)

	principal, err := store.Resolve(context.Background(), "Bearer "+raw)
	require.NoError(t, err)
	assert.Nil(t, principal)
}

func TestTokenStore_ResolveRejectsMalformedHeader(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)

	principal, err := store.Resolve(context.Background(), "garbage")
	require.NoError(t, err)
	assert.Nil(t, principal)

	principal, err = store.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, principal)
}

func TestTokenStore_RevokeInvalidatesToken(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)
	user := f.createUser(t, "carol", false)

	raw, err := store.CreateUserToken(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(context.Background(), raw))

	principal, err := store.Resolve(context.Background(), "Bearer "+raw)
	require.NoError(t, err)
	assert.Nil(t, principal)
}

func TestTokenStore_RevokeUnknownTokenReturnsErrTokenNotFound(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)

	err := store.Revoke(context.Background(), "never-issued")
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestTokenStore_RevokeAllForUser(t *testing.T) {
	f := newFixture(t)
	store := auth.NewTokenStore(f.repo)
	user := f.createUser(t, "dave", false)

	rawA, err := store.CreateUserToken(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)
	rawB, err := store.CreateUserToken(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.RevokeAllForUser(context.Background(), user.ID))

	for _, raw := range []string{rawA, rawB} {
		principal, err := store.Resolve(context.Background(), "Bearer "+raw)
		require.NoError(t, err)
		assert.Nil(t, principal)
	}
}
