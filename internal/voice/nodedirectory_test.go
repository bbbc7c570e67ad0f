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

package voice_test

import (
	"context"
	"testing"
	"time"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/stretchr/testify/require"
)

func newDirectory(t *testing.T) (*voice.NodeDirectory, repository.Repository) {
	t.Helper()
	repo, err := repository.NewGormRepository(&config.Config{TestMode: true})
	require.NoError(t, err)
	dir, err := voice.NewNodeDirectory(context.Background(), repo, nil)
	require.NoError(t, err)
	return dir, repo
}

func TestNodeDirectory_RegisterThenSelectReturnsNode(t *testing.T) {
	dir, _ := newDirectory(t)
	require.NoError(t, dir.Register(context.Background(), "n1", "sfu1.example.com:7880", "us-east", 100))

	n := dir.Select("us-east")
	require.NotNil(t, n)
	require.Equal(t, "n1", n.ID)
}

func TestNodeDirectory_SelectPrefersRegionMatch(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, dir.Register(ctx, "east", "e.example.com", "us-east", 100))
	require.NoError(t, dir.Register(ctx, "west", "w.example.com", "us-west", 100))
	require.NoError(t, dir.Heartbeat(ctx, "east", 50))
	require.NoError(t, dir.Heartbeat(ctx, "west", 0))

	n := dir.Select("us-east")
	require.NotNil(t, n)
	require.Equal(t, "east", n.ID)
}

func TestNodeDirectory_SelectFallsBackToLeastLoadedGlobally(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, dir.Register(ctx, "a", "a.example.com", "us-east", 100))
	require.NoError(t, dir.Register(ctx, "b", "b.example.com", "us-west", 100))
	require.NoError(t, dir.Heartbeat(ctx, "a", 80))
	require.NoError(t, dir.Heartbeat(ctx, "b", 10))

	n := dir.Select("eu-central")
	require.NotNil(t, n)
	require.Equal(t, "b", n.ID)
}

func TestNodeDirectory_HeartbeatUnknownNodeIsNotFound(t *testing.T) {
	dir, _ := newDirectory(t)
	err := dir.Heartbeat(context.Background(), "ghost", 1)
	require.Error(t, err)
}

func TestNodeDirectory_DeregisterRemovesFromSelection(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, dir.Register(ctx, "n1", "n1.example.com", "us-east", 100))
	require.NoError(t, dir.Deregister(ctx, "n1"))

	require.Nil(t, dir.Select("us-east"))
	require.Error(t, dir.Heartbeat(ctx, "n1", 1))
}

func TestNodeDirectory_ReapMarksStaleNodesOffline(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()
	require.NoError(t, dir.Register(ctx, "n1", "n1.example.com", "us-east", 100))

	dir.Reap(ctx, -1*time.Second) // everything is "older" than a negative timeout

	require.Nil(t, dir.Select("us-east"))
}

func TestNodeDirectory_SelectReturnsNilWhenNoneOnline(t *testing.T) {
	dir, _ := newDirectory(t)
	require.Nil(t, dir.Select("us-east"))
}
