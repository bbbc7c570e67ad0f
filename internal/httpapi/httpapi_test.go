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

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/gateway"
	"github.com/accordchat/accordserver/internal/httpapi"
	"github.com/accordchat/accordserver/internal/presence"
	"github.com/accordchat/accordserver/internal/ratelimit"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/snowflake"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeMediaRouter is a no-op MediaRouterClient, the same shape the
// gateway package's own fake uses for its ConnectionActor tests.
type fakeMediaRouter struct{}

func (fakeMediaRouter) EnsureRoom(context.Context, repository.ID) error { return nil }
func (fakeMediaRouter) GenerateToken(context.Context, repository.ID, string, repository.ID, time.Duration) (string, error) {
	return "fake-token", nil
}
func (fakeMediaRouter) RemoveParticipant(context.Context, repository.ID, repository.ID) error {
	return nil
}
func (fakeMediaRouter) DeleteRoomIfEmpty(context.Context, repository.ID) error { return nil }
func (fakeMediaRouter) ExternalURL() string                                   { return "wss://voice.example.com" }
func (fakeMediaRouter) Backend() voice.Backend                                { return voice.BackendCustom }

// fixture is a fresh in-memory-sqlite-backed router plus the repository
// and id allocator it was built from, shared by every httpapi test.
type fixture struct {
	router *gin.Engine
	repo   repository.Repository
	ids    *snowflake.Allocator
	tokens *auth.TokenStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.NewGormRepository(&config.Config{TestMode: true})
	require.NoError(t, err)

	ids := snowflake.NewAllocator()
	tokens := auth.NewTokenStore(repo)

	router := httpapi.NewRouter(httpapi.Deps{
		Config:        &config.Config{TestMode: true},
		Repo:          repo,
		Tokens:        tokens,
		Perms:         auth.NewPermissionResolver(repo),
		Bus:           eventbus.New(nil),
		Presence:      presence.New(),
		VoiceStates:   voice.NewStateTable(),
		MediaRouter:   fakeMediaRouter{},
		NodeDirectory: mustNodeDirectory(t, repo),
		IDs:           ids,
		RateLimit:     ratelimit.New(),
		Registry:      gateway.NewRegistry(),
		Version:       "test",
		Commit:        "testcommit",
	})

	return &fixture{router: router, repo: repo, ids: ids, tokens: tokens}
}

func mustNodeDirectory(t *testing.T, repo repository.Repository) *voice.NodeDirectory {
	t.Helper()
	nd, err := voice.NewNodeDirectory(context.Background(), repo, nil)
	require.NoError(t, err)
	return nd
}

// do performs a request against the fixture's router and decodes the JSON
// body, if any, into a generic map for inspection by the caller.
func (f *fixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

// registerUser registers a brand new user via the public endpoint and
// returns their bearer Authorization header value plus the decoded user.
func (f *fixture) registerUser(t *testing.T, username string) (string, map[string]any) {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": username,
		"password": "correctbatteryhorse",
	})
	require.Equal(t, http.StatusCreated, w.Code, "register response: %v", resp)
	d := resp["data"].(map[string]any)
	token := "Bearer " + d["token"].(string)
	user := d["user"].(map[string]any)
	return token, user
}

// createSpace creates a space on behalf of the caller identified by
// token, returning the decoded space.
func (f *fixture) createSpace(t *testing.T, token, name string) map[string]any {
	t.Helper()
	w, resp := f.do(t, http.MethodPost, "/api/v1/spaces", token, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, "create space response: %v", resp)
	return resp["data"].(map[string]any)
}

// createAdminToken mints a user with is_admin set directly through the
// repository (registration never grants instance-admin, matching the
// external interface) and returns a bearer Authorization header for them.
func (f *fixture) createAdminToken(t *testing.T) string {
	t.Helper()
	user := &repository.User{
		ID:       repository.NewID(f.ids),
		Username: "root-admin-" + repository.NewID(f.ids).String(),
		IsAdmin:  true,
	}
	require.NoError(t, f.repo.CreateUser(context.Background(), user))
	raw, err := f.tokens.CreateUserToken(context.Background(), user.ID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + raw
}
