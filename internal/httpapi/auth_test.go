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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogout(t *testing.T) {
	f := newFixture(t)

	token, user := f.registerUser(t, "alice")
	assert.Equal(t, "alice", user["username"])

	w, resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "correctbatteryhorse",
	})
	require.Equal(t, http.StatusOK, w.Code, "login response: %v", resp)
	loginToken := "Bearer " + resp["data"].(map[string]any)["token"].(string)

	w, _ = f.do(t, http.MethodGet, "/api/v1/users/@me", loginToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The revoked token no longer resolves to a principal; the @me route
	// requires auth and so rejects with Unauthorized.
	w, resp = f.do(t, http.MethodGet, "/api/v1/users/@me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", resp["error"].(map[string]any)["code"])

	// The login token is a distinct session and survives the logout above.
	w, _ = f.do(t, http.MethodGet, "/api/v1/users/@me", loginToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "bob")

	w, resp := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "bob",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", resp["error"].(map[string]any)["code"])
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/v1/users/@me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", resp["error"].(map[string]any)["code"])
}
