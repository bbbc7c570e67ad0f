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

	"github.com/accordchat/accordserver/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRateLimitRejectsAfterCapacity covers S4: the (capacity+1)th request
// from the same Authorization header within the window is rejected with
// 429 and a positive Retry-After header, while the response envelope
// still carries the rate_limited error code.
func TestRateLimitRejectsAfterCapacity(t *testing.T) {
	f := newFixture(t)
	token, _ := f.registerUser(t, "alice")

	var lastCode int
	var lastResp map[string]any
	for i := 0; i < ratelimit.Capacity; i++ {
		rec, resp := f.do(t, http.MethodGet, "/api/v1/version", token, nil)
		lastCode, lastResp = rec.Code, resp
	}
	require.Equal(t, http.StatusOK, lastCode, "request %d should still be allowed: %v", ratelimit.Capacity, lastResp)

	rec, resp := f.do(t, http.MethodGet, "/api/v1/version", token, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "capacity+1 response: %v", resp)
	assert.Equal(t, "rate_limited", resp["error"].(map[string]any)["code"])
	retryAfter := rec.Header().Get("Retry-After")
	require.NotEmpty(t, retryAfter)
}
