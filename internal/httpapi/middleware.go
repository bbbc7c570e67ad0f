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

package httpapi

import (
	"strconv"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

const principalKey = "accord.principal"

// authenticate resolves the Authorization header to a Principal and
// stores it in the gin context; it never aborts the request, since some
// routes (public space listing, invite info) are usable anonymously.
func authenticate(tokens *auth.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := tokens.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			fail(c, err)
			return
		}
		if principal != nil {
			c.Set(principalKey, *principal)
		}
		c.Next()
	}
}

// requireAuth aborts with CodeUnauthorized unless authenticate already
// resolved a Principal for this request.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := principalFrom(c); !ok {
			fail(c, apperr.Unauthorized("authentication required"))
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func mustPrincipal(c *gin.Context) auth.Principal {
	p, _ := principalFrom(c)
	return p
}

// rateLimit enforces the shared token-bucket limiter keyed by the
// Authorization header, matching the gateway's own connection-level
// limiter keying.
func rateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.KeyFor(c.GetHeader("Authorization"))
		result := limiter.Allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			fail(c, apperr.RateLimited(retryAfter))
			return
		}
		c.Next()
	}
}
