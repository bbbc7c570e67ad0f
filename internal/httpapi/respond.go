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

// Package httpapi is the REST surface under /api/v1: Gin routing,
// auth/rate-limit middleware, and the resource handlers backing
// spaces/channels/members/messages/voice.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

type cursorEnvelope struct {
	After   string `json:"after,omitempty"`
	HasMore bool   `json:"has_more"`
}

func data(c *gin.Context, status int, v any) {
	c.JSON(status, gin.H{"data": v})
}

func list(c *gin.Context, v any, after repository.ID, hasMore bool) {
	c.JSON(http.StatusOK, gin.H{
		"data": v,
		"cursor": cursorEnvelope{
			After:   after.String(),
			HasMore: hasMore,
		},
	})
}

func fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.As(err)
	}
	body := gin.H{"code": appErr.Code, "message": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	if appErr.Code == apperr.CodeRateLimited {
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": body})
}

func translateRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("resource not found")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("resource already exists")
	case errors.Is(err, repository.ErrInvalid):
		return apperr.BadRequest("invalid field value")
	default:
		return apperr.Database(err)
	}
}
