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
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindJSON decodes and struct-validates the request body into dst,
// writing a BadRequest error and returning false on any failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperr.BadRequest("%s", err.Error()))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		fail(c, apperr.BadRequest("%s", err.Error()))
		return false
	}
	return true
}

// paramID parses the named path parameter as a snowflake ID.
func paramID(c *gin.Context, name string) (repository.ID, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fail(c, apperr.BadRequest("invalid id: %s", raw))
		return 0, false
	}
	return repository.ID(v), true
}

// parseIDString parses a decimal snowflake ID without writing to the
// response on failure, for callers that report a field-specific error.
func parseIDString(raw string) (repository.ID, bool) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return repository.ID(v), true
}

func cursorFromQuery(c *gin.Context) repository.Cursor {
	var cursor repository.Cursor
	if after := c.Query("after"); after != "" {
		if v, err := strconv.ParseInt(after, 10, 64); err == nil {
			cursor.After = repository.ID(v)
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			cursor.Limit = v
		}
	}
	return cursor
}
