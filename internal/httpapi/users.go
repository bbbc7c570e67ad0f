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
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *api) getSelf(c *gin.Context) {
	principal := mustPrincipal(c)
	user, err := a.deps.Repo.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, user)
}

type patchSelfRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
}

func (a *api) patchSelf(c *gin.Context) {
	principal := mustPrincipal(c)
	var req patchSelfRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := a.deps.Repo.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if err := a.deps.Repo.UpdateUser(c.Request.Context(), user); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, user)
}

func (a *api) getSelfSpaces(c *gin.Context) {
	principal := mustPrincipal(c)
	spaces, err := a.deps.Repo.ListUserSpaces(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, spaces)
}

func (a *api) getSelfChannels(c *gin.Context) {
	principal := mustPrincipal(c)
	channels, err := a.deps.Repo.ListUserChannels(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, channels)
}

func (a *api) getUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := a.deps.Repo.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, user)
}
