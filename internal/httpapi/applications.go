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

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

func (a *api) getApplications(c *gin.Context) {
	principal := mustPrincipal(c)
	apps, err := a.deps.Repo.ListApplicationsOwnedBy(c.Request.Context(), principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, apps)
}

type createApplicationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

type applicationResponse struct {
	*repository.Application
	BotToken string `json:"bot_token"`
}

// postApplication registers a bot: an owning user, a dedicated bot User
// row, and a non-expiring bot token returned once in the response body.
func (a *api) postApplication(c *gin.Context) {
	principal := mustPrincipal(c)
	var req createApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	botUser := &repository.User{
		ID:          repository.NewID(a.deps.IDs),
		Username:    "bot-" + repository.NewID(a.deps.IDs).String(),
		DisplayName: req.Name,
		IsBot:       true,
	}
	if err := a.deps.Repo.CreateUser(c.Request.Context(), botUser); err != nil {
		fail(c, translateRepoErr(err))
		return
	}

	app := &repository.Application{
		ID:          repository.NewID(a.deps.IDs),
		Name:        req.Name,
		OwnerUserID: principal.UserID,
		BotUserID:   botUser.ID,
	}
	if err := a.deps.Repo.CreateApplication(c.Request.Context(), app); err != nil {
		fail(c, translateRepoErr(err))
		return
	}

	token, err := a.deps.Tokens.CreateBotToken(c.Request.Context(), botUser.ID)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	data(c, http.StatusCreated, applicationResponse{Application: app, BotToken: token})
}

func (a *api) deleteApplication(c *gin.Context) {
	principal := mustPrincipal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	app, err := a.deps.Repo.GetApplication(c.Request.Context(), id)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if app.OwnerUserID != principal.UserID && !principal.IsAdmin {
		fail(c, apperr.Forbidden("not the application owner"))
		return
	}
	if err := a.deps.Repo.DeleteApplication(c.Request.Context(), id); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	_ = a.deps.Tokens.RevokeAllForUser(c.Request.Context(), app.BotUserID)
	c.Status(http.StatusNoContent)
}
