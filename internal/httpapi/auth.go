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
	"strings"
	"time"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const userTokenTTL = 30 * 24 * time.Hour

type registerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  *repository.User `json:"user"`
	Token string           `json:"token"`
}

func (a *api) postRegister(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	user := &repository.User{
		ID:           repository.NewID(a.deps.IDs),
		Username:     req.Username,
		DisplayName:  req.Username,
		PasswordHash: string(hash),
	}
	if err := a.deps.Repo.CreateUser(c.Request.Context(), user); err != nil {
		fail(c, translateRepoErr(err))
		return
	}

	token, err := a.deps.Tokens.CreateUserToken(c.Request.Context(), user.ID, userTokenTTL)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	data(c, http.StatusCreated, authResponse{User: user, Token: token})
}

func (a *api) postLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := a.deps.Repo.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		fail(c, apperr.Unauthorized("invalid username or password"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(c, apperr.Unauthorized("invalid username or password"))
		return
	}

	token, err := a.deps.Tokens.CreateUserToken(c.Request.Context(), user.ID, userTokenTTL)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	data(c, http.StatusOK, authResponse{User: user, Token: token})
}

// postLogout revokes only the bearer token that authorized this request,
// leaving the user's other sessions untouched.
func (a *api) postLogout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw := strings.TrimPrefix(strings.TrimPrefix(header, "Bearer "), "Bot ")
	if err := a.deps.Tokens.Revoke(c.Request.Context(), raw); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.Status(http.StatusNoContent)
}
