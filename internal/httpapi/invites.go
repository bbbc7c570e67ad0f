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
	"time"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// inviteCodeAlphabet restricts generated codes to the alnum set the
// external interface documents, unlike the package's own default
// alphabet which also includes '_' and '-'.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const inviteCodeLength = 8

func (a *api) getSpaceInvites(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionCreateInvite) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing create_invite permission"))
		return
	}
	invites, err := a.deps.Repo.ListSpaceInvites(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, invites)
}

type createInviteRequest struct {
	ChannelID *string `json:"channel_id"`
	MaxUses   int     `json:"max_uses"`
	MaxAge    int     `json:"max_age"`
}

func (a *api) postSpaceInvite(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionCreateInvite) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing create_invite permission"))
		return
	}

	var req createInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	code, err := gonanoid.Generate(inviteCodeAlphabet, inviteCodeLength)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	invite := &repository.Invite{
		Code:      code,
		SpaceID:   space.ID,
		MaxUses:   req.MaxUses,
		MaxAge:    req.MaxAge,
		CreatedBy: principal.UserID,
	}
	if req.ChannelID != nil {
		id, ok := parseIDString(*req.ChannelID)
		if !ok {
			fail(c, apperr.BadRequest("invalid channel_id"))
			return
		}
		invite.ChannelID = &id
	}
	if req.MaxAge > 0 {
		expires := time.Now().Add(time.Duration(req.MaxAge) * time.Second)
		invite.ExpiresAt = &expires
	}

	if err := a.deps.Repo.CreateInvite(c.Request.Context(), invite); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusCreated, invite)
}

func (a *api) deleteInvite(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionManageSpace) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_space permission"))
		return
	}
	if err := a.deps.Repo.DeleteInvite(c.Request.Context(), c.Param("code")); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// getInvite is unauthenticated: clients resolve an invite to preview the
// space before deciding whether to log in and redeem it.
func (a *api) getInvite(c *gin.Context) {
	invite, err := a.deps.Repo.GetInvite(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, invite)
}

func (a *api) postInviteRedeem(c *gin.Context) {
	principal := mustPrincipal(c)
	invite, err := a.deps.Repo.GetInvite(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if invite.ExpiresAt != nil && invite.ExpiresAt.Before(time.Now()) {
		fail(c, apperr.NotFound("invite has expired"))
		return
	}
	if invite.MaxUses > 0 && invite.Uses >= invite.MaxUses {
		fail(c, apperr.NotFound("invite has no uses remaining"))
		return
	}

	space, err := a.deps.Repo.GetSpace(c.Request.Context(), invite.SpaceID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if ban, err := a.deps.Repo.GetBan(c.Request.Context(), space.ID, principal.UserID); err == nil && ban != nil {
		fail(c, apperr.Forbidden("you are banned from this space"))
		return
	}

	member := &repository.Member{SpaceID: space.ID, UserID: principal.UserID}
	if err := a.deps.Repo.AddMember(c.Request.Context(), member); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if err := a.deps.Repo.IncrementInviteUse(c.Request.Context(), invite.Code); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "member.add", SpaceID: space.ID, HasSpaceID: true, Payload: member})
	data(c, http.StatusOK, member)
}
