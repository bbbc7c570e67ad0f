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
	"errors"
	"net/http"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

func (a *api) getSpaceBans(c *gin.Context) {
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
	if !perms.Has(repository.PermissionBanMembers) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing ban_members permission"))
		return
	}
	bans, err := a.deps.Repo.ListBans(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, bans)
}

type putBanRequest struct {
	Reason string `json:"reason" validate:"max=512"`
}

func (a *api) putSpaceBan(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	targetID, ok := paramID(c, "userID")
	if !ok {
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionBanMembers) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing ban_members permission"))
		return
	}
	if err := requireHierarchyOverMember(c, a, space, principal, targetID); err != nil {
		fail(c, err)
		return
	}

	var req putBanRequest
	if !bindJSON(c, &req) {
		return
	}

	ban := &repository.Ban{SpaceID: space.ID, UserID: targetID, Reason: req.Reason, BannedBy: principal.UserID}
	if err := a.deps.Repo.CreateBan(c.Request.Context(), ban); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	_ = a.deps.Repo.RemoveMember(c.Request.Context(), space.ID, targetID)
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "ban.create", SpaceID: space.ID, HasSpaceID: true, Payload: ban})
	data(c, http.StatusOK, ban)
}

func (a *api) deleteSpaceBan(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	targetID, ok := paramID(c, "userID")
	if !ok {
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionBanMembers) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing ban_members permission"))
		return
	}
	if err := a.deps.Repo.DeleteBan(c.Request.Context(), space.ID, targetID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "ban.delete", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"space_id": space.ID, "user_id": targetID}})
	c.Status(http.StatusNoContent)
}

// requireHierarchyOverMember enforces that principal strictly outranks
// targetID's highest assigned role, the shared check every moderation
// action against another member passes before mutating the target. A
// target who is not a member of the space counts as position 0.
func requireHierarchyOverMember(c *gin.Context, a *api, space *repository.Space, principal auth.Principal, targetID repository.ID) error {
	actorPos, err := a.deps.Perms.HighestRolePosition(c.Request.Context(), space, principal.UserID)
	if err != nil {
		return err
	}
	if _, err := a.deps.Repo.GetMember(c.Request.Context(), space.ID, targetID); errors.Is(err, repository.ErrNotFound) {
		return auth.RequireHierarchy(actorPos, 0)
	}
	targetPos, err := a.deps.Perms.HighestRolePosition(c.Request.Context(), space, targetID)
	if err != nil {
		return err
	}
	return auth.RequireHierarchy(actorPos, targetPos)
}
