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
	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

func (a *api) getSpaceMembers(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal); err != nil {
		fail(c, err)
		return
	}
	cursor := cursorFromQuery(c)
	page, err := a.deps.Repo.ListMembers(c.Request.Context(), space.ID, c.Query("search"), cursor)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	var after repository.ID
	if len(page.Items) > 0 {
		after = page.Items[len(page.Items)-1].UserID
	}
	list(c, page.Items, after, page.HasMore)
}

func (a *api) getSelfMember(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	member, err := a.deps.Repo.GetMember(c.Request.Context(), space.ID, principal.UserID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, member)
}

type patchMemberRequest struct {
	Nickname *string  `json:"nickname" validate:"omitempty,max=32"`
	RoleIDs  []string `json:"role_ids"`
}

func (a *api) patchSpaceMember(c *gin.Context) {
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

	var req patchMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	isSelf := targetID == principal.UserID
	if req.Nickname != nil {
		if isSelf {
			if !perms.Has(repository.PermissionChangeNickname) && !perms.Has(repository.PermissionAdministrator) {
				fail(c, apperr.Forbidden("missing change_nickname permission"))
				return
			}
		} else if !perms.Has(repository.PermissionManageNicknames) && !perms.Has(repository.PermissionAdministrator) {
			fail(c, apperr.Forbidden("missing manage_nicknames permission"))
			return
		}
		if err := a.deps.Repo.UpdateMemberNickname(c.Request.Context(), space.ID, targetID, *req.Nickname); err != nil {
			fail(c, translateRepoErr(err))
			return
		}
	}

	if req.RoleIDs != nil {
		if !perms.Has(repository.PermissionManageRoles) && !perms.Has(repository.PermissionAdministrator) {
			fail(c, apperr.Forbidden("missing manage_roles permission"))
			return
		}
		if err := requireHierarchyOverMember(c, a, space, principal, targetID); err != nil {
			fail(c, err)
			return
		}
		roleIDs := make([]repository.ID, 0, len(req.RoleIDs))
		for _, raw := range req.RoleIDs {
			id, ok := parseIDString(raw)
			if !ok {
				fail(c, apperr.BadRequest("invalid role id: %s", raw))
				return
			}
			role, err := a.deps.Repo.GetRole(c.Request.Context(), id)
			if err != nil {
				fail(c, translateRepoErr(err))
				return
			}
			if err := auth.RequireGrantOnlyWhatYouHave(perms, role.Permissions.ToSlice()); err != nil {
				fail(c, err)
				return
			}
			roleIDs = append(roleIDs, id)
		}
		if err := a.deps.Repo.SetMemberRoles(c.Request.Context(), space.ID, targetID, roleIDs); err != nil {
			fail(c, translateRepoErr(err))
			return
		}
	}

	member, err := a.deps.Repo.GetMember(c.Request.Context(), space.ID, targetID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "member.update", SpaceID: space.ID, HasSpaceID: true, Payload: member})
	data(c, http.StatusOK, member)
}

func (a *api) kickSpaceMember(c *gin.Context) {
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
	if !perms.Has(repository.PermissionKickMembers) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing kick_members permission"))
		return
	}
	if err := requireHierarchyOverMember(c, a, space, principal, targetID); err != nil {
		fail(c, err)
		return
	}
	if err := a.deps.Repo.RemoveMember(c.Request.Context(), space.ID, targetID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "member.remove", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"space_id": space.ID, "user_id": targetID}})
	c.Status(http.StatusNoContent)
}
