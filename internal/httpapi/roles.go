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

func (a *api) requireSpaceManageRoles(c *gin.Context, space *repository.Space, principal auth.Principal) (repository.Bitset, bool) {
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return 0, false
	}
	if !perms.Has(repository.PermissionManageRoles) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_roles permission"))
		return 0, false
	}
	return perms, true
}

func (a *api) getSpaceRoles(c *gin.Context) {
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	roles, err := a.deps.Repo.ListRoles(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, roles)
}

type roleRequest struct {
	Name        string               `json:"name" validate:"required,min=1,max=100"`
	Permissions []repository.Permission `json:"permissions"`
}

func (a *api) postSpaceRole(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	perms, ok := a.requireSpaceManageRoles(c, space, principal)
	if !ok {
		return
	}

	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := auth.RequireGrantOnlyWhatYouHave(perms, req.Permissions); err != nil {
		fail(c, err)
		return
	}

	roles, err := a.deps.Repo.ListRoles(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	position := len(roles)

	role := &repository.Role{
		ID:          repository.NewID(a.deps.IDs),
		SpaceID:     space.ID,
		Name:        req.Name,
		Position:    position,
		Permissions: repository.NewBitset(req.Permissions...),
	}
	if err := a.deps.Repo.CreateRole(c.Request.Context(), role); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "role.create", SpaceID: space.ID, HasSpaceID: true, Payload: role})
	data(c, http.StatusCreated, role)
}

type reorderRolesRequest struct {
	RoleIDs []string `json:"role_ids" validate:"required,min=1"`
}

func (a *api) patchRoleOrder(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	if _, ok := a.requireSpaceManageRoles(c, space, principal); !ok {
		return
	}

	var req reorderRolesRequest
	if !bindJSON(c, &req) {
		return
	}
	ids := make([]repository.ID, 0, len(req.RoleIDs))
	for _, raw := range req.RoleIDs {
		id, ok := parseIDString(raw)
		if !ok {
			fail(c, apperr.BadRequest("invalid role id: %s", raw))
			return
		}
		ids = append(ids, id)
	}
	if err := a.deps.Repo.ReorderRoles(c.Request.Context(), space.ID, ids); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "role.reorder", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"role_ids": req.RoleIDs}})
	c.Status(http.StatusNoContent)
}

func (a *api) putSpaceRole(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	roleID, ok := paramID(c, "roleID")
	if !ok {
		return
	}
	perms, ok := a.requireSpaceManageRoles(c, space, principal)
	if !ok {
		return
	}

	role, err := a.deps.Repo.GetRole(c.Request.Context(), roleID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if role.Managed {
		fail(c, apperr.Forbidden("this role is managed and cannot be edited"))
		return
	}
	if err := auth.RequireRoleHierarchy(mustActorPosition(c, a, space, principal), role.Position); err != nil {
		fail(c, err)
		return
	}

	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := auth.RequireGrantOnlyWhatYouHave(perms, req.Permissions); err != nil {
		fail(c, err)
		return
	}
	role.Name = req.Name
	role.Permissions = repository.NewBitset(req.Permissions...)
	if err := a.deps.Repo.UpdateRole(c.Request.Context(), role); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "role.update", SpaceID: space.ID, HasSpaceID: true, Payload: role})
	data(c, http.StatusOK, role)
}

func (a *api) deleteSpaceRole(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	roleID, ok := paramID(c, "roleID")
	if !ok {
		return
	}
	if _, ok := a.requireSpaceManageRoles(c, space, principal); !ok {
		return
	}

	role, err := a.deps.Repo.GetRole(c.Request.Context(), roleID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if role.Managed || role.Position == 0 {
		fail(c, apperr.Forbidden("this role cannot be deleted"))
		return
	}
	if err := auth.RequireRoleHierarchy(mustActorPosition(c, a, space, principal), role.Position); err != nil {
		fail(c, err)
		return
	}
	if err := a.deps.Repo.DeleteRole(c.Request.Context(), roleID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "role.delete", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"id": roleID}})
	c.Status(http.StatusNoContent)
}

func mustActorPosition(c *gin.Context, a *api, space *repository.Space, principal auth.Principal) int {
	pos, err := a.deps.Perms.HighestRolePosition(c.Request.Context(), space, principal.UserID)
	if err != nil {
		return 0
	}
	return pos
}
