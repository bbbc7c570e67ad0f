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
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

// resolveSpace looks up a space by the {spaceID} path var, which the
// external interface documents as either a snowflake id or a slug.
func (a *api) resolveSpace(ctx context.Context, raw string) (*repository.Space, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		space, err := a.deps.Repo.GetSpace(ctx, repository.ID(v))
		if err == nil {
			return space, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, translateRepoErr(err)
		}
	}
	space, err := a.deps.Repo.GetSpaceBySlug(ctx, raw)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return space, nil
}

func (a *api) getPublicSpaces(c *gin.Context) {
	cursor := cursorFromQuery(c)
	page, err := a.deps.Repo.ListPublicSpaces(c.Request.Context(), cursor)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	after := repository.ID(0)
	if len(page.Items) > 0 {
		after = page.Items[len(page.Items)-1].ID
	}
	list(c, page.Items, after, page.HasMore)
}

type createSpaceRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Public bool   `json:"public"`
}

func (a *api) postSpace(c *gin.Context) {
	principal := mustPrincipal(c)
	var req createSpaceRequest
	if !bindJSON(c, &req) {
		return
	}

	slug, err := a.deps.Repo.ReserveSlug(c.Request.Context(), req.Name, 0)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}

	space := &repository.Space{
		ID:      repository.NewID(a.deps.IDs),
		Name:    req.Name,
		Slug:    slug,
		OwnerID: principal.UserID,
		Public:  req.Public,
	}
	if err := a.deps.Repo.CreateSpaceBootstrapped(c.Request.Context(), space, principal.UserID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusCreated, space)
}

func (a *api) getSpace(c *gin.Context) {
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	principal := mustPrincipal(c)
	if !space.Public {
		if _, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal); err != nil {
			fail(c, err)
			return
		}
	}
	data(c, http.StatusOK, space)
}

type patchSpaceRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Public *bool   `json:"public"`
}

func (a *api) patchSpace(c *gin.Context) {
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

	var req patchSpaceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != nil {
		space.Name = *req.Name
		slug, err := a.deps.Repo.ReserveSlug(c.Request.Context(), *req.Name, space.ID)
		if err != nil {
			fail(c, translateRepoErr(err))
			return
		}
		space.Slug = slug
	}
	if req.Public != nil {
		space.Public = *req.Public
	}
	if err := a.deps.Repo.UpdateSpace(c.Request.Context(), space); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "space.update", SpaceID: space.ID, HasSpaceID: true, Payload: space})
	data(c, http.StatusOK, space)
}

func (a *api) deleteSpace(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	if space.OwnerID != principal.UserID && !principal.IsAdmin {
		fail(c, apperr.Forbidden("only the owner can delete this space"))
		return
	}
	if err := a.deps.Repo.DeleteSpace(c.Request.Context(), space.ID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "space.delete", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"id": space.ID}})
	c.Status(http.StatusNoContent)
}

// postSpaceJoin adds the caller as a member of a public space; joining a
// private space requires a redeemed invite instead (see postInviteRedeem).
func (a *api) postSpaceJoin(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	if !space.Public {
		fail(c, apperr.Forbidden("this space is not public"))
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
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "member.add", SpaceID: space.ID, HasSpaceID: true, Payload: member})
	data(c, http.StatusOK, member)
}
