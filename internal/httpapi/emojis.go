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
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

func (a *api) getSpaceEmojis(c *gin.Context) {
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	emojis, err := a.deps.Repo.ListSpaceEmojis(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, emojis)
}

type createEmojiRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=32"`
	ImageURL string `json:"image_url" validate:"required,url"`
}

func (a *api) postSpaceEmoji(c *gin.Context) {
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
	if !perms.Has(repository.PermissionManageEmojis) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_emojis permission"))
		return
	}

	var req createEmojiRequest
	if !bindJSON(c, &req) {
		return
	}
	emoji := &repository.Emoji{
		ID:        repository.NewID(a.deps.IDs),
		SpaceID:   space.ID,
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		CreatedBy: principal.UserID,
	}
	if err := a.deps.Repo.CreateEmoji(c.Request.Context(), emoji); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "emoji.create", SpaceID: space.ID, HasSpaceID: true, Payload: emoji})
	data(c, http.StatusCreated, emoji)
}

func (a *api) deleteSpaceEmoji(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	emojiID, ok := paramID(c, "emojiID")
	if !ok {
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionManageEmojis) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_emojis permission"))
		return
	}
	if err := a.deps.Repo.DeleteEmoji(c.Request.Context(), emojiID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "emoji.delete", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"id": emojiID}})
	c.Status(http.StatusNoContent)
}

func (a *api) getSpaceSoundboard(c *gin.Context) {
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	sounds, err := a.deps.Repo.ListSpaceSoundboardSounds(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, sounds)
}

type createSoundRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=32"`
	SoundURL string `json:"sound_url" validate:"required,url"`
}

func (a *api) postSpaceSound(c *gin.Context) {
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
	if !perms.Has(repository.PermissionManageEmojis) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_emojis permission"))
		return
	}

	var req createSoundRequest
	if !bindJSON(c, &req) {
		return
	}
	sound := &repository.SoundboardSound{
		ID:        repository.NewID(a.deps.IDs),
		SpaceID:   space.ID,
		Name:      req.Name,
		SoundURL:  req.SoundURL,
		CreatedBy: principal.UserID,
	}
	if err := a.deps.Repo.CreateSoundboardSound(c.Request.Context(), sound); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "soundboard_sound.create", SpaceID: space.ID, HasSpaceID: true, Payload: sound})
	data(c, http.StatusCreated, sound)
}

func (a *api) deleteSpaceSound(c *gin.Context) {
	principal := mustPrincipal(c)
	space, err := a.resolveSpace(c.Request.Context(), c.Param("spaceID"))
	if err != nil {
		fail(c, err)
		return
	}
	soundID, ok := paramID(c, "soundID")
	if !ok {
		return
	}
	perms, err := a.deps.Perms.SpacePermissions(c.Request.Context(), space, principal)
	if err != nil {
		fail(c, err)
		return
	}
	if !perms.Has(repository.PermissionManageEmojis) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_emojis permission"))
		return
	}
	if err := a.deps.Repo.DeleteSoundboardSound(c.Request.Context(), soundID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "soundboard_sound.delete", SpaceID: space.ID, HasSpaceID: true, Payload: gin.H{"id": soundID}})
	c.Status(http.StatusNoContent)
}
