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

func (a *api) getSpaceChannels(c *gin.Context) {
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
	channels, err := a.deps.Repo.ListSpaceChannels(c.Request.Context(), space.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, channels)
}

type createChannelRequest struct {
	Name     string                 `json:"name" validate:"required,min=1,max=100"`
	Type     repository.ChannelType `json:"type" validate:"required,oneof=text voice"`
	ParentID *string                `json:"parent_id"`
}

func (a *api) postSpaceChannel(c *gin.Context) {
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
	if !perms.Has(repository.PermissionManageChannels) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_channels permission"))
		return
	}

	var req createChannelRequest
	if !bindJSON(c, &req) {
		return
	}
	channel := &repository.Channel{
		ID:      repository.NewID(a.deps.IDs),
		Type:    req.Type,
		SpaceID: &space.ID,
		Name:    req.Name,
	}
	if req.ParentID != nil {
		id, ok := parseIDString(*req.ParentID)
		if !ok {
			fail(c, apperr.BadRequest("invalid parent_id"))
			return
		}
		channel.ParentID = &id
	}
	if err := a.deps.Repo.CreateChannel(c.Request.Context(), channel); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.deps.Bus.Publish(eventbus.DomainEvent{Type: "channel.create", SpaceID: space.ID, HasSpaceID: true, Payload: channel})
	data(c, http.StatusCreated, channel)
}

// channelScope resolves the {channelID} path var and the caller's
// effective permission set at that channel, enforcing view_channel for
// space-scoped channels; DM channels gate on participation alone, which
// ChannelPermissions already encodes by returning the full permission set.
func (a *api) channelScope(c *gin.Context) (*repository.Channel, repository.Bitset, bool) {
	principal := mustPrincipal(c)
	id, ok := paramID(c, "channelID")
	if !ok {
		return nil, 0, false
	}
	channel, err := a.deps.Repo.GetChannel(c.Request.Context(), id)
	if err != nil {
		fail(c, translateRepoErr(err))
		return nil, 0, false
	}
	perms, err := a.deps.Perms.ChannelPermissions(c.Request.Context(), channel, principal)
	if err != nil {
		fail(c, err)
		return nil, 0, false
	}
	if !perms.Has(repository.PermissionViewChannel) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing view_channel permission"))
		return nil, 0, false
	}
	return channel, perms, true
}

func (a *api) getChannel(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	data(c, http.StatusOK, channel)
}

type patchChannelRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Position *int    `json:"position"`
}

func (a *api) patchChannel(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageChannels) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_channels permission"))
		return
	}
	var req patchChannelRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Position != nil {
		channel.Position = *req.Position
	}
	if err := a.deps.Repo.UpdateChannel(c.Request.Context(), channel); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "channel.update", channel)
	data(c, http.StatusOK, channel)
}

func (a *api) deleteChannel(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageChannels) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_channels permission"))
		return
	}
	if err := a.deps.Repo.DeleteChannel(c.Request.Context(), channel.ID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "channel.delete", gin.H{"id": channel.ID})
	c.Status(http.StatusNoContent)
}

// publishChannelEvent scopes an event to the channel's space, if any; DM
// channels have no space to scope to and so publish unscoped, reaching
// only sessions without a space filter (none today, but harmless).
func (a *api) publishChannelEvent(c *gin.Context, channel *repository.Channel, eventType string, payload any) {
	ev := eventbus.DomainEvent{Type: eventType, Payload: payload}
	if channel.SpaceID != nil {
		ev.SpaceID = *channel.SpaceID
		ev.HasSpaceID = true
	}
	a.deps.Bus.Publish(ev)
}

func (a *api) getChannelOverwrites(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	overwrites, err := a.deps.Repo.ListChannelOverwrites(c.Request.Context(), channel.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, overwrites)
}

type putOverwriteRequest struct {
	Kind  repository.OverwriteTargetKind `json:"kind" validate:"required,oneof=role member"`
	Allow []repository.Permission        `json:"allow"`
	Deny  []repository.Permission        `json:"deny"`
}

func (a *api) putChannelOverwrite(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageChannels) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_channels permission"))
		return
	}
	targetID, ok := paramID(c, "targetID")
	if !ok {
		return
	}
	var req putOverwriteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := auth.RequireGrantOnlyWhatYouHave(perms, req.Allow); err != nil {
		fail(c, err)
		return
	}
	if err := auth.RequireGrantOnlyWhatYouHave(perms, req.Deny); err != nil {
		fail(c, err)
		return
	}
	overwrite := &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  targetID,
		Kind:      req.Kind,
		Allow:     repository.NewBitset(req.Allow...),
		Deny:      repository.NewBitset(req.Deny...),
	}
	if err := a.deps.Repo.PutChannelOverwrite(c.Request.Context(), overwrite); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "channel.overwrite_update", overwrite)
	data(c, http.StatusOK, overwrite)
}

func (a *api) deleteChannelOverwrite(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageChannels) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_channels permission"))
		return
	}
	targetID, ok := paramID(c, "targetID")
	if !ok {
		return
	}
	if err := a.deps.Repo.DeleteChannelOverwrite(c.Request.Context(), channel.ID, targetID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "channel.overwrite_delete", gin.H{"channel_id": channel.ID, "target_id": targetID})
	c.Status(http.StatusNoContent)
}
