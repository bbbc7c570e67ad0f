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
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/gin-gonic/gin"
)

func (a *api) getChannelMessages(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	cursor := cursorFromQuery(c)
	page, err := a.deps.Repo.ListChannelMessages(c.Request.Context(), channel.ID, cursor)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	var after repository.ID
	if len(page.Items) > 0 {
		after = page.Items[len(page.Items)-1].ID
	}
	list(c, page.Items, after, page.HasMore)
}

type createMessageRequest struct {
	Content   string  `json:"content" validate:"required,max=4000"`
	ReplyToID *string `json:"reply_to_id"`
}

func (a *api) postChannelMessage(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionSendMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing send_messages permission"))
		return
	}

	var req createMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg := &repository.Message{
		ID:        repository.NewID(a.deps.IDs),
		ChannelID: channel.ID,
		AuthorID:  principal.UserID,
		Content:   req.Content,
	}
	if req.ReplyToID != nil {
		id, ok := parseIDString(*req.ReplyToID)
		if !ok {
			fail(c, apperr.BadRequest("invalid reply_to_id"))
			return
		}
		msg.ReplyToID = &id
	}
	if err := a.deps.Repo.CreateMessage(c.Request.Context(), msg); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if err := a.deps.Repo.SetChannelLastMessage(c.Request.Context(), channel.ID, msg.ID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.create", msg)
	data(c, http.StatusCreated, msg)
}

func (a *api) getMessage(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	msg, err := a.deps.Repo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if msg.ChannelID != channel.ID {
		fail(c, apperr.NotFound("message not found in this channel"))
		return
	}
	data(c, http.StatusOK, msg)
}

type patchMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

func (a *api) patchMessage(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	msg, err := a.deps.Repo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if msg.ChannelID != channel.ID {
		fail(c, apperr.NotFound("message not found in this channel"))
		return
	}
	if msg.AuthorID != principal.UserID && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("only the author can edit this message"))
		return
	}

	var req patchMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg.Content = req.Content
	now := time.Now().UTC()
	msg.EditedAt = &now
	if err := a.deps.Repo.UpdateMessage(c.Request.Context(), msg); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.update", msg)
	data(c, http.StatusOK, msg)
}

func (a *api) deleteMessage(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	msg, err := a.deps.Repo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	if msg.ChannelID != channel.ID {
		fail(c, apperr.NotFound("message not found in this channel"))
		return
	}
	if msg.AuthorID != principal.UserID && !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	if err := a.deps.Repo.DeleteMessage(c.Request.Context(), messageID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.delete", gin.H{"channel_id": channel.ID, "id": messageID})
	c.Status(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	MessageIDs []string `json:"message_ids" validate:"required,min=2,max=100"`
}

func (a *api) postBulkDeleteMessages(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	var req bulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	ids := make([]repository.ID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, ok := parseIDString(raw)
		if !ok {
			fail(c, apperr.BadRequest("invalid message id: %s", raw))
			return
		}
		ids = append(ids, id)
	}
	if err := a.deps.Repo.BulkDeleteMessages(c.Request.Context(), ids); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.delete_bulk", gin.H{"channel_id": channel.ID, "ids": req.MessageIDs})
	c.Status(http.StatusNoContent)
}

func (a *api) getChannelPins(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	pins, err := a.deps.Repo.ListPinnedMessages(c.Request.Context(), channel.ID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, pins)
}

func (a *api) putChannelPin(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	if err := a.deps.Repo.PinMessage(c.Request.Context(), channel.ID, messageID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.pin", gin.H{"channel_id": channel.ID, "message_id": messageID})
	c.Status(http.StatusNoContent)
}

func (a *api) deleteChannelPin(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	if err := a.deps.Repo.UnpinMessage(c.Request.Context(), channel.ID, messageID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "message.unpin", gin.H{"channel_id": channel.ID, "message_id": messageID})
	c.Status(http.StatusNoContent)
}

// postTyping fires a best-effort, unpersisted typing.start event; there
// is nothing to roll back so failures are not surfaced beyond the scope
// check.
func (a *api) postTyping(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionSendMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing send_messages permission"))
		return
	}
	a.publishChannelEvent(c, channel, "typing.start", gin.H{"channel_id": channel.ID, "user_id": principal.UserID})
	c.Status(http.StatusNoContent)
}

func (a *api) getReactions(c *gin.Context) {
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	if err := a.requireMessageInChannel(c, channel.ID, messageID); err != nil {
		fail(c, err)
		return
	}
	reactions, err := a.deps.Repo.ListReactions(c.Request.Context(), messageID)
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, reactions)
}

func (a *api) putOwnReaction(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionAddReactions) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing add_reactions permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	if err := a.requireMessageInChannel(c, channel.ID, messageID); err != nil {
		fail(c, err)
		return
	}
	reaction := &repository.Reaction{MessageID: messageID, UserID: principal.UserID, Emoji: c.Param("emoji")}
	if err := a.deps.Repo.AddReaction(c.Request.Context(), reaction); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "reaction.add", reaction)
	c.Status(http.StatusNoContent)
}

func (a *api) deleteOwnReaction(c *gin.Context) {
	principal := mustPrincipal(c)
	channel, _, ok := a.channelScope(c)
	if !ok {
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	emoji := c.Param("emoji")
	if err := a.deps.Repo.RemoveReaction(c.Request.Context(), messageID, principal.UserID, emoji); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "reaction.remove", gin.H{"message_id": messageID, "user_id": principal.UserID, "emoji": emoji})
	c.Status(http.StatusNoContent)
}

func (a *api) deleteUserReaction(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userID")
	if !ok {
		return
	}
	emoji := c.Param("emoji")
	if err := a.deps.Repo.RemoveReaction(c.Request.Context(), messageID, targetID, emoji); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "reaction.remove", gin.H{"message_id": messageID, "user_id": targetID, "emoji": emoji})
	c.Status(http.StatusNoContent)
}

func (a *api) deleteReactionsByEmoji(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	emoji := c.Param("emoji")
	if err := a.deps.Repo.RemoveReactionsByEmoji(c.Request.Context(), messageID, emoji); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "reaction.remove_emoji", gin.H{"message_id": messageID, "emoji": emoji})
	c.Status(http.StatusNoContent)
}

func (a *api) deleteAllReactions(c *gin.Context) {
	channel, perms, ok := a.channelScope(c)
	if !ok {
		return
	}
	if !perms.Has(repository.PermissionManageMessages) && !perms.Has(repository.PermissionAdministrator) {
		fail(c, apperr.Forbidden("missing manage_messages permission"))
		return
	}
	messageID, ok := paramID(c, "messageID")
	if !ok {
		return
	}
	if err := a.deps.Repo.RemoveAllReactions(c.Request.Context(), messageID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	a.publishChannelEvent(c, channel, "reaction.remove_all", gin.H{"message_id": messageID})
	c.Status(http.StatusNoContent)
}

func (a *api) requireMessageInChannel(c *gin.Context, channelID, messageID repository.ID) error {
	msg, err := a.deps.Repo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		return translateRepoErr(err)
	}
	if msg.ChannelID != channelID {
		return apperr.NotFound("message not found in this channel")
	}
	return nil
}
