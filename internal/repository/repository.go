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

package repository

import "context"

// Cursor paginates list calls by snowflake id.
type Cursor struct {
	After   ID
	Limit   int
}

// Page is a cursor-paginated result set.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// Repository is the narrow persistence boundary the core subsystems
// depend on. Every method takes a context so the GORM implementation can
// carry OpenTelemetry spans and cancellation through to the driver; every
// method returns a plain Go error, translated to *apperr.Error at the
// caller (HTTP handler or gateway dispatch) boundary.
type Repository interface {
	// users.*
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id ID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id ID) error
	ListUserSpaces(ctx context.Context, userID ID) ([]Space, error)
	ListUserChannels(ctx context.Context, userID ID) ([]Channel, error)

	// applications.*
	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id ID) (*Application, error)
	ListApplicationsOwnedBy(ctx context.Context, ownerID ID) ([]Application, error)
	DeleteApplication(ctx context.Context, id ID) error

	// user_tokens.* / bot_tokens.*
	CreateToken(ctx context.Context, t *Token) error
	GetTokenByHash(ctx context.Context, hash string) (*Token, error)
	DeleteTokenByHash(ctx context.Context, hash string) error
	DeleteTokensForUser(ctx context.Context, userID ID) error

	// spaces.*
	CreateSpaceBootstrapped(ctx context.Context, space *Space, ownerID ID) error
	GetSpace(ctx context.Context, id ID) (*Space, error)
	GetSpaceBySlug(ctx context.Context, slug string) (*Space, error)
	ListPublicSpaces(ctx context.Context, cursor Cursor) (Page[Space], error)
	UpdateSpace(ctx context.Context, space *Space) error
	DeleteSpace(ctx context.Context, id ID) error
	ReserveSlug(ctx context.Context, base string, excludeID ID) (string, error)

	// members.*
	AddMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, spaceID, userID ID) (*Member, error)
	ListMembers(ctx context.Context, spaceID ID, search string, cursor Cursor) (Page[Member], error)
	UpdateMemberNickname(ctx context.Context, spaceID, userID ID, nickname string) error
	SetMemberRoles(ctx context.Context, spaceID, userID ID, roleIDs []ID) error
	RemoveMember(ctx context.Context, spaceID, userID ID) error

	// roles.*
	CreateRole(ctx context.Context, r *Role) error
	GetRole(ctx context.Context, id ID) (*Role, error)
	ListRoles(ctx context.Context, spaceID ID) ([]Role, error)
	UpdateRole(ctx context.Context, r *Role) error
	ReorderRoles(ctx context.Context, spaceID ID, orderedIDs []ID) error
	DeleteRole(ctx context.Context, id ID) error

	// channels.*
	CreateChannel(ctx context.Context, c *Channel) error
	GetChannel(ctx context.Context, id ID) (*Channel, error)
	ListSpaceChannels(ctx context.Context, spaceID ID) ([]Channel, error)
	UpdateChannel(ctx context.Context, c *Channel) error
	DeleteChannel(ctx context.Context, id ID) error
	SetChannelLastMessage(ctx context.Context, channelID, messageID ID) error
	GetOrCreateDMChannel(ctx context.Context, participants []ID) (*Channel, error)

	// permission_overwrites.*
	ListChannelOverwrites(ctx context.Context, channelID ID) ([]PermissionOverwrite, error)
	PutChannelOverwrite(ctx context.Context, o *PermissionOverwrite) error
	DeleteChannelOverwrite(ctx context.Context, channelID, targetID ID) error

	// messages.*
	CreateMessage(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, id ID) (*Message, error)
	ListChannelMessages(ctx context.Context, channelID ID, cursor Cursor) (Page[Message], error)
	UpdateMessage(ctx context.Context, m *Message) error
	DeleteMessage(ctx context.Context, id ID) error
	BulkDeleteMessages(ctx context.Context, ids []ID) error

	// pinned_messages.*
	PinMessage(ctx context.Context, channelID, messageID ID) error
	UnpinMessage(ctx context.Context, channelID, messageID ID) error
	ListPinnedMessages(ctx context.Context, channelID ID) ([]Message, error)

	// reactions.*
	AddReaction(ctx context.Context, r *Reaction) error
	RemoveReaction(ctx context.Context, messageID, userID ID, emoji string) error
	RemoveReactionsByEmoji(ctx context.Context, messageID ID, emoji string) error
	RemoveAllReactions(ctx context.Context, messageID ID) error
	ListReactions(ctx context.Context, messageID ID) ([]Reaction, error)

	// invites.*
	CreateInvite(ctx context.Context, i *Invite) error
	GetInvite(ctx context.Context, code string) (*Invite, error)
	ListSpaceInvites(ctx context.Context, spaceID ID) ([]Invite, error)
	IncrementInviteUse(ctx context.Context, code string) error
	DeleteInvite(ctx context.Context, code string) error

	// bans.*
	CreateBan(ctx context.Context, b *Ban) error
	GetBan(ctx context.Context, spaceID, userID ID) (*Ban, error)
	ListBans(ctx context.Context, spaceID ID) ([]Ban, error)
	DeleteBan(ctx context.Context, spaceID, userID ID) error

	// emojis.*
	CreateEmoji(ctx context.Context, e *Emoji) error
	ListSpaceEmojis(ctx context.Context, spaceID ID) ([]Emoji, error)
	DeleteEmoji(ctx context.Context, id ID) error

	// soundboard.*
	CreateSoundboardSound(ctx context.Context, s *SoundboardSound) error
	ListSpaceSoundboardSounds(ctx context.Context, spaceID ID) ([]SoundboardSound, error)
	DeleteSoundboardSound(ctx context.Context, id ID) error

	// sfu_nodes.*
	UpsertSfuNode(ctx context.Context, n *SfuNode) error
	ListSfuNodes(ctx context.Context) ([]SfuNode, error)
	DeleteSfuNode(ctx context.Context, id string) error

	// server_settings.*
	GetServerSettings(ctx context.Context) (*ServerSettings, error)
	SaveServerSettings(ctx context.Context, s *ServerSettings) error
}
