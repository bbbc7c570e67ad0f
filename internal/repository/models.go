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

// Package repository is the persistence boundary: GORM models for every
// entity in the data model plus the Repository interface the core
// subsystems depend on. Nothing outside this package imports gorm
// directly.
package repository

import (
	"time"

	"gorm.io/gorm"
)

// ChannelType enumerates the kinds of Channel.
type ChannelType string

const (
	ChannelTypeText     ChannelType = "text"
	ChannelTypeVoice    ChannelType = "voice"
	ChannelTypeDM       ChannelType = "dm"
	ChannelTypeGroupDM  ChannelType = "group_dm"
)

// OverwriteTargetKind distinguishes a PermissionOverwrite's target.
type OverwriteTargetKind string

const (
	OverwriteTargetRole   OverwriteTargetKind = "role"
	OverwriteTargetMember OverwriteTargetKind = "member"
)

// TokenKind distinguishes a Token's principal kind.
type TokenKind string

const (
	TokenKindUser TokenKind = "user"
	TokenKindBot  TokenKind = "bot"
)

// SfuNodeStatus is the lifecycle status of an SfuNode.
type SfuNodeStatus string

const (
	SfuNodeStatusOnline  SfuNodeStatus = "online"
	SfuNodeStatusOffline SfuNodeStatus = "offline"
)

// User is an Accord account. Exactly one bot user exists per Application.
type User struct {
	ID          ID     `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"uniqueIndex:idx_users_username_nonbot,where:is_bot = false"`
	DisplayName string `json:"display_name"`
	PasswordHash string `json:"-"`
	IsBot       bool   `json:"is_bot"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string { return "users" }

// Application registers a bot: an owning user and the bot's own User row.
type Application struct {
	ID          ID        `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	OwnerUserID ID        `json:"owner_user_id" gorm:"index"`
	BotUserID   ID        `json:"bot_user_id" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Application) TableName() string { return "applications" }

// Token stores only the SHA-256 hash of a bearer/bot credential; the raw
// token is returned once at creation time and never persisted.
type Token struct {
	TokenHash string     `json:"-" gorm:"primaryKey"`
	Kind      TokenKind  `json:"kind"`
	UserID    ID         `json:"user_id" gorm:"index"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Token) TableName() string { return "tokens" }

// Space is a top-level container of channels, members, and roles.
type Space struct {
	ID        ID        `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	OwnerID   ID        `json:"owner_id" gorm:"index"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

func (Space) TableName() string { return "spaces" }

// Role is a space-scoped permission bundle. Position 0 is always @everyone.
type Role struct {
	ID         ID        `json:"id" gorm:"primaryKey"`
	SpaceID    ID        `json:"space_id" gorm:"index:idx_roles_space_position,priority:1"`
	Name       string    `json:"name"`
	Position   int       `json:"position" gorm:"index:idx_roles_space_position,priority:2"`
	Permissions Bitset   `json:"permissions" gorm:"type:bigint"`
	Managed    bool      `json:"managed"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Role) TableName() string { return "roles" }

// Member is a User's presence inside a Space.
type Member struct {
	SpaceID   ID        `json:"space_id" gorm:"primaryKey"`
	UserID    ID        `json:"user_id" gorm:"primaryKey"`
	Nickname  string    `json:"nickname"`
	SelfMute  bool      `json:"self_mute"`
	SelfDeaf  bool      `json:"self_deaf"`
	JoinedAt  time.Time `json:"joined_at"`
	Roles     []Role    `json:"roles" gorm:"many2many:member_roles;"`
}

func (Member) TableName() string { return "members" }

// Channel is a conversation locus: space-scoped (text/voice) or a DM
// without a space, tracked instead through DMParticipant rows.
type Channel struct {
	ID            ID          `json:"id" gorm:"primaryKey"`
	Type          ChannelType `json:"type"`
	SpaceID       *ID         `json:"space_id,omitempty" gorm:"index"`
	Name          string      `json:"name"`
	Position      int         `json:"position"`
	ParentID      *ID         `json:"parent_id,omitempty"`
	LastMessageID *ID         `json:"last_message_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (Channel) TableName() string { return "channels" }

// DMParticipant is a first-class membership row for DM/group-DM channels.
type DMParticipant struct {
	ChannelID ID `json:"channel_id" gorm:"primaryKey"`
	UserID    ID `json:"user_id" gorm:"primaryKey"`
}

func (DMParticipant) TableName() string { return "dm_participants" }

// PermissionOverwrite is a channel-scoped allow/deny delta.
type PermissionOverwrite struct {
	ChannelID ID                  `json:"channel_id" gorm:"primaryKey"`
	TargetID  ID                  `json:"target_id" gorm:"primaryKey"`
	Kind      OverwriteTargetKind `json:"kind"`
	Allow     Bitset              `json:"allow" gorm:"type:bigint"`
	Deny      Bitset              `json:"deny" gorm:"type:bigint"`
}

func (PermissionOverwrite) TableName() string { return "permission_overwrites" }

// Message is a single chat message in a Channel.
type Message struct {
	ID          ID         `json:"id" gorm:"primaryKey"`
	ChannelID   ID         `json:"channel_id" gorm:"index"`
	AuthorID    ID         `json:"author_id"`
	Content     string     `json:"content"`
	ReplyToID   *ID        `json:"reply_to_id,omitempty"`
	ThreadID    *ID        `json:"thread_id,omitempty"`
	Pinned      bool       `json:"pinned"`
	Attachments JSONColumn `json:"attachments,omitempty" gorm:"type:jsonb"`
	Embeds      JSONColumn `json:"embeds,omitempty" gorm:"type:jsonb"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
}

func (Message) TableName() string { return "messages" }

// Reaction is a single user's emoji reaction to a Message.
type Reaction struct {
	MessageID ID     `json:"message_id" gorm:"primaryKey"`
	UserID    ID     `json:"user_id" gorm:"primaryKey"`
	Emoji     string `json:"emoji" gorm:"primaryKey"`
}

func (Reaction) TableName() string { return "reactions" }

// Invite is a redeemable code granting Space membership.
type Invite struct {
	Code      string    `json:"code" gorm:"primaryKey"`
	SpaceID   ID        `json:"space_id" gorm:"index"`
	ChannelID *ID       `json:"channel_id,omitempty"`
	MaxUses   int       `json:"max_uses"`
	MaxAge    int       `json:"max_age"`
	Uses      int       `json:"uses"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy ID        `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (Invite) TableName() string { return "invites" }

// Ban records a Space-level exclusion; creating one removes any matching Member.
type Ban struct {
	SpaceID  ID        `json:"space_id" gorm:"primaryKey"`
	UserID   ID        `json:"user_id" gorm:"primaryKey"`
	Reason   string    `json:"reason"`
	BannedBy ID        `json:"banned_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (Ban) TableName() string { return "bans" }

// Emoji is a space-scoped custom emoji.
type Emoji struct {
	ID        ID        `json:"id" gorm:"primaryKey"`
	SpaceID   ID        `json:"space_id" gorm:"index"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedBy ID        `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (Emoji) TableName() string { return "emojis" }

// SoundboardSound is a space-scoped short audio clip playable in voice channels.
type SoundboardSound struct {
	ID        ID        `json:"id" gorm:"primaryKey"`
	SpaceID   ID        `json:"space_id" gorm:"index"`
	Name      string    `json:"name"`
	SoundURL  string    `json:"sound_url"`
	CreatedBy ID        `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (SoundboardSound) TableName() string { return "soundboard_sounds" }

// SfuNode is the persisted shadow of the in-memory NodeDirectory entry so a
// restart can restore the directory before new heartbeats arrive.
type SfuNode struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	Endpoint      string        `json:"endpoint"`
	Region        string        `json:"region"`
	Capacity      int           `json:"capacity"`
	CurrentLoad   int           `json:"current_load"`
	Status        SfuNodeStatus `json:"status"`
	LastHeartbeat time.Time     `json:"last_heartbeat"`
}

func (SfuNode) TableName() string { return "sfu_nodes" }

// ServerSettings is a single-row table of instance-wide settings.
type ServerSettings struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	HasSeeded bool   `json:"-"`
	Name      string `json:"name"`
}

func (ServerSettings) TableName() string { return "server_settings" }
