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

package auth_test

import (
	"context"
	"testing"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpacePermissions_OwnerGetsAdministrator(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner", false)
	space, _ := f.createSpace(t, owner)

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.SpacePermissions(context.Background(), space, auth.Principal{UserID: owner.ID})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionAdministrator))
}

func TestSpacePermissions_InstanceAdminBypassesMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner2", false)
	space, _ := f.createSpace(t, owner)
	stranger := f.createUser(t, "instanceadmin", true)

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.SpacePermissions(context.Background(), space, auth.Principal{UserID: stranger.ID, IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionAdministrator))
}

func TestSpacePermissions_NonMemberIsForbidden(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner3", false)
	space, _ := f.createSpace(t, owner)
	stranger := f.createUser(t, "stranger", false)

	resolver := auth.NewPermissionResolver(f.repo)
	_, err := resolver.SpacePermissions(context.Background(), space, auth.Principal{UserID: stranger.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.As(err).Code)
}

func TestSpacePermissions_MemberGetsEveryonePlusAssignedRoles(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner4", false)
	space, roles := f.createSpace(t, owner)
	member := f.createUser(t, "member1", false)
	f.joinSpace(t, space.ID, member.ID)

	var moderator repository.Role
	for _, r := range roles {
		if r.Name == "Moderator" {
			moderator = r
		}
	}
	require.NoError(t, f.repo.SetMemberRoles(context.Background(), space.ID, member.ID, []repository.ID{moderator.ID}))

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.SpacePermissions(context.Background(), space, auth.Principal{UserID: member.ID})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionViewChannel), "inherited from @everyone")
	assert.True(t, perms.Has(repository.PermissionKickMembers), "inherited from Moderator")
	assert.False(t, perms.Has(repository.PermissionAdministrator))
}

func TestChannelPermissions_MemberOverwriteWinsOverRoleOverwrite(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner5", false)
	space, roles := f.createSpace(t, owner)
	member := f.createUser(t, "member2", false)
	f.joinSpace(t, space.ID, member.ID)

	var everyone repository.Role
	for _, r := range roles {
		if r.Position == 0 {
			everyone = r
		}
	}

	channel := &repository.Channel{ID: f.newID(), Type: repository.ChannelTypeText, SpaceID: &space.ID, Name: "general2"}
	require.NoError(t, f.repo.CreateChannel(context.Background(), channel))

	// @everyone is denied send_messages at channel scope...
	require.NoError(t, f.repo.PutChannelOverwrite(context.Background(), &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  everyone.ID,
		Kind:      repository.OverwriteTargetRole,
		Deny:      repository.NewBitset(repository.PermissionSendMessages),
	}))
	// ...but the member has a personal overwrite allowing it back.
	require.NoError(t, f.repo.PutChannelOverwrite(context.Background(), &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  member.ID,
		Kind:      repository.OverwriteTargetMember,
		Allow:     repository.NewBitset(repository.PermissionSendMessages),
	}))

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.ChannelPermissions(context.Background(), channel, auth.Principal{UserID: member.ID})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionSendMessages))
}

func TestChannelPermissions_RoleAllowWinsOverOtherRoleDeny(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner6", false)
	space, roles := f.createSpace(t, owner)
	member := f.createUser(t, "member3", false)
	f.joinSpace(t, space.ID, member.ID)

	var moderator repository.Role
	for _, r := range roles {
		if r.Name == "Moderator" {
			moderator = r
		}
	}
	extraRole := repository.Role{ID: f.newID(), SpaceID: space.ID, Name: "muted", Position: 3}
	require.NoError(t, f.repo.CreateRole(context.Background(), &extraRole))
	require.NoError(t, f.repo.SetMemberRoles(context.Background(), space.ID, member.ID, []repository.ID{moderator.ID, extraRole.ID}))

	channel := &repository.Channel{ID: f.newID(), Type: repository.ChannelTypeText, SpaceID: &space.ID, Name: "general3"}
	require.NoError(t, f.repo.CreateChannel(context.Background(), channel))

	require.NoError(t, f.repo.PutChannelOverwrite(context.Background(), &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  extraRole.ID,
		Kind:      repository.OverwriteTargetRole,
		Deny:      repository.NewBitset(repository.PermissionSendMessages),
	}))
	require.NoError(t, f.repo.PutChannelOverwrite(context.Background(), &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  moderator.ID,
		Kind:      repository.OverwriteTargetRole,
		Allow:     repository.NewBitset(repository.PermissionSendMessages),
	}))

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.ChannelPermissions(context.Background(), channel, auth.Principal{UserID: member.ID})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionSendMessages), "allow from one assigned role beats deny from another")
}

func TestChannelPermissions_SpaceAdministratorBypassesOverwrites(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner7", false)
	space, roles := f.createSpace(t, owner)

	var everyone repository.Role
	for _, r := range roles {
		if r.Position == 0 {
			everyone = r
		}
	}

	channel := &repository.Channel{ID: f.newID(), Type: repository.ChannelTypeText, SpaceID: &space.ID, Name: "general4"}
	require.NoError(t, f.repo.CreateChannel(context.Background(), channel))
	require.NoError(t, f.repo.PutChannelOverwrite(context.Background(), &repository.PermissionOverwrite{
		ChannelID: channel.ID,
		TargetID:  everyone.ID,
		Kind:      repository.OverwriteTargetRole,
		Deny:      repository.NewBitset(repository.PermissionViewChannel),
	}))

	resolver := auth.NewPermissionResolver(f.repo)
	perms, err := resolver.ChannelPermissions(context.Background(), channel, auth.Principal{UserID: owner.ID})
	require.NoError(t, err)
	assert.True(t, perms.Has(repository.PermissionViewChannel))
}

func TestHighestRolePosition_OwnerIsUnbounded(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner8", false)
	space, _ := f.createSpace(t, owner)

	resolver := auth.NewPermissionResolver(f.repo)
	pos, err := resolver.HighestRolePosition(context.Background(), space, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.PositionOwner, pos)
}

func TestRequireHierarchy(t *testing.T) {
	assert.NoError(t, auth.RequireHierarchy(5, 2))
	assert.Error(t, auth.RequireHierarchy(2, 2))
	assert.Error(t, auth.RequireHierarchy(1, 2))
}

func TestRequireGrantOnlyWhatYouHave_RejectsUngrantedPermission(t *testing.T) {
	actor := repository.NewBitset(repository.PermissionViewChannel)
	err := auth.RequireGrantOnlyWhatYouHave(actor, []repository.Permission{repository.PermissionBanMembers})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.As(err).Code)
}

func TestRequireGrantOnlyWhatYouHave_AdministratorGrantsAnything(t *testing.T) {
	actor := repository.NewBitset(repository.PermissionAdministrator)
	err := auth.RequireGrantOnlyWhatYouHave(actor, []repository.Permission{repository.PermissionBanMembers, repository.PermissionManageRoles})
	assert.NoError(t, err)
}

func TestRequireGrantOnlyWhatYouHave_RejectsUnknownPermission(t *testing.T) {
	actor := repository.NewBitset(repository.PermissionAdministrator)
	err := auth.RequireGrantOnlyWhatYouHave(actor, []repository.Permission{"not_a_real_permission"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidRequest, apperr.As(err).Code)
}
