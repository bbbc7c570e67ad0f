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

package auth

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/accordchat/accordserver/internal/repository"
)

// PositionOwner is the synthetic "highest role position" reported for a
// space's owner by HighestRolePosition: owners outrank every real role.
const PositionOwner = math.MaxInt

// PermissionResolver computes effective permission sets at space and
// channel scope and enforces the role-hierarchy and
// grant-only-what-you-have rules.
type PermissionResolver struct {
	repo repository.Repository
}

// NewPermissionResolver builds a PermissionResolver backed by repo.
func NewPermissionResolver(repo repository.Repository) *PermissionResolver {
	return &PermissionResolver{repo: repo}
}

// SpacePermissions computes a user's effective permission set at space
// scope: instance admins and the space owner get the synthetic
// administrator bypass; anyone else must be a member, and receives the
// union of @everyone plus every role assigned to them.
func (p *PermissionResolver) SpacePermissions(ctx context.Context, space *repository.Space, principal Principal) (repository.Bitset, error) {
	if principal.IsAdmin {
		return repository.NewBitset(repository.PermissionAdministrator), nil
	}
	if space.OwnerID == principal.UserID {
		return repository.NewBitset(repository.PermissionAdministrator), nil
	}

	member, err := p.repo.GetMember(ctx, space.ID, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.Forbidden("not a member of this space")
		}
		return 0, fmt.Errorf("auth: load member: %w", err)
	}

	everyone, err := p.everyoneRole(ctx, space.ID)
	if err != nil {
		return 0, err
	}

	perms := everyone.Permissions
	for _, role := range member.Roles {
		perms = perms.Union(role.Permissions)
	}
	return perms, nil
}

// ChannelPermissions computes a user's effective permission set at
// channel scope: space-wide administrator bypasses overwrites entirely;
// otherwise @everyone's overwrite applies first, then the union of the
// user's other assigned roles' overwrites (allow wins over deny across
// roles), then the member-specific overwrite last (highest precedence).
func (p *PermissionResolver) ChannelPermissions(ctx context.Context, channel *repository.Channel, principal Principal) (repository.Bitset, error) {
	if channel.SpaceID == nil {
		// DM/group-DM channels have no space-scoped permission model;
		// participation itself is the only gate, enforced by the caller.
		return repository.NewBitset(repository.AllPermissions...), nil
	}

	space, err := p.repo.GetSpace(ctx, *channel.SpaceID)
	if err != nil {
		return 0, fmt.Errorf("auth: load space: %w", err)
	}

	spacePerms, err := p.SpacePermissions(ctx, space, principal)
	if err != nil {
		return 0, err
	}
	if spacePerms.Has(repository.PermissionAdministrator) {
		return spacePerms, nil
	}

	overwrites, err := p.repo.ListChannelOverwrites(ctx, channel.ID)
	if err != nil {
		return 0, fmt.Errorf("auth: load overwrites: %w", err)
	}

	member, err := p.repo.GetMember(ctx, space.ID, principal.UserID)
	if err != nil {
		return 0, fmt.Errorf("auth: load member: %w", err)
	}

	everyone, err := p.everyoneRole(ctx, space.ID)
	if err != nil {
		return 0, err
	}

	perms := spacePerms
	if ow, ok := findOverwrite(overwrites, repository.OverwriteTargetRole, everyone.ID); ok {
		perms = perms.Subtract(ow.Deny).Union(ow.Allow)
	}

	var roleAllow, roleDeny repository.Bitset
	for _, role := range member.Roles {
		if role.ID == everyone.ID {
			continue
		}
		if ow, ok := findOverwrite(overwrites, repository.OverwriteTargetRole, role.ID); ok {
			roleAllow = roleAllow.Union(ow.Allow)
			roleDeny = roleDeny.Union(ow.Deny)
		}
	}
	roleDeny = roleDeny.Subtract(roleAllow)
	perms = perms.Subtract(roleDeny).Union(roleAllow)

	if ow, ok := findOverwrite(overwrites, repository.OverwriteTargetMember, principal.UserID); ok {
		perms = perms.Subtract(ow.Deny).Union(ow.Allow)
	}

	return perms, nil
}

func findOverwrite(overwrites []repository.PermissionOverwrite, kind repository.OverwriteTargetKind, targetID repository.ID) (repository.PermissionOverwrite, bool) {
	for _, o := range overwrites {
		if o.Kind == kind && o.TargetID == targetID {
			return o, true
		}
	}
	return repository.PermissionOverwrite{}, false
}

func (p *PermissionResolver) everyoneRole(ctx context.Context, spaceID repository.ID) (*repository.Role, error) {
	roles, err := p.repo.ListRoles(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("auth: load roles: %w", err)
	}
	for i := range roles {
		if roles[i].Position == 0 {
			return &roles[i], nil
		}
	}
	return nil, apperr.Internal(fmt.Errorf("auth: space %s has no @everyone role", spaceID))
}

// HighestRolePosition returns the space owner's synthetic PositionOwner,
// or the max position among the member's assigned roles (0 if they have
// none assigned beyond the implicit @everyone).
func (p *PermissionResolver) HighestRolePosition(ctx context.Context, space *repository.Space, userID repository.ID) (int, error) {
	if space.OwnerID == userID {
		return PositionOwner, nil
	}
	member, err := p.repo.GetMember(ctx, space.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.Forbidden("not a member of this space")
		}
		return 0, fmt.Errorf("auth: load member: %w", err)
	}
	highest := 0
	for _, role := range member.Roles {
		if role.Position > highest {
			highest = role.Position
		}
	}
	return highest, nil
}

// RequireHierarchy enforces actorPos > targetPos, strictly; it's the
// check every moderation action (kick, ban, role assignment) against
// another member must pass.
func RequireHierarchy(actorPos, targetPos int) error {
	if actorPos <= targetPos {
		return apperr.Forbidden("insufficient role hierarchy")
	}
	return nil
}

// RequireRoleHierarchy enforces actorPos > rolePos, strictly; used when
// the target is a role position rather than another member (role
// create/update/delete, assigning a role to a member).
func RequireRoleHierarchy(actorPos, rolePos int) error {
	if actorPos <= rolePos {
		return apperr.Forbidden("insufficient role hierarchy")
	}
	return nil
}

// RequireGrantOnlyWhatYouHave enforces that every permission in requested
// is already present in actorPerms, unless the actor is an administrator.
// It also rejects any permission string that isn't recognized.
func RequireGrantOnlyWhatYouHave(actorPerms repository.Bitset, requested []repository.Permission) error {
	isAdmin := actorPerms.Has(repository.PermissionAdministrator)
	for _, perm := range requested {
		if !repository.IsKnownPermission(string(perm)) {
			return apperr.BadRequest("unknown permission: %s", perm)
		}
		if isAdmin {
			continue
		}
		if !actorPerms.Has(perm) {
			return apperr.Forbidden("cannot grant permission you do not hold: %s", perm)
		}
	}
	return nil
}
