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

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	everyoneRolePosition  = 0
	moderatorRolePosition = 1
	adminRolePosition     = 2
	generalChannelName    = "general"
)

// CreateSpaceBootstrapped persists space and, in the same transaction,
// creates its @everyone/Moderator/Admin roles, a #general text channel, a
// membership row for ownerID, and assigns it the Admin role.
func (r *gormRepository) CreateSpaceBootstrapped(ctx context.Context, space *Space, ownerID ID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(space).Error; err != nil {
			return err
		}

		everyone := Role{
			ID:          space.ID,
			SpaceID:     space.ID,
			Name:        "@everyone",
			Position:    everyoneRolePosition,
			Permissions: DefaultEveryonePermissions(),
			Managed:     true,
		}
		// @everyone shares its ID with the space so lookups never need a
		// second allocator round-trip; the other roles and #general are
		// created without an id and get the one the database assigns.
		if err := tx.Create(&everyone).Error; err != nil {
			return err
		}

		moderator := Role{
			SpaceID:     space.ID,
			Name:        "Moderator",
			Position:    moderatorRolePosition,
			Permissions: DefaultModeratorPermissions(),
		}
		if err := tx.Create(&moderator).Error; err != nil {
			return err
		}

		admin := Role{
			SpaceID:     space.ID,
			Name:        "Admin",
			Position:    adminRolePosition,
			Permissions: DefaultAdminPermissions(),
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		general := Channel{
			Type:      ChannelTypeText,
			SpaceID:   &space.ID,
			Name:      generalChannelName,
			Position:  0,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&general).Error; err != nil {
			return err
		}

		member := Member{
			SpaceID:  space.ID,
			UserID:   ownerID,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&member).Association("Roles").Append(&admin)
	})
	return translate(err)
}

func (r *gormRepository) GetSpace(ctx context.Context, id ID) (*Space, error) {
	var s Space
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepository) GetSpaceBySlug(ctx context.Context, slug string) (*Space, error) {
	var s Space
	if err := r.db.WithContext(ctx).First(&s, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepository) ListPublicSpaces(ctx context.Context, cursor Cursor) (Page[Space], error) {
	q := r.db.WithContext(ctx).Model(&Space{}).Where("public = ?", true).Order("id")
	if cursor.After != 0 {
		q = q.Where("id > ?", cursor.After)
	}
	limit := cursor.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	var spaces []Space
	if err := q.Limit(limit + 1).Find(&spaces).Error; err != nil {
		return Page[Space]{}, translate(err)
	}
	hasMore := len(spaces) > limit
	if hasMore {
		spaces = spaces[:limit]
	}
	return Page[Space]{Items: spaces, HasMore: hasMore}, nil
}

func (r *gormRepository) UpdateSpace(ctx context.Context, space *Space) error {
	return translate(r.db.WithContext(ctx).Save(space).Error)
}

func (r *gormRepository) DeleteSpace(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Space{}, "id = ?", id).Error)
}
