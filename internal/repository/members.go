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

	"gorm.io/gorm"
)

func (r *gormRepository) AddMember(ctx context.Context, m *Member) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *gormRepository) GetMember(ctx context.Context, spaceID, userID ID) (*Member, error) {
	var m Member
	err := r.db.WithContext(ctx).Preload("Roles").
		First(&m, "space_id = ? AND user_id = ?", spaceID, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *gormRepository) ListMembers(ctx context.Context, spaceID ID, search string, cursor Cursor) (Page[Member], error) {
	q := r.db.WithContext(ctx).Preload("Roles").
		Where("members.space_id = ?", spaceID).Order("members.user_id")
	if search != "" {
		q = q.Joins("JOIN users ON users.id = members.user_id").
			Where("members.nickname LIKE ? OR users.username LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if cursor.After != 0 {
		q = q.Where("members.user_id > ?", cursor.After)
	}
	limit := cursor.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	var members []Member
	if err := q.Limit(limit + 1).Find(&members).Error; err != nil {
		return Page[Member]{}, translate(err)
	}
	hasMore := len(members) > limit
	if hasMore {
		members = members[:limit]
	}
	return Page[Member]{Items: members, HasMore: hasMore}, nil
}

func (r *gormRepository) UpdateMemberNickname(ctx context.Context, spaceID, userID ID, nickname string) error {
	err := r.db.WithContext(ctx).Model(&Member{}).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Update("nickname", nickname).Error
	return translate(err)
}

func (r *gormRepository) SetMemberRoles(ctx context.Context, spaceID, userID ID, roleIDs []ID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Member
		if err := tx.First(&m, "space_id = ? AND user_id = ?", spaceID, userID).Error; err != nil {
			return err
		}
		roles := make([]Role, 0, len(roleIDs))
		for _, id := range roleIDs {
			roles = append(roles, Role{ID: id})
		}
		return tx.Model(&m).Association("Roles").Replace(roles)
	})
	return translate(err)
}

func (r *gormRepository) RemoveMember(ctx context.Context, spaceID, userID ID) error {
	err := r.db.WithContext(ctx).Delete(&Member{}, "space_id = ? AND user_id = ?", spaceID, userID).Error
	return translate(err)
}
