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

func (r *gormRepository) CreateRole(ctx context.Context, role *Role) error {
	return translate(r.db.WithContext(ctx).Create(role).Error)
}

func (r *gormRepository) GetRole(ctx context.Context, id ID) (*Role, error) {
	var role Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *gormRepository) ListRoles(ctx context.Context, spaceID ID) ([]Role, error) {
	var roles []Role
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("position").Find(&roles).Error
	if err != nil {
		return nil, translate(err)
	}
	return roles, nil
}

func (r *gormRepository) UpdateRole(ctx context.Context, role *Role) error {
	return translate(r.db.WithContext(ctx).Save(role).Error)
}

// ReorderRoles assigns each role in orderedIDs a position equal to its
// index, leaving @everyone pinned at position 0 implicitly (callers never
// include it in orderedIDs).
func (r *gormRepository) ReorderRoles(ctx context.Context, spaceID ID, orderedIDs []ID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&Role{}).Where("id = ? AND space_id = ?", id, spaceID).Update("position", i+1)
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
	return translate(err)
}

func (r *gormRepository) DeleteRole(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Role{}, "id = ?", id).Error)
}
