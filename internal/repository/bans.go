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

// CreateBan records the ban and removes any existing membership row for
// the banned user in the same transaction.
func (r *gormRepository) CreateBan(ctx context.Context, b *Ban) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return tx.Delete(&Member{}, "space_id = ? AND user_id = ?", b.SpaceID, b.UserID).Error
	})
	return translate(err)
}

func (r *gormRepository) GetBan(ctx context.Context, spaceID, userID ID) (*Ban, error) {
	var b Ban
	if err := r.db.WithContext(ctx).First(&b, "space_id = ? AND user_id = ?", spaceID, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *gormRepository) ListBans(ctx context.Context, spaceID ID) ([]Ban, error) {
	var bans []Ban
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("created_at DESC").Find(&bans).Error
	if err != nil {
		return nil, translate(err)
	}
	return bans, nil
}

func (r *gormRepository) DeleteBan(ctx context.Context, spaceID, userID ID) error {
	err := r.db.WithContext(ctx).Delete(&Ban{}, "space_id = ? AND user_id = ?", spaceID, userID).Error
	return translate(err)
}
