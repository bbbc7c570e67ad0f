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

func (r *gormRepository) CreateInvite(ctx context.Context, i *Invite) error {
	return translate(r.db.WithContext(ctx).Create(i).Error)
}

func (r *gormRepository) GetInvite(ctx context.Context, code string) (*Invite, error) {
	var i Invite
	if err := r.db.WithContext(ctx).First(&i, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *gormRepository) ListSpaceInvites(ctx context.Context, spaceID ID) ([]Invite, error) {
	var invites []Invite
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("created_at DESC").Find(&invites).Error
	if err != nil {
		return nil, translate(err)
	}
	return invites, nil
}

func (r *gormRepository) IncrementInviteUse(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).Model(&Invite{}).
		Where("code = ?", code).
		UpdateColumn("uses", gorm.Expr("uses + 1")).Error
	return translate(err)
}

func (r *gormRepository) DeleteInvite(ctx context.Context, code string) error {
	return translate(r.db.WithContext(ctx).Delete(&Invite{}, "code = ?", code).Error)
}
