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

func (r *gormRepository) ListChannelOverwrites(ctx context.Context, channelID ID) ([]PermissionOverwrite, error) {
	var overwrites []PermissionOverwrite
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Find(&overwrites).Error
	if err != nil {
		return nil, translate(err)
	}
	return overwrites, nil
}

func (r *gormRepository) PutChannelOverwrite(ctx context.Context, o *PermissionOverwrite) error {
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND target_id = ?", o.ChannelID, o.TargetID).
		Assign(PermissionOverwrite{Kind: o.Kind, Allow: o.Allow, Deny: o.Deny}).
		FirstOrCreate(o).Error
	return translate(err)
}

func (r *gormRepository) DeleteChannelOverwrite(ctx context.Context, channelID, targetID ID) error {
	err := r.db.WithContext(ctx).
		Delete(&PermissionOverwrite{}, "channel_id = ? AND target_id = ?", channelID, targetID).Error
	return translate(err)
}
