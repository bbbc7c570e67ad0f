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

func (r *gormRepository) AddReaction(ctx context.Context, re *Reaction) error {
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", re.MessageID, re.UserID, re.Emoji).
		FirstOrCreate(re).Error
	return translate(err)
}

func (r *gormRepository) RemoveReaction(ctx context.Context, messageID, userID ID, emoji string) error {
	err := r.db.WithContext(ctx).
		Delete(&Reaction{}, "message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).Error
	return translate(err)
}

func (r *gormRepository) RemoveReactionsByEmoji(ctx context.Context, messageID ID, emoji string) error {
	err := r.db.WithContext(ctx).
		Delete(&Reaction{}, "message_id = ? AND emoji = ?", messageID, emoji).Error
	return translate(err)
}

func (r *gormRepository) RemoveAllReactions(ctx context.Context, messageID ID) error {
	err := r.db.WithContext(ctx).Delete(&Reaction{}, "message_id = ?", messageID).Error
	return translate(err)
}

func (r *gormRepository) ListReactions(ctx context.Context, messageID ID) ([]Reaction, error) {
	var reactions []Reaction
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Find(&reactions).Error
	if err != nil {
		return nil, translate(err)
	}
	return reactions, nil
}
