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

func (r *gormRepository) CreateMessage(ctx context.Context, m *Message) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *gormRepository) GetMessage(ctx context.Context, id ID) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// ListChannelMessages returns messages newest-first; cursor.After, when
// set, is the id of the oldest message already seen by the caller.
func (r *gormRepository) ListChannelMessages(ctx context.Context, channelID ID, cursor Cursor) (Page[Message], error) {
	q := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Order("id DESC")
	if cursor.After != 0 {
		q = q.Where("id < ?", cursor.After)
	}
	limit := cursor.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	var messages []Message
	if err := q.Limit(limit + 1).Find(&messages).Error; err != nil {
		return Page[Message]{}, translate(err)
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	return Page[Message]{Items: messages, HasMore: hasMore}, nil
}

func (r *gormRepository) UpdateMessage(ctx context.Context, m *Message) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *gormRepository) DeleteMessage(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Message{}, "id = ?", id).Error)
}

func (r *gormRepository) BulkDeleteMessages(ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Delete(&Message{}, "id IN ?", ids).Error)
}

func (r *gormRepository) PinMessage(ctx context.Context, channelID, messageID ID) error {
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ? AND channel_id = ?", messageID, channelID).
		Update("pinned", true).Error
	return translate(err)
}

func (r *gormRepository) UnpinMessage(ctx context.Context, channelID, messageID ID) error {
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("id = ? AND channel_id = ?", messageID, channelID).
		Update("pinned", false).Error
	return translate(err)
}

func (r *gormRepository) ListPinnedMessages(ctx context.Context, channelID ID) ([]Message, error) {
	var messages []Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND pinned = ?", channelID, true).
		Order("id DESC").Find(&messages).Error
	if err != nil {
		return nil, translate(err)
	}
	return messages, nil
}
