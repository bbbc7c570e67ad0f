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

func (r *gormRepository) CreateChannel(ctx context.Context, c *Channel) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormRepository) GetChannel(ctx context.Context, id ID) (*Channel, error) {
	var c Channel
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRepository) ListSpaceChannels(ctx context.Context, spaceID ID) ([]Channel, error) {
	var channels []Channel
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("position, id").Find(&channels).Error
	if err != nil {
		return nil, translate(err)
	}
	return channels, nil
}

func (r *gormRepository) UpdateChannel(ctx context.Context, c *Channel) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *gormRepository) DeleteChannel(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Channel{}, "id = ?", id).Error)
}

func (r *gormRepository) SetChannelLastMessage(ctx context.Context, channelID, messageID ID) error {
	err := r.db.WithContext(ctx).Model(&Channel{}).
		Where("id = ?", channelID).Update("last_message_id", messageID).Error
	return translate(err)
}

// GetOrCreateDMChannel returns the existing DM/group-DM channel whose
// participant set exactly matches participants, creating one if none
// exists. A 2-participant set is a DM; anything larger is a group DM.
func (r *gormRepository) GetOrCreateDMChannel(ctx context.Context, participants []ID) (*Channel, error) {
	channelType := ChannelTypeDM
	if len(participants) > 2 {
		channelType = ChannelTypeGroupDM
	}

	var existing *Channel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidateIDs []ID
		err := tx.Model(&DMParticipant{}).
			Select("channel_id").
			Where("user_id = ?", participants[0]).
			Find(&candidateIDs).Error
		if err != nil {
			return err
		}

		for _, cid := range candidateIDs {
			var count int64
			if err := tx.Model(&DMParticipant{}).Where("channel_id = ?", cid).Count(&count).Error; err != nil {
				return err
			}
			if int(count) != len(participants) {
				continue
			}
			var matched int64
			if err := tx.Model(&DMParticipant{}).
				Where("channel_id = ? AND user_id IN ?", cid, participants).
				Count(&matched).Error; err != nil {
				return err
			}
			if int(matched) == len(participants) {
				var c Channel
				if err := tx.First(&c, "id = ?", cid).Error; err != nil {
					return err
				}
				existing = &c
				return nil
			}
		}

		c := Channel{Type: channelType, Name: ""}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		for _, uid := range participants {
			if err := tx.Create(&DMParticipant{ChannelID: c.ID, UserID: uid}).Error; err != nil {
				return err
			}
		}
		existing = &c
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return existing, nil
}
