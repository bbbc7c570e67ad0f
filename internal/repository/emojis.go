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

func (r *gormRepository) CreateEmoji(ctx context.Context, e *Emoji) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *gormRepository) ListSpaceEmojis(ctx context.Context, spaceID ID) ([]Emoji, error) {
	var emojis []Emoji
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("id").Find(&emojis).Error
	if err != nil {
		return nil, translate(err)
	}
	return emojis, nil
}

func (r *gormRepository) DeleteEmoji(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Emoji{}, "id = ?", id).Error)
}

func (r *gormRepository) CreateSoundboardSound(ctx context.Context, s *SoundboardSound) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *gormRepository) ListSpaceSoundboardSounds(ctx context.Context, spaceID ID) ([]SoundboardSound, error) {
	var sounds []SoundboardSound
	err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).Order("id").Find(&sounds).Error
	if err != nil {
		return nil, translate(err)
	}
	return sounds, nil
}

func (r *gormRepository) DeleteSoundboardSound(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&SoundboardSound{}, "id = ?", id).Error)
}
