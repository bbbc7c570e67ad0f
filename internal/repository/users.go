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

func (r *gormRepository) CreateUser(ctx context.Context, u *User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormRepository) GetUser(ctx context.Context, id ID) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "username = ? AND is_bot = ?", username, false).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormRepository) UpdateUser(ctx context.Context, u *User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *gormRepository) DeleteUser(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&User{}, "id = ?", id).Error)
}

func (r *gormRepository) ListUserSpaces(ctx context.Context, userID ID) ([]Space, error) {
	var spaces []Space
	err := r.db.WithContext(ctx).
		Joins("JOIN members ON members.space_id = spaces.id").
		Where("members.user_id = ?", userID).
		Order("spaces.id").
		Find(&spaces).Error
	if err != nil {
		return nil, translate(err)
	}
	return spaces, nil
}

func (r *gormRepository) ListUserChannels(ctx context.Context, userID ID) ([]Channel, error) {
	var channels []Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN dm_participants ON dm_participants.channel_id = channels.id").
		Where("dm_participants.user_id = ?", userID).
		Order("channels.id").
		Find(&channels).Error
	if err != nil {
		return nil, translate(err)
	}
	return channels, nil
}

func (r *gormRepository) CreateApplication(ctx context.Context, a *Application) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *gormRepository) GetApplication(ctx context.Context, id ID) (*Application, error) {
	var a Application
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *gormRepository) ListApplicationsOwnedBy(ctx context.Context, ownerID ID) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerID).Order("id").Find(&apps).Error
	if err != nil {
		return nil, translate(err)
	}
	return apps, nil
}

func (r *gormRepository) DeleteApplication(ctx context.Context, id ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Application{}, "id = ?", id).Error)
}

func (r *gormRepository) CreateToken(ctx context.Context, t *Token) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *gormRepository) GetTokenByHash(ctx context.Context, hash string) (*Token, error) {
	var t Token
	if err := r.db.WithContext(ctx).First(&t, "token_hash = ?", hash).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormRepository) DeleteTokenByHash(ctx context.Context, hash string) error {
	res := r.db.WithContext(ctx).Delete(&Token{}, "token_hash = ?", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) DeleteTokensForUser(ctx context.Context, userID ID) error {
	return translate(r.db.WithContext(ctx).Delete(&Token{}, "user_id = ?", userID).Error)
}
