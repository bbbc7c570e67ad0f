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

const serverSettingsRowID = 1

// GetServerSettings returns the single settings row, creating it with
// zero values on first access.
func (r *gormRepository) GetServerSettings(ctx context.Context) (*ServerSettings, error) {
	var s ServerSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", serverSettingsRowID).
		Attrs(ServerSettings{ID: serverSettingsRowID}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepository) SaveServerSettings(ctx context.Context, s *ServerSettings) error {
	s.ID = serverSettingsRowID
	return translate(r.db.WithContext(ctx).Save(s).Error)
}
