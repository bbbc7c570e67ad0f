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

func (r *gormRepository) UpsertSfuNode(ctx context.Context, n *SfuNode) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", n.ID).
		Assign(*n).
		FirstOrCreate(n).Error
	return translate(err)
}

func (r *gormRepository) ListSfuNodes(ctx context.Context) ([]SfuNode, error) {
	var nodes []SfuNode
	if err := r.db.WithContext(ctx).Order("id").Find(&nodes).Error; err != nil {
		return nil, translate(err)
	}
	return nodes, nil
}

func (r *gormRepository) DeleteSfuNode(ctx context.Context, id string) error {
	return translate(r.db.WithContext(ctx).Delete(&SfuNode{}, "id = ?", id).Error)
}
