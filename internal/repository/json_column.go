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
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONColumn carries free-form JSON (Message.attachments, Message.embeds)
// in a single jsonb column rather than a normalized table, since no CDN
// upload flow exists to justify one.
type JSONColumn json.RawMessage

func (j JSONColumn) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	return string(j), nil
}

func (j *JSONColumn) Scan(src any) error {
	if src == nil {
		*j = JSONColumn("[]")
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = JSONColumn(v)
		return nil
	case string:
		*j = JSONColumn(v)
		return nil
	default:
		return errors.New("repository: unsupported JSONColumn source type")
	}
}

func (j JSONColumn) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("[]"), nil
	}
	return j, nil
}

func (j *JSONColumn) UnmarshalJSON(data []byte) error {
	*j = JSONColumn(data)
	return nil
}
