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
	"strconv"
	"time"

	"github.com/accordchat/accordserver/internal/snowflake"
)

// ID is a snowflake identifier. It stores as a bigint column but
// marshals as decimal text, since 64-bit integers lose precision in
// JSON numbers parsed by JavaScript clients.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// CreatedAt recovers the creation time encoded in the identifier.
func (id ID) CreatedAt() time.Time {
	return snowflake.TimestampOf(int64(id))
}

// IDGenerator is satisfied by *snowflake.Allocator; kept as an interface so
// repository tests can swap in a deterministic generator.
type IDGenerator interface {
	Next() int64
}

// NewID allocates a fresh ID from the given generator.
func NewID(gen IDGenerator) ID {
	return ID(gen.Next())
}
