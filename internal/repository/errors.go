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
	"errors"
	"strings"

	"gorm.io/gorm"
)

// defaultPageLimit is used by cursor-paginated list calls when the caller
// doesn't specify one.
const defaultPageLimit = 50

// Sentinel errors returned by Repository methods. Callers translate these
// to *apperr.Error at the HTTP/gateway boundary; nothing in this package
// imports apperr.
var (
	ErrNotFound = errors.New("repository: not found")
	ErrConflict = errors.New("repository: conflict")
	ErrInvalid  = errors.New("repository: invalid")
)

// translate maps a raw gorm/driver error onto one of the sentinels above,
// or returns err unchanged if it isn't one we recognize.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique"), strings.Contains(msg, "duplicate"):
		return ErrConflict
	case strings.Contains(msg, "not null"), strings.Contains(msg, "null constraint"),
		strings.Contains(msg, "foreign key"), strings.Contains(msg, "check constraint"):
		return ErrInvalid
	default:
		return err
	}
}
