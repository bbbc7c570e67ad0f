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

// Package auth resolves bearer/bot credentials to a Principal and computes
// effective permission sets for that principal at space and channel scope.
package auth

import "github.com/accordchat/accordserver/internal/repository"

// Principal is the identity a TokenStore resolves an Authorization header
// to: who is making the request, whether it's a bot, and whether it
// carries the instance-level admin bypass.
type Principal struct {
	UserID  repository.ID
	IsBot   bool
	IsAdmin bool
}
