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

package gateway

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Accord is consumed by first-party and third-party clients from
	// arbitrary origins; auth happens inside IDENTIFY, not at the
	// handshake, so the origin check is intentionally permissive.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades a gin request to a WebSocket and drives it with a
// ConnectionActor until the socket closes.
func Handler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("gateway: websocket upgrade failed", "error", err)
			return
		}
		actor := NewConnectionActor(deps, conn)
		actor.Run(c.Request.Context())
	}
}
