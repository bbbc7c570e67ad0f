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

package httpapi

import (
	"net/http"

	"github.com/accordchat/accordserver/internal/gateway"
	"github.com/gin-gonic/gin"
)

func (a *api) getVersion(c *gin.Context) {
	data(c, http.StatusOK, gin.H{
		"version": a.deps.Version,
		"commit":  a.deps.Commit,
	})
}

// getHealth reports liveness only; it never touches the repository, so it
// stays cheap enough for a tight orchestrator liveness probe.
func (a *api) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getGatewayInfo tells clients where to open the gateway WebSocket and
// what heartbeat interval to expect, mirroring the shape returned at
// IDENTIFY time so clients can pre-size their heartbeat timer.
func (a *api) getGatewayInfo(c *gin.Context) {
	data(c, http.StatusOK, gin.H{
		"url":                "/ws",
		"heartbeat_interval": gateway.HeartbeatInterval.Milliseconds(),
	})
}
