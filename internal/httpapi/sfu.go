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

	"github.com/accordchat/accordserver/internal/apperr"
	"github.com/gin-gonic/gin"
)

// sfu node management is instance-wide administration: only instance
// admins may register, heartbeat, or deregister an edge node.
func (a *api) requireInstanceAdmin(c *gin.Context) bool {
	if !mustPrincipal(c).IsAdmin {
		fail(c, apperr.Forbidden("instance admin required"))
		return false
	}
	return true
}

func (a *api) getSfuNodes(c *gin.Context) {
	nodes, err := a.deps.Repo.ListSfuNodes(c.Request.Context())
	if err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	data(c, http.StatusOK, nodes)
}

type putSfuNodeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Region   string `json:"region" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

func (a *api) putSfuNode(c *gin.Context) {
	if !a.requireInstanceAdmin(c) {
		return
	}
	var req putSfuNodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.deps.NodeDirectory.Register(c.Request.Context(), c.Param("nodeID"), req.Endpoint, req.Region, req.Capacity); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	data(c, http.StatusOK, gin.H{"id": c.Param("nodeID")})
}

type sfuHeartbeatRequest struct {
	CurrentLoad int `json:"current_load"`
}

func (a *api) postSfuHeartbeat(c *gin.Context) {
	if !a.requireInstanceAdmin(c) {
		return
	}
	var req sfuHeartbeatRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.deps.NodeDirectory.Heartbeat(c.Request.Context(), c.Param("nodeID"), req.CurrentLoad); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *api) deleteSfuNode(c *gin.Context) {
	if !a.requireInstanceAdmin(c) {
		return
	}
	nodeID := c.Param("nodeID")
	if err := a.deps.NodeDirectory.Deregister(c.Request.Context(), nodeID); err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	if err := a.deps.Repo.DeleteSfuNode(c.Request.Context(), nodeID); err != nil {
		fail(c, translateRepoErr(err))
		return
	}
	c.Status(http.StatusOK)
}
