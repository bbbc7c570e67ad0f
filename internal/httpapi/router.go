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
	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/config"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/gateway"
	"github.com/accordchat/accordserver/internal/metrics"
	"github.com/accordchat/accordserver/internal/presence"
	"github.com/accordchat/accordserver/internal/ratelimit"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/snowflake"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps collects every dependency the REST surface and the gateway upgrade
// endpoint it mounts need.
type Deps struct {
	Config        *config.Config
	Repo          repository.Repository
	Tokens        *auth.TokenStore
	Perms         *auth.PermissionResolver
	Bus           *eventbus.Bus
	Presence      *presence.Table
	VoiceStates   *voice.StateTable
	MediaRouter   voice.MediaRouterClient
	NodeDirectory *voice.NodeDirectory
	IDs           *snowflake.Allocator
	RateLimit     *ratelimit.Limiter
	Registry      *gateway.Registry
	Metrics       *metrics.Metrics
	Version       string
	Commit        string
}

type api struct {
	deps Deps
}

func (a *api) gatewayDeps() gateway.Deps {
	return gateway.Deps{
		Repo:        a.deps.Repo,
		Tokens:      a.deps.Tokens,
		Perms:       a.deps.Perms,
		Bus:         a.deps.Bus,
		Presence:    a.deps.Presence,
		VoiceStates: a.deps.VoiceStates,
		MediaRouter: a.deps.MediaRouter,
		IDs:         a.deps.IDs,
		Registry:    a.deps.Registry,
		Metrics:     a.deps.Metrics,
	}
}

// NewRouter builds the gin.Engine serving /api/v1, /ws, and the meta
// endpoints, wired the way the teacher's own ApplyRoutes assembles its
// groups: CORS and rate limiting first, auth resolved once per request,
// individual routes opting into requireAuth.
func NewRouter(deps Deps) *gin.Engine {
	a := &api{deps: deps}

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(deps.Config.HTTP.CORSHosts) > 0 {
		corsCfg.AllowOrigins = deps.Config.HTTP.CORSHosts
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	router.GET("/version", a.getVersion)
	router.GET("/healthz", a.getHealth)

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit(deps.RateLimit))
	v1.Use(authenticate(deps.Tokens))
	a.applyRoutes(v1)

	ws := router.Group("/ws")
	ws.Use(rateLimit(deps.RateLimit))
	ws.GET("", gateway.Handler(a.gatewayDeps()))

	return router
}

func (a *api) applyRoutes(group *gin.RouterGroup) {
	authGroup := group.Group("/auth")
	authGroup.POST("/register", a.postRegister)
	authGroup.POST("/login", a.postLogin)
	authGroup.POST("/logout", requireAuth(), a.postLogout)

	users := group.Group("/users")
	users.GET("/@me", requireAuth(), a.getSelf)
	users.PATCH("/@me", requireAuth(), a.patchSelf)
	users.GET("/@me/spaces", requireAuth(), a.getSelfSpaces)
	users.GET("/@me/channels", requireAuth(), a.getSelfChannels)
	users.GET("/:id", requireAuth(), a.getUser)

	spaces := group.Group("/spaces")
	spaces.GET("/public", a.getPublicSpaces)
	spaces.POST("", requireAuth(), a.postSpace)
	spaces.GET("/:spaceID", requireAuth(), a.getSpace)
	spaces.PATCH("/:spaceID", requireAuth(), a.patchSpace)
	spaces.DELETE("/:spaceID", requireAuth(), a.deleteSpace)
	spaces.POST("/:spaceID/join", requireAuth(), a.postSpaceJoin)

	spaces.GET("/:spaceID/channels", requireAuth(), a.getSpaceChannels)
	spaces.POST("/:spaceID/channels", requireAuth(), a.postSpaceChannel)

	spaces.GET("/:spaceID/invites", requireAuth(), a.getSpaceInvites)
	spaces.POST("/:spaceID/invites", requireAuth(), a.postSpaceInvite)
	spaces.DELETE("/:spaceID/invites/:code", requireAuth(), a.deleteInvite)
	group.GET("/invites/:code", a.getInvite)
	group.POST("/invites/:code", requireAuth(), a.postInviteRedeem)

	spaces.GET("/:spaceID/bans", requireAuth(), a.getSpaceBans)
	spaces.PUT("/:spaceID/bans/:userID", requireAuth(), a.putSpaceBan)
	spaces.DELETE("/:spaceID/bans/:userID", requireAuth(), a.deleteSpaceBan)

	spaces.GET("/:spaceID/roles", requireAuth(), a.getSpaceRoles)
	spaces.POST("/:spaceID/roles", requireAuth(), a.postSpaceRole)
	spaces.PATCH("/:spaceID/roles/reorder", requireAuth(), a.patchRoleOrder)
	spaces.PUT("/:spaceID/roles/:roleID", requireAuth(), a.putSpaceRole)
	spaces.DELETE("/:spaceID/roles/:roleID", requireAuth(), a.deleteSpaceRole)

	spaces.GET("/:spaceID/members", requireAuth(), a.getSpaceMembers)
	spaces.GET("/:spaceID/members/@me", requireAuth(), a.getSelfMember)
	spaces.PATCH("/:spaceID/members/:userID", requireAuth(), a.patchSpaceMember)
	spaces.DELETE("/:spaceID/members/:userID", requireAuth(), a.kickSpaceMember)

	spaces.GET("/:spaceID/emojis", requireAuth(), a.getSpaceEmojis)
	spaces.POST("/:spaceID/emojis", requireAuth(), a.postSpaceEmoji)
	spaces.DELETE("/:spaceID/emojis/:emojiID", requireAuth(), a.deleteSpaceEmoji)

	spaces.GET("/:spaceID/soundboard", requireAuth(), a.getSpaceSoundboard)
	spaces.POST("/:spaceID/soundboard", requireAuth(), a.postSpaceSound)
	spaces.DELETE("/:spaceID/soundboard/:soundID", requireAuth(), a.deleteSpaceSound)

	channels := group.Group("/channels")
	channels.GET("/:channelID", requireAuth(), a.getChannel)
	channels.PATCH("/:channelID", requireAuth(), a.patchChannel)
	channels.DELETE("/:channelID", requireAuth(), a.deleteChannel)

	channels.GET("/:channelID/overwrites", requireAuth(), a.getChannelOverwrites)
	channels.PUT("/:channelID/overwrites/:targetID", requireAuth(), a.putChannelOverwrite)
	channels.DELETE("/:channelID/overwrites/:targetID", requireAuth(), a.deleteChannelOverwrite)

	channels.GET("/:channelID/messages", requireAuth(), a.getChannelMessages)
	channels.POST("/:channelID/messages", requireAuth(), a.postChannelMessage)
	channels.POST("/:channelID/messages/bulk-delete", requireAuth(), a.postBulkDeleteMessages)
	channels.GET("/:channelID/messages/:messageID", requireAuth(), a.getMessage)
	channels.PATCH("/:channelID/messages/:messageID", requireAuth(), a.patchMessage)
	channels.DELETE("/:channelID/messages/:messageID", requireAuth(), a.deleteMessage)

	channels.GET("/:channelID/pins", requireAuth(), a.getChannelPins)
	channels.PUT("/:channelID/pins/:messageID", requireAuth(), a.putChannelPin)
	channels.DELETE("/:channelID/pins/:messageID", requireAuth(), a.deleteChannelPin)

	channels.POST("/:channelID/typing", requireAuth(), a.postTyping)

	channels.GET("/:channelID/messages/:messageID/reactions", requireAuth(), a.getReactions)
	channels.PUT("/:channelID/messages/:messageID/reactions/:emoji/@me", requireAuth(), a.putOwnReaction)
	channels.DELETE("/:channelID/messages/:messageID/reactions/:emoji/@me", requireAuth(), a.deleteOwnReaction)
	channels.DELETE("/:channelID/messages/:messageID/reactions/:emoji/:userID", requireAuth(), a.deleteUserReaction)
	channels.DELETE("/:channelID/messages/:messageID/reactions/:emoji", requireAuth(), a.deleteReactionsByEmoji)
	channels.DELETE("/:channelID/messages/:messageID/reactions", requireAuth(), a.deleteAllReactions)

	channels.POST("/:channelID/voice/join", requireAuth(), a.postVoiceJoin)
	channels.POST("/:channelID/voice/leave", requireAuth(), a.postVoiceLeave)
	channels.GET("/:channelID/voice/status", requireAuth(), a.getVoiceStatus)

	group.GET("/voice-regions", requireAuth(), a.getVoiceRegions)

	sfu := group.Group("/sfu/nodes")
	sfu.GET("", requireAuth(), a.getSfuNodes)
	sfu.PUT("/:nodeID", requireAuth(), a.putSfuNode)
	sfu.POST("/:nodeID/heartbeat", requireAuth(), a.postSfuHeartbeat)
	sfu.DELETE("/:nodeID", requireAuth(), a.deleteSfuNode)

	apps := group.Group("/applications")
	apps.GET("", requireAuth(), a.getApplications)
	apps.POST("", requireAuth(), a.postApplication)
	apps.DELETE("/:id", requireAuth(), a.deleteApplication)

	group.POST("/interactions", requireAuth(), a.postInteraction)

	group.GET("/gateway", a.getGatewayInfo)
	group.GET("/version", a.getVersion)
}
