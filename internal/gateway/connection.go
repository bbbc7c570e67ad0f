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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/accordchat/accordserver/internal/auth"
	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/metrics"
	"github.com/accordchat/accordserver/internal/presence"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/accordchat/accordserver/internal/snowflake"
	"github.com/accordchat/accordserver/internal/voice"
	"github.com/gorilla/websocket"
)

const (
	// HeartbeatInterval is advertised in HELLO and in the HTTP gateway-info
	// endpoint so clients can size their heartbeat timer before connecting.
	HeartbeatInterval = 45 * time.Second
	identifyDeadline  = 30 * time.Second
)

var errAuthFailed = errors.New("gateway: identify token did not resolve to a principal")

var knownIntents = map[eventbus.Intent]bool{
	eventbus.IntentSpaces:           true,
	eventbus.IntentMembers:          true,
	eventbus.IntentMessages:         true,
	eventbus.IntentMessageReactions: true,
	eventbus.IntentMessageTyping:    true,
	eventbus.IntentMessageContent:   true,
	eventbus.IntentPresences:        true,
	eventbus.IntentVoiceStates:      true,
	eventbus.IntentModeration:       true,
	eventbus.IntentEmojis:           true,
}

// Deps bundles every collaborator a ConnectionActor needs; built once at
// process startup and shared by every connection.
type Deps struct {
	Repo        repository.Repository
	Tokens      *auth.TokenStore
	Perms       *auth.PermissionResolver
	Bus         *eventbus.Bus
	Presence    *presence.Table
	VoiceStates *voice.StateTable
	MediaRouter voice.MediaRouterClient
	IDs         *snowflake.Allocator
	Metrics     *metrics.Metrics
	Registry    *Registry
}

// Conn is the minimal surface ConnectionActor needs from a websocket
// connection, satisfied by *websocket.Conn; narrowed for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// ConnectionActor drives the protocol state machine for one WebSocket.
type ConnectionActor struct {
	deps Deps
	conn Conn

	session *Session
	sub     *eventbus.Subscription
}

// NewConnectionActor wraps a freshly-upgraded websocket connection.
func NewConnectionActor(deps Deps, conn Conn) *ConnectionActor {
	return &ConnectionActor{deps: deps, conn: conn}
}

// Run drives the connection to completion; it returns once the socket is
// closed, performing all cleanup before returning.
func (a *ConnectionActor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.sendHello(); err != nil {
		return
	}

	session, err := a.awaitIdentify(ctx)
	if err != nil {
		return
	}
	a.session = session
	defer a.closing(ctx)

	a.ready(ctx)
}

func (a *ConnectionActor) sendHello() error {
	return a.writeFrame(Frame{Op: OpHello}, HelloData{HeartbeatIntervalMS: HeartbeatInterval.Milliseconds()})
}

func (a *ConnectionActor) writeFrame(f Frame, data any) error {
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		f.Data = raw
	}
	encoded, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return a.conn.WriteMessage(websocket.TextMessage, encoded)
}

func (a *ConnectionActor) closeWith(code CloseCode, reason string) {
	msg := websocket.FormatCloseMessage(int(code), reason)
	_ = a.conn.WriteMessage(websocket.CloseMessage, msg)
	_ = a.conn.Close()
	if a.deps.Metrics != nil {
		a.deps.Metrics.GatewayCloseTotal.WithLabelValues(code.String()).Inc()
	}
}

// invalidSession sends the INVALID_SESSION frame mandated by spec.md
// §4.8/§4.2/§4.7's failure paths, then closes with code. Resume is not
// implemented in this core, so resumable is always false.
func (a *ConnectionActor) invalidSession(code CloseCode, reason string) {
	_ = a.writeFrame(Frame{Op: OpInvalidSession}, InvalidSessionData{Resumable: false})
	a.closeWith(code, reason)
}

// awaitIdentify blocks for the first valid inbound frame, which must be
// IDENTIFY, within identifyDeadline.
func (a *ConnectionActor) awaitIdentify(ctx context.Context) (*Session, error) {
	type readResult struct {
		frame Frame
		err   error
	}
	results := make(chan readResult, 1)
	go func() {
		_, raw, err := a.conn.ReadMessage()
		if err != nil {
			results <- readResult{err: err}
			return
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			results <- readResult{err: err}
			return
		}
		results <- readResult{frame: f}
	}()

	select {
	case <-time.After(identifyDeadline):
		a.invalidSession(CloseNotAuthenticated, "identify timeout")
		return nil, errors.New("identify deadline exceeded")
	case res := <-results:
		if res.err != nil {
			a.closeWith(CloseDecodeError, "malformed frame")
			return nil, res.err
		}
		if res.frame.Op != OpIdentify {
			a.closeWith(CloseNotAuthenticated, "expected identify")
			return nil, errors.New("first frame was not identify")
		}
		return a.handleIdentify(ctx, res.frame)
	}
}

func (a *ConnectionActor) handleIdentify(ctx context.Context, f Frame) (*Session, error) {
	var payload IdentifyData
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		a.closeWith(CloseDecodeError, "malformed identify")
		return nil, err
	}

	principal, err := a.deps.Tokens.Resolve(ctx, "Bearer "+payload.Token)
	if err == nil && principal == nil {
		principal, err = a.deps.Tokens.Resolve(ctx, "Bot "+payload.Token)
	}
	if err != nil || principal == nil {
		a.invalidSession(CloseAuthFailed, "authentication failed")
		if err == nil {
			err = errAuthFailed
		}
		return nil, err
	}

	intents := make(map[eventbus.Intent]bool, len(payload.Intents))
	for _, raw := range payload.Intents {
		intent := eventbus.Intent(raw)
		if !knownIntents[intent] {
			a.closeWith(CloseInvalidIntent, fmt.Sprintf("unknown intent %q", raw))
			return nil, fmt.Errorf("unknown intent %q", raw)
		}
		intents[intent] = true
	}

	sessionID := repository.ID(a.deps.IDs.Next())
	session := newSession(sessionID, principal.UserID, principal.IsBot, principal.IsAdmin, intents)

	spaces, err := a.deps.Repo.ListUserSpaces(ctx, principal.UserID)
	if err != nil {
		a.closeWith(CloseUnknownError, "failed to load spaces")
		return nil, err
	}
	spaceIDs := make([]repository.ID, 0, len(spaces))
	spaceStrs := make([]string, 0, len(spaces))
	for _, sp := range spaces {
		spaceIDs = append(spaceIDs, sp.ID)
		spaceStrs = append(spaceStrs, sp.ID.String())
	}
	session.setSpaces(spaceIDs)

	a.deps.Presence.Acquire(principal.UserID, sessionID)
	if payload.Presence != nil {
		a.deps.Presence.Update(principal.UserID, sessionID, presence.ClampStatus(payload.Presence.Status), nil)
	}

	a.sub = a.deps.Bus.Subscribe()

	presences := map[string]interface{}{}
	for _, id := range spaceIDs {
		members, err := a.deps.Repo.ListMembers(ctx, id, "", repository.Cursor{})
		if err != nil {
			continue
		}
		for _, m := range members.Items {
			if rec, ok := a.deps.Presence.Get(m.UserID); ok {
				presences[m.UserID.String()] = rec
			}
		}
	}

	if err := a.writeFrame(Frame{Op: OpEvent, Type: "ready", Seq: seqPtr(1)}, ReadyData{
		SessionID:     sessionID.String(),
		UserID:        principal.UserID.String(),
		Spaces:        spaceStrs,
		Presences:     presences,
		APIVersion:    APIVersion,
		ServerVersion: ServerVersion,
	}); err != nil {
		return nil, err
	}

	for _, id := range spaceIDs {
		a.deps.Bus.Publish(eventbus.DomainEvent{
			Type: "presence.update", SpaceID: id, HasSpaceID: true,
			Payload: map[string]any{"user_id": principal.UserID.String(), "status": presence.StatusOnline},
		})
	}

	a.deps.Registry.Register(session)

	if a.deps.Metrics != nil {
		a.deps.Metrics.GatewaySessionsActive.Inc()
	}
	return session, nil
}

func seqPtr(n int64) *int64 { return &n }

// ready pumps inbound frames, outbound frames, event bus receipts and the
// heartbeat deadline fairly until the connection ends.
func (a *ConnectionActor) ready(ctx context.Context) {
	inbound := make(chan Frame)
	readErrs := make(chan error, 1)
	go func() {
		for {
			_, raw, err := a.conn.ReadMessage()
			if err != nil {
				readErrs <- err
				return
			}
			var f Frame
			if err := json.Unmarshal(raw, &f); err != nil {
				a.closeWith(CloseDecodeError, "malformed frame")
				readErrs <- err
				return
			}
			inbound <- f
		}
	}()

	lastHeartbeat := time.Now()
	ticker := time.NewTicker(HeartbeatInterval / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-readErrs:
			_ = err
			return
		case f := <-inbound:
			if a.deps.Metrics != nil {
				a.deps.Metrics.GatewayFramesInTotal.WithLabelValues(fmt.Sprint(f.Op)).Inc()
			}
			if f.Op == OpHeartbeat {
				lastHeartbeat = time.Now()
			}
			a.dispatchInbound(ctx, f)
		case frame, ok := <-a.session.Outbound:
			if !ok {
				return
			}
			if err := a.writeRawFrame(frame); err != nil {
				return
			}
		case ev := <-a.sub.Events():
			a.deliver(ev)
		case <-a.sub.Dropped():
			a.invalidSession(CloseRateLimited, "event backlog exceeded")
			return
		case <-ticker.C:
			if time.Since(lastHeartbeat) > 2*HeartbeatInterval {
				a.closeWith(CloseSessionTimedOut, "heartbeat timeout")
				return
			}
		}
	}
}

func (a *ConnectionActor) writeRawFrame(f Frame) error {
	encoded, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return a.conn.WriteMessage(websocket.TextMessage, encoded)
}

func (a *ConnectionActor) dispatchInbound(ctx context.Context, f Frame) {
	switch f.Op {
	case OpHeartbeat:
		_ = a.writeFrame(Frame{Op: OpHeartbeatAck}, nil)
	case OpPresenceUpdate:
		a.handlePresenceUpdate(f)
	case OpVoiceStateUpdate:
		a.handleVoiceStateUpdate(ctx, f)
	default:
		// Unrecognized ops are ignored rather than closing the connection.
	}
}

func (a *ConnectionActor) handlePresenceUpdate(f Frame) {
	var payload PresenceUpdate
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		return
	}
	status := presence.ClampStatus(payload.Status)
	a.deps.Presence.Update(a.session.UserID, a.session.ID, status, nil)

	broadcast := status.Broadcast()
	for _, spaceID := range a.session.spaceList() {
		a.deps.Bus.Publish(eventbus.DomainEvent{
			Type: "presence.update", SpaceID: spaceID, HasSpaceID: true,
			Payload: map[string]any{"user_id": a.session.UserID.String(), "status": broadcast},
		})
	}
}

func (a *ConnectionActor) deliver(ev eventbus.DomainEvent) {
	if len(ev.TargetUserIDs) > 0 {
		found := false
		for _, id := range ev.TargetUserIDs {
			if id == a.session.UserID {
				found = true
				break
			}
		}
		if !found {
			return
		}
	} else if ev.HasSpaceID {
		if !a.session.hasSpace(ev.SpaceID) {
			return
		}
	}

	if intent, required := eventbus.RequiredIntent(ev.Type); required && !a.session.hasIntent(intent) {
		return
	}

	seq := a.session.nextSeq()
	raw, err := json.Marshal(ev.Payload)
	if err != nil {
		slog.Error("gateway: marshal event payload", "error", err, "type", ev.Type)
		return
	}
	select {
	case a.session.Outbound <- Frame{Op: OpEvent, Type: ev.Type, Seq: &seq, Data: raw}:
	default:
		slog.Warn("gateway: outbound queue full, dropping frame", "session_id", a.session.ID.String())
	}
}

func (a *ConnectionActor) closing(ctx context.Context) {
	if a.sub != nil {
		a.sub.Close()
	}
	lastForUser := a.deps.Registry.Unregister(a.session)

	if prior := a.deps.VoiceStates.Leave(a.session.UserID); prior != nil {
		for _, spaceID := range a.session.spaceList() {
			a.deps.Bus.Publish(eventbus.DomainEvent{
				Type: "voice.state_update", SpaceID: spaceID, HasSpaceID: true,
				Payload: map[string]any{"user_id": a.session.UserID.String(), "channel_id": nil},
			})
		}
		_ = a.deps.MediaRouter.RemoveParticipant(ctx, prior.ChannelID, a.session.UserID)
		_ = a.deps.MediaRouter.DeleteRoomIfEmpty(ctx, prior.ChannelID)
	}

	a.deps.Presence.Release(a.session.UserID, a.session.ID)
	if lastForUser {
		for _, spaceID := range a.session.spaceList() {
			a.deps.Bus.Publish(eventbus.DomainEvent{
				Type: "presence.update", SpaceID: spaceID, HasSpaceID: true,
				Payload: map[string]any{"user_id": a.session.UserID.String(), "status": presence.StatusOffline},
			})
		}
	}

	if a.deps.Metrics != nil {
		a.deps.Metrics.GatewaySessionsActive.Dec()
	}
}
