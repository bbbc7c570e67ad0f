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

package voice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/accordchat/accordserver/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pion/webrtc/v4"
)

// customClaims is the token a client presents when signaling directly
// against the embedded SFU's gateway relay, binding it to one room.
type customClaims struct {
	jwt.RegisteredClaims
	Room string `json:"room"`
}

// customRoom is a channel's set of connected peer connections.
type customRoom struct {
	mu               sync.Mutex
	peers            map[string]*customPeer
	forwardedTracks  map[string]*webrtc.TrackLocalStaticRTP
}

type customPeer struct {
	pc        *webrtc.PeerConnection
	sessionID repository.ID
}

// EmbeddedSFU is the custom, self-hosted MediaRouterClient backend: a
// minimal SFU built directly on pion/webrtc, with one RTCPeerConnection
// per participant and per-track forwarding between peers of a room.
type EmbeddedSFU struct {
	api         *webrtc.API
	secret      []byte
	externalURL string

	mu    sync.Mutex
	rooms map[string]*customRoom
}

// NewEmbeddedSFU constructs a ready-to-use embedded SFU. externalURL is
// the address clients open a signaling connection to (normally the
// gateway's own websocket endpoint); secret signs participant tokens.
func NewEmbeddedSFU(externalURL string, secret []byte) (*EmbeddedSFU, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("voice: register default codecs: %w", err)
	}
	api := webrtc.NewAPI(webrtc.WithMediaEngine(m))
	return &EmbeddedSFU{
		api:         api,
		secret:      secret,
		externalURL: externalURL,
		rooms:       make(map[string]*customRoom),
	}, nil
}

func (s *EmbeddedSFU) room(channelID repository.ID) *customRoom {
	name := roomName(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	if !ok {
		r = &customRoom{
			peers:           make(map[string]*customPeer),
			forwardedTracks: make(map[string]*webrtc.TrackLocalStaticRTP),
		}
		s.rooms[name] = r
	}
	return r
}

func (s *EmbeddedSFU) EnsureRoom(_ context.Context, channelID repository.ID) error {
	s.room(channelID)
	return nil
}

func (s *EmbeddedSFU) GenerateToken(_ context.Context, userID repository.ID, displayName string, channelID repository.ID, ttl time.Duration) (string, error) {
	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "accordserver",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Room: roomName(channelID),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *EmbeddedSFU) RemoveParticipant(_ context.Context, channelID, userID repository.ID) error {
	r := s.room(channelID)
	r.mu.Lock()
	peer, ok := r.peers[userID.String()]
	if ok {
		delete(r.peers, userID.String())
		delete(r.forwardedTracks, userID.String())
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return peer.pc.Close()
}

func (s *EmbeddedSFU) DeleteRoomIfEmpty(_ context.Context, channelID repository.ID) error {
	name := roomName(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	if !ok {
		return nil
	}
	r.mu.Lock()
	empty := len(r.peers) == 0
	r.mu.Unlock()
	if empty {
		delete(s.rooms, name)
	}
	return nil
}

func (s *EmbeddedSFU) ExternalURL() string { return s.externalURL }

func (s *EmbeddedSFU) Backend() Backend { return BackendCustom }

// HandleOffer sets up a new peer connection for userID in channelID from
// a client SDP offer, wires it into the room's track forwarding, and
// returns the SDP answer to relay back over the gateway.
func (s *EmbeddedSFU) HandleOffer(ctx context.Context, userID, sessionID, channelID repository.ID, offerSDP string) (string, error) {
	pc, err := s.api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
	})
	if err != nil {
		return "", fmt.Errorf("voice: new peer connection: %w", err)
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		_ = pc.Close()
		return "", fmt.Errorf("voice: add audio transceiver: %w", err)
	}

	room := s.room(channelID)
	uid := userID.String()

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		local, err := webrtc.NewTrackLocalStaticRTP(track.Codec().RTPCodecCapability, "audio", uid)
		if err != nil {
			slog.Error("voice: create forwarded track", "error", err, "user_id", uid)
			return
		}
		room.mu.Lock()
		room.forwardedTracks[uid] = local
		peers := make([]*customPeer, 0, len(room.peers))
		for otherID, peer := range room.peers {
			if otherID != uid {
				peers = append(peers, peer)
			}
		}
		room.mu.Unlock()

		for _, peer := range peers {
			if _, err := peer.pc.AddTrack(local); err != nil {
				slog.Error("voice: forward track to peer", "error", err)
			}
		}

		buf := make([]byte, 1500)
		for {
			n, _, err := track.Read(buf)
			if err != nil {
				return
			}
			if _, err := local.Write(buf[:n]); err != nil {
				return
			}
		}
	})

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}); err != nil {
		_ = pc.Close()
		return "", fmt.Errorf("voice: set remote description: %w", err)
	}

	room.mu.Lock()
	for otherID, track := range room.forwardedTracks {
		if otherID != uid {
			if _, err := pc.AddTrack(track); err != nil {
				slog.Error("voice: add existing forwarded track", "error", err, "from", otherID)
			}
		}
	}
	room.mu.Unlock()

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		_ = pc.Close()
		return "", fmt.Errorf("voice: create answer: %w", err)
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		_ = pc.Close()
		return "", fmt.Errorf("voice: set local description: %w", err)
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		_ = pc.Close()
		return "", ctx.Err()
	}

	room.mu.Lock()
	room.peers[uid] = &customPeer{pc: pc, sessionID: sessionID}
	room.mu.Unlock()

	return pc.LocalDescription().SDP, nil
}

// HandleAnswer applies a renegotiation answer from an existing peer.
func (s *EmbeddedSFU) HandleAnswer(channelID, userID repository.ID, answerSDP string) error {
	room := s.room(channelID)
	room.mu.Lock()
	peer, ok := room.peers[userID.String()]
	room.mu.Unlock()
	if !ok {
		return nil
	}
	return peer.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answerSDP})
}

// HandleICECandidate applies a trickled ICE candidate from a peer.
func (s *EmbeddedSFU) HandleICECandidate(channelID, userID repository.ID, candidate webrtc.ICECandidateInit) error {
	room := s.room(channelID)
	room.mu.Lock()
	peer, ok := room.peers[userID.String()]
	room.mu.Unlock()
	if !ok {
		return nil
	}
	return peer.pc.AddICECandidate(candidate)
}
