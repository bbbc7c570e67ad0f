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
	"sync"
	"sync/atomic"

	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/puzpuzpuz/xsync/v4"
)

const outboundBuffer = 256

// Session is one authenticated gateway connection's state, shared
// between the connection's read/write goroutines.
type Session struct {
	ID      repository.ID
	UserID  repository.ID
	IsBot   bool
	IsAdmin bool
	Intents map[eventbus.Intent]bool

	mu       sync.RWMutex
	spaceIDs map[repository.ID]struct{}

	seq      int64
	Outbound chan Frame

	closeOnce sync.Once
}

func newSession(id, userID repository.ID, isBot, isAdmin bool, intents map[eventbus.Intent]bool) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		IsBot:    isBot,
		IsAdmin:  isAdmin,
		Intents:  intents,
		spaceIDs: make(map[repository.ID]struct{}),
		// seq starts at 1 (READY's seq) so the first delivered event's
		// nextSeq() returns 2, per spec.md §4.8.
		seq:      1,
		Outbound: make(chan Frame, outboundBuffer),
	}
}

func (s *Session) setSpaces(ids []repository.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaceIDs = make(map[repository.ID]struct{}, len(ids))
	for _, id := range ids {
		s.spaceIDs[id] = struct{}{}
	}
}

func (s *Session) hasSpace(id repository.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.spaceIDs[id]
	return ok
}

func (s *Session) spaceList() []repository.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.ID, 0, len(s.spaceIDs))
	for id := range s.spaceIDs {
		out = append(out, id)
	}
	return out
}

func (s *Session) nextSeq() int64 {
	return atomic.AddInt64(&s.seq, 1)
}

func (s *Session) hasIntent(intent eventbus.Intent) bool {
	return s.Intents[intent]
}

// Close closes the outbound channel exactly once, signalling the writer
// goroutine to stop.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.Outbound) })
}

// Registry tracks live sessions, indexed both by session id and by user
// id (a user may hold more than one concurrent session).
type Registry struct {
	byID   *xsync.Map[repository.ID, *Session]
	byUser *xsync.Map[repository.ID, *xsync.Map[repository.ID, struct{}]]
}

// NewRegistry returns a ready-to-use, empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   xsync.NewMap[repository.ID, *Session](),
		byUser: xsync.NewMap[repository.ID, *xsync.Map[repository.ID, struct{}]](),
	}
}

// Register adds a session to the registry.
func (r *Registry) Register(s *Session) {
	r.byID.Store(s.ID, s)
	sessions, _ := r.byUser.LoadOrStore(s.UserID, xsync.NewMap[repository.ID, struct{}]())
	sessions.Store(s.ID, struct{}{})
}

// Unregister removes a session, returning true iff the user has no other
// live session remaining afterward.
func (r *Registry) Unregister(s *Session) bool {
	r.byID.Delete(s.ID)
	sessions, ok := r.byUser.Load(s.UserID)
	if !ok {
		return true
	}
	sessions.Delete(s.ID)
	if sessions.Size() == 0 {
		r.byUser.Delete(s.UserID)
		return true
	}
	return false
}

// Get returns a session by id.
func (r *Registry) Get(id repository.ID) (*Session, bool) {
	return r.byID.Load(id)
}

// SessionsForUser returns every live session belonging to userID.
func (r *Registry) SessionsForUser(userID repository.ID) []*Session {
	sessions, ok := r.byUser.Load(userID)
	if !ok {
		return nil
	}
	var out []*Session
	sessions.Range(func(id repository.ID, _ struct{}) bool {
		if s, ok := r.byID.Load(id); ok {
			out = append(out, s)
		}
		return true
	})
	return out
}

// Range visits every live session.
func (r *Registry) Range(fn func(*Session) bool) {
	r.byID.Range(func(_ repository.ID, s *Session) bool {
		return fn(s)
	})
}
