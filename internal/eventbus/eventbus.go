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

// Package eventbus is the process-wide broadcast of domain events from
// HTTP mutations to subscribed gateway connections. A slow subscriber is
// dropped from the bus rather than allowed to block a publisher; the
// owning ConnectionActor is expected to send the dropped session an
// INVALID_SESSION frame and require a fresh connection.
package eventbus

import (
	"log/slog"
	"sync"

	"github.com/accordchat/accordserver/internal/metrics"
	"github.com/accordchat/accordserver/internal/repository"
)

// Intent names the gateway intent strings a subscriber may hold.
type Intent string

const (
	IntentSpaces           Intent = "spaces"
	IntentMembers          Intent = "members"
	IntentMessages         Intent = "messages"
	IntentMessageReactions Intent = "message_reactions"
	IntentMessageTyping    Intent = "message_typing"
	IntentMessageContent   Intent = "message_content"
	IntentPresences        Intent = "presences"
	IntentVoiceStates      Intent = "voice_states"
	IntentModeration       Intent = "moderation"
	IntentEmojis           Intent = "emojis"
)

// PrivilegedIntents requires an out-of-band grant in principle; this core
// always allows them (bots are configured out of band), but the set is
// still named so a caller can surface it in a future gate.
var PrivilegedIntents = map[Intent]bool{
	IntentMembers:        true,
	IntentPresences:      true,
	IntentMessageContent: true,
}

// RequiredIntent maps a domain event's type prefix to the intent a
// subscriber must hold to receive it, per the gateway's event table.
// Event types with no table entry (e.g. "interaction.create") are always
// delivered.
func RequiredIntent(eventType string) (Intent, bool) {
	for _, m := range intentTable {
		if m.matches(eventType) {
			return m.intent, true
		}
	}
	return "", false
}

type intentRule struct {
	prefix string
	intent Intent
}

func (r intentRule) matches(eventType string) bool {
	if r.prefix == eventType {
		return true
	}
	return len(eventType) > len(r.prefix) &&
		eventType[:len(r.prefix)] == r.prefix &&
		eventType[len(r.prefix)] == '.'
}

var intentTable = []intentRule{
	{"message", IntentMessages},
	{"member", IntentMembers},
	{"space", IntentSpaces},
	{"channel", IntentSpaces},
	{"role", IntentSpaces},
	{"invite", IntentSpaces},
	{"reaction", IntentMessageReactions},
	{"presence.update", IntentPresences},
	{"voice", IntentVoiceStates},
	{"ban", IntentModeration},
	{"emoji", IntentEmojis},
}

// The "typing.start" rule is appended separately since it is a full
// event type, not a dot-delimited prefix family like the others.
func init() {
	intentTable = append(intentTable, intentRule{"typing.start", IntentMessageTyping})
}

// DomainEvent is a single published item on the bus. SpaceID and
// TargetUserIDs are mutually informative filters applied by each
// subscriber: TargetUserIDs, if non-empty, takes precedence over SpaceID.
type DomainEvent struct {
	Type          string
	SpaceID       repository.ID
	HasSpaceID    bool
	TargetUserIDs []repository.ID
	Payload       any
}

const subscriberBuffer = 1024

// Bus is a single bounded multi-consumer broadcast channel. Publish never
// blocks on a slow consumer: instead that consumer's Subscription is
// closed and removed, and the drop is counted in metrics and logged.
// Publish itself returns nothing.
//
// A Bus is process-local by default. Attach makes Publish also fan events
// out to every other process sharing the same cluster backend, so a
// deployment running more than one instance still sees a single bus.
type Bus struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	metrics *metrics.Metrics
	cluster *cluster
}

// New returns a ready-to-use Bus. m may be nil in tests that don't care
// about instrumentation.
func New(m *metrics.Metrics) *Bus {
	return &Bus{subs: make(map[*Subscription]struct{}), metrics: m}
}

// Subscription is an independent receiver on the Bus. Dropped/closed
// exactly once, either by the owner calling Close or by the Bus dropping
// it for being too slow.
type Subscription struct {
	bus    *Bus
	ch     chan DomainEvent
	once   sync.Once
	dropCh chan struct{}
}

// Events returns the channel of events delivered to this subscription.
func (s *Subscription) Events() <-chan DomainEvent { return s.ch }

// Dropped is closed if the Bus ever drops this subscription for being
// too slow to keep up; callers select on it alongside Events() to notice
// the forced disconnect.
func (s *Subscription) Dropped() <-chan struct{} { return s.dropCh }

// Close unsubscribes; safe to call more than once and safe to call after
// the Bus has already dropped the subscription.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) drop() {
	s.once.Do(func() {
		close(s.dropCh)
		close(s.ch)
	})
}

// Subscribe registers a new independent receiver.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus:    b,
		ch:     make(chan DomainEvent, subscriberBuffer),
		dropCh: make(chan struct{}),
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish broadcasts ev to every current subscriber. Any subscriber whose
// buffer is full is dropped from the bus instead of blocking the
// publisher, per the bus's documented back-pressure policy.
func (b *Bus) Publish(ev DomainEvent) {
	b.broadcastLocal(ev)
	if b.cluster != nil {
		b.cluster.publish(ev)
	}
}

func (b *Bus) broadcastLocal(ev DomainEvent) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.EventBusPublishedTotal.Inc()
	}

	var dropped []*Subscription
	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			dropped = append(dropped, s)
		}
	}

	if len(dropped) == 0 {
		return
	}
	b.mu.Lock()
	for _, s := range dropped {
		delete(b.subs, s)
	}
	b.mu.Unlock()
	for _, s := range dropped {
		s.drop()
	}
	if b.metrics != nil {
		b.metrics.EventBusDroppedTotal.Add(float64(len(dropped)))
	}
	slog.Warn("eventbus dropped slow subscriber", "count", len(dropped), "event_type", ev.Type)
}

// Shallow reports how many subscriptions are currently registered; used
// only for diagnostics/metrics, never for control flow.
func (b *Bus) Shallow() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
