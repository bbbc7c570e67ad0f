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

package eventbus_test

import (
	"testing"
	"time"

	"github.com/accordchat/accordserver/internal/eventbus"
	"github.com/accordchat/accordserver/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	bus := eventbus.New(nil)
	a := bus.Subscribe()
	b := bus.Subscribe()
	defer a.Close()
	defer b.Close()

	bus.Publish(eventbus.DomainEvent{Type: "message.create"})

	select {
	case ev := <-a.Events():
		assert.Equal(t, "message.create", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber a")
	}
	select {
	case ev := <-b.Events():
		assert.Equal(t, "message.create", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber b")
	}
}

func TestBus_SlowSubscriberIsDroppedNotBlocking(t *testing.T) {
	bus := eventbus.New(nil)
	slow := bus.Subscribe()
	fast := bus.Subscribe()
	defer fast.Close()

	// Flood past the subscriber buffer without ever draining "slow",
	// while "fast" reads as the events arrive.
	drained := 0
	for i := 0; i < 2000; i++ {
		bus.Publish(eventbus.DomainEvent{Type: "message.create"})
		select {
		case <-fast.Events():
			drained++
		default:
		}
	}

	select {
	case <-slow.Dropped():
	case <-time.After(time.Second):
		t.Fatal("expected slow subscriber to be dropped")
	}

	// The fast subscriber kept receiving throughout; publishing never
	// blocked on the slow one.
	for {
		select {
		case <-fast.Events():
			drained++
		default:
			assert.Greater(t, drained, 0)
			return
		}
	}
}

func TestRequiredIntent_MapsEventTypePrefixes(t *testing.T) {
	cases := map[string]eventbus.Intent{
		"message.create":   eventbus.IntentMessages,
		"member.update":    eventbus.IntentMembers,
		"space.update":     eventbus.IntentSpaces,
		"channel.create":   eventbus.IntentSpaces,
		"role.update":      eventbus.IntentSpaces,
		"invite.create":    eventbus.IntentSpaces,
		"reaction.add":     eventbus.IntentMessageReactions,
		"typing.start":     eventbus.IntentMessageTyping,
		"presence.update":  eventbus.IntentPresences,
		"voice.state_update": eventbus.IntentVoiceStates,
		"ban.create":       eventbus.IntentModeration,
		"emoji.create":     eventbus.IntentEmojis,
	}
	for eventType, want := range cases {
		got, ok := eventbus.RequiredIntent(eventType)
		require.True(t, ok, eventType)
		assert.Equal(t, want, got, eventType)
	}
}

func TestRequiredIntent_UnmappedTypeIsAlwaysDelivered(t *testing.T) {
	_, ok := eventbus.RequiredIntent("interaction.create")
	assert.False(t, ok)
}

func TestDomainEvent_SpaceIDIsAnID(t *testing.T) {
	ev := eventbus.DomainEvent{Type: "space.update", SpaceID: repository.ID(1), HasSpaceID: true}
	assert.True(t, ev.HasSpaceID)
}
