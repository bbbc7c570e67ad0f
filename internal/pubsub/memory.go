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

package pubsub

import (
	"sync"

	"github.com/accordchat/accordserver/internal/config"
)

// subscriberBuffer bounds each subscriber's channel; a slow subscriber has
// its oldest unread message dropped rather than blocking the publisher.
const subscriberBuffer = 64

func makeInMemoryPubSub(_ *config.Config) (PubSub, error) {
	return &inMemoryPubSub{
		topics: make(map[string]map[*inMemorySubscription]struct{}),
	}, nil
}

type inMemoryPubSub struct {
	mu     sync.Mutex
	topics map[string]map[*inMemorySubscription]struct{}
}

func (ps *inMemoryPubSub) Publish(topic string, message []byte) error {
	ps.mu.Lock()
	subs := make([]*inMemorySubscription, 0, len(ps.topics[topic]))
	for s := range ps.topics[topic] {
		subs = append(subs, s)
	}
	ps.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- message:
		default:
			// Slow subscriber: drop the oldest queued message to make
			// room rather than block the publisher.
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- message:
			default:
			}
		}
	}
	return nil
}

func (ps *inMemoryPubSub) Subscribe(topic string) Subscription {
	sub := &inMemorySubscription{
		ps:    ps,
		topic: topic,
		ch:    make(chan []byte, subscriberBuffer),
	}
	ps.mu.Lock()
	if ps.topics[topic] == nil {
		ps.topics[topic] = make(map[*inMemorySubscription]struct{})
	}
	ps.topics[topic][sub] = struct{}{}
	ps.mu.Unlock()
	return sub
}

func (ps *inMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for topic, subs := range ps.topics {
		for s := range subs {
			close(s.ch)
		}
		delete(ps.topics, topic)
	}
	return nil
}

type inMemorySubscription struct {
	ps     *inMemoryPubSub
	topic  string
	ch     chan []byte
	closed bool
	mu     sync.Mutex
}

func (s *inMemorySubscription) Close() error {
	s.ps.mu.Lock()
	if subs, ok := s.ps.topics[s.topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.ps.topics, s.topic)
		}
	}
	s.ps.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

func (s *inMemorySubscription) Channel() <-chan []byte {
	return s.ch
}
