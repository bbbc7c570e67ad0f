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

package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/accordchat/accordserver/internal/pubsub"
	"github.com/accordchat/accordserver/internal/repository"
)

const topic = "accord:eventbus"

// cluster is a Bus's optional fan-out to every other process sharing the
// same PubSub backend. Without one, a Bus only ever reaches subscribers in
// its own process.
type cluster struct {
	ps     pubsub.PubSub
	origin string
}

// wireEvent is DomainEvent's shape on the wire: Payload is re-encoded as
// raw JSON since gateway dispatch already serializes it to JSON downstream,
// and Origin lets a process recognize and ignore its own publishes when
// Redis echoes them back to the publishing subscriber.
type wireEvent struct {
	Origin        string          `json:"origin"`
	Type          string          `json:"type"`
	SpaceID       int64           `json:"space_id,omitempty"`
	HasSpaceID    bool            `json:"has_space_id,omitempty"`
	TargetUserIDs []int64         `json:"target_user_ids,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// Attach makes b fan out every future Publish to the rest of the cluster
// over ps, and starts relaying events published by other processes into
// b's local subscribers. origin should be unique per process (e.g. a
// snowflake worker ID) so this process recognizes and skips its own
// echoed publishes. Listening stops when ctx is canceled.
func (b *Bus) Attach(ctx context.Context, ps pubsub.PubSub, origin string) {
	b.cluster = &cluster{ps: ps, origin: origin}

	sub := ps.Subscribe(topic)
	go func() {
		<-ctx.Done()
		if err := sub.Close(); err != nil {
			slog.Error("eventbus cluster failed to close subscription", "error", err)
		}
	}()

	go func() {
		for data := range sub.Channel() {
			var wire wireEvent
			if err := json.Unmarshal(data, &wire); err != nil {
				slog.Error("eventbus cluster received malformed event", "error", err)
				continue
			}
			if wire.Origin == origin {
				continue
			}
			var payload any
			if err := json.Unmarshal(wire.Payload, &payload); err != nil {
				slog.Error("eventbus cluster failed to decode payload", "error", err, "event_type", wire.Type)
				continue
			}
			b.broadcastLocal(DomainEvent{
				Type:          wire.Type,
				SpaceID:       repository.ID(wire.SpaceID),
				HasSpaceID:    wire.HasSpaceID,
				TargetUserIDs: idsFromInt64(wire.TargetUserIDs),
				Payload:       payload,
			})
		}
	}()
}

func (c *cluster) publish(ev DomainEvent) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		slog.Error("eventbus cluster failed to encode payload", "error", err, "event_type", ev.Type)
		return
	}

	wire := wireEvent{
		Origin:        c.origin,
		Type:          ev.Type,
		SpaceID:       int64(ev.SpaceID),
		HasSpaceID:    ev.HasSpaceID,
		TargetUserIDs: idsToInt64(ev.TargetUserIDs),
		Payload:       payload,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		slog.Error("eventbus cluster failed to encode event", "error", err, "event_type", ev.Type)
		return
	}
	if err := c.ps.Publish(topic, data); err != nil {
		slog.Error("eventbus cluster failed to publish", "error", err, "event_type", ev.Type)
	}
}

func idsToInt64(ids []repository.ID) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func idsFromInt64(ids []int64) []repository.ID {
	if ids == nil {
		return nil
	}
	out := make([]repository.ID, len(ids))
	for i, id := range ids {
		out[i] = repository.ID(id)
	}
	return out
}
