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

package kv

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/accordchat/accordserver/internal/config"
	"github.com/puzpuzpuz/xsync/v4"
)

func makeInMemoryKV(_ context.Context, _ *config.Config) (KV, error) {
	return &inMemoryKV{
		kv: xsync.NewMap[string, *kvEntry](),
	}, nil
}

type kvEntry struct {
	mu     sync.Mutex
	values [][]byte
	expiry time.Time
}

func (e *kvEntry) expired() bool {
	return !e.expiry.IsZero() && time.Now().After(e.expiry)
}

type inMemoryKV struct {
	kv *xsync.Map[string, *kvEntry]
}

func (s *inMemoryKV) load(key string) (*kvEntry, bool) {
	e, ok := s.kv.Load(key)
	if !ok {
		return nil, false
	}
	if e.expired() {
		s.kv.Delete(key)
		return nil, false
	}
	return e, true
}

func (s *inMemoryKV) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.load(key)
	return ok, nil
}

func (s *inMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.load(key)
	if !ok {
		return nil, fmt.Errorf("kv: key %q not found", key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.values) == 0 {
		return nil, fmt.Errorf("kv: key %q not found", key)
	}
	return e.values[0], nil
}

func (s *inMemoryKV) Set(_ context.Context, key string, value []byte) error {
	s.kv.Store(key, &kvEntry{values: [][]byte{value}})
	return nil
}

func (s *inMemoryKV) Delete(_ context.Context, key string) error {
	s.kv.Delete(key)
	return nil
}

func (s *inMemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	e, ok := s.load(key)
	if !ok {
		return fmt.Errorf("kv: key %q not found", key)
	}
	if ttl <= 0 {
		s.kv.Delete(key)
		return nil
	}
	e.mu.Lock()
	e.expiry = time.Now().Add(ttl)
	e.mu.Unlock()
	return nil
}

func (s *inMemoryKV) Scan(_ context.Context, _ uint64, match string, count int64) ([]string, uint64, error) {
	keys := make([]string, 0)
	s.kv.Range(func(key string, e *kvEntry) bool {
		if e.expired() {
			s.kv.Delete(key)
			return true
		}
		matched, _ := path.Match(match, key)
		if match == "" || matched {
			keys = append(keys, key)
		}
		return count <= 0 || int64(len(keys)) < count
	})
	// The in-memory backend has no partial scan state to resume from, so
	// it always reports cursor 0 (scan complete) after one pass.
	return keys, 0, nil
}

func (s *inMemoryKV) RPush(_ context.Context, key string, value []byte) (int64, error) {
	e, _ := s.kv.LoadOrStore(key, &kvEntry{})
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values = append(e.values, value)
	return int64(len(e.values)), nil
}

func (s *inMemoryKV) LDrain(_ context.Context, key string) ([][]byte, error) {
	e, ok := s.kv.LoadAndDelete(key)
	if !ok {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values, nil
}

func (s *inMemoryKV) Close() error {
	return nil
}
