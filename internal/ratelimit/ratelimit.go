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

// Package ratelimit implements the HTTP request limiter: a token bucket
// per Authorization header, refilled continuously rather than reset on a
// fixed window boundary.
package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

const (
	// BaseRate is the steady-state number of requests allowed per Window.
	BaseRate = 60
	// Burst is added on top of BaseRate for the bucket's capacity.
	Burst = 10
	// Capacity is the bucket's maximum token count (BaseRate + Burst).
	Capacity = BaseRate + Burst
	// Window is the period BaseRate tokens are spread across.
	Window = 60 * time.Second

	anonKey = "anon"
)

// Result is the outcome of a single Allow check, carrying everything the
// HTTP middleware needs for its response headers.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// Limiter is a concurrent-safe keyed token-bucket limiter.
type Limiter struct {
	buckets *xsync.Map[string, *bucket]
	now     func() time.Time
}

// New returns a ready-to-use Limiter.
func New() *Limiter {
	return &Limiter{buckets: xsync.NewMap[string, *bucket](), now: time.Now}
}

// KeyFor derives the bucket key from an Authorization header value,
// falling back to a constant anonymous key when header is empty.
func KeyFor(header string) string {
	if header == "" {
		return anonKey
	}
	sum := sha256.Sum256([]byte(header))
	return hex.EncodeToString(sum[:])
}

// Allow consumes one token from key's bucket, creating it at full
// capacity on first use, and reports whether the request is allowed.
func (l *Limiter) Allow(key string) Result {
	b, _ := l.buckets.LoadOrStore(key, &bucket{tokens: Capacity, lastFill: l.now()})

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(b.lastFill)
	if elapsed > 0 {
		refill := elapsed.Seconds() * (float64(BaseRate) / Window.Seconds())
		b.tokens += refill
		if b.tokens > Capacity {
			b.tokens = Capacity
		}
		b.lastFill = now
	}

	secondsToFull := (Capacity - b.tokens) / (float64(BaseRate) / Window.Seconds())
	resetAt := now.Add(time.Duration(secondsToFull * float64(time.Second)))

	if b.tokens < 1 {
		secondsToOne := (1 - b.tokens) / (float64(BaseRate) / Window.Seconds())
		return Result{
			Allowed:    false,
			Remaining:  0,
			Limit:      Capacity,
			ResetAt:    resetAt,
			RetryAfter: time.Duration(secondsToOne * float64(time.Second)),
		}
	}

	b.tokens--
	return Result{
		Allowed:   true,
		Remaining: int(b.tokens),
		Limit:     Capacity,
		ResetAt:   resetAt,
	}
}
