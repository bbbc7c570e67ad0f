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
	"time"

	"github.com/accordchat/accordserver/internal/metrics"
)

// instrumented wraps a KV and records accord_kv_operations_total /
// accord_kv_operation_duration_seconds around every call, the same
// operation/status/duration shape the teacher records around its own
// repeater database HTTP calls.
type instrumented struct {
	kv KV
	m  *metrics.Metrics
}

// Instrument wraps kv so every call is recorded on m. m may be nil, in
// which case the wrapped KV is returned unchanged.
func Instrument(kv KV, m *metrics.Metrics) KV {
	if m == nil {
		return kv
	}
	return &instrumented{kv: kv, m: m}
}

func record[T any](m *metrics.Metrics, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RecordKVOperation(op, status, time.Since(start).Seconds())
	return result, err
}

func (i *instrumented) Has(ctx context.Context, key string) (bool, error) {
	return record(i.m, "has", func() (bool, error) { return i.kv.Has(ctx, key) })
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	return record(i.m, "get", func() ([]byte, error) { return i.kv.Get(ctx, key) })
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	_, err := record(i.m, "set", func() (struct{}, error) { return struct{}{}, i.kv.Set(ctx, key, value) })
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	_, err := record(i.m, "delete", func() (struct{}, error) { return struct{}{}, i.kv.Delete(ctx, key) })
	return err
}

func (i *instrumented) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := record(i.m, "expire", func() (struct{}, error) { return struct{}{}, i.kv.Expire(ctx, key, ttl) })
	return err
}

func (i *instrumented) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	start := time.Now()
	keys, next, err := i.kv.Scan(ctx, cursor, match, count)
	status := "ok"
	if err != nil {
		status = "error"
	}
	i.m.RecordKVOperation("scan", status, time.Since(start).Seconds())
	return keys, next, err
}

func (i *instrumented) RPush(ctx context.Context, key string, value []byte) (int64, error) {
	return record(i.m, "rpush", func() (int64, error) { return i.kv.RPush(ctx, key, value) })
}

func (i *instrumented) LDrain(ctx context.Context, key string) ([][]byte, error) {
	return record(i.m, "ldrain", func() ([][]byte, error) { return i.kv.LDrain(ctx, key) })
}

func (i *instrumented) Close() error {
	return i.kv.Close()
}
