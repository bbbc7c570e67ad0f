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

package kv_test

import (
	"context"
	"sync"
	"testing"

	"github.com/accordchat/accordserver/internal/kv"
	"github.com/accordchat/accordserver/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetricsOnce is shared across this file's tests: metrics.NewMetrics
// registers every instrument with the global Prometheus registry, so a
// second call within the same test binary would panic on re-registration.
var testMetricsOnce = sync.OnceValue(metrics.NewMetrics)

func TestInstrumentNilMetricsReturnsUnwrapped(t *testing.T) {
	t.Parallel()
	store := makeTestKV(t)
	require.Same(t, store, kv.Instrument(store, nil))
}

func TestInstrumentPassesThroughOperations(t *testing.T) {
	store := kv.Instrument(makeTestKV(t), testMetricsOnce())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "instrumented", []byte("value")))

	val, err := store.Get(ctx, "instrumented")
	require.NoError(t, err)
	assert.Equal(t, "value", string(val))

	has, err := store.Has(ctx, "instrumented")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, store.Delete(ctx, "instrumented"))

	has, err = store.Has(ctx, "instrumented")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestInstrumentRecordsErrorStatus(t *testing.T) {
	store := kv.Instrument(makeTestKV(t), testMetricsOnce())

	_, err := store.Get(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
