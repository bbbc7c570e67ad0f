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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the Prometheus instruments the core subsystems feed:
// gateway session counts, EventBus drop behaviour, and voice join/leave
// churn.
type Metrics struct {
	GatewaySessionsActive prometheus.Gauge
	GatewayFramesInTotal  *prometheus.CounterVec
	GatewayCloseTotal     *prometheus.CounterVec

	EventBusPublishedTotal prometheus.Counter
	EventBusDroppedTotal   prometheus.Counter

	VoiceJoinsTotal  *prometheus.CounterVec
	VoiceLeavesTotal *prometheus.CounterVec

	SFUNodesOnline prometheus.Gauge

	KVOperationsTotal   *prometheus.CounterVec
	KVOperationDuration *prometheus.HistogramVec
}

// NewMetrics constructs and registers all of this process's instruments.
func NewMetrics() *Metrics {
	m := &Metrics{
		GatewaySessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "accord_gateway_sessions_active",
			Help: "The current number of live gateway sessions.",
		}),
		GatewayFramesInTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accord_gateway_frames_in_total",
			Help: "Inbound gateway frames received, by opcode.",
		}, []string{"opcode"}),
		GatewayCloseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accord_gateway_close_total",
			Help: "Gateway connections closed, by close code.",
		}, []string{"code"}),
		EventBusPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accord_eventbus_published_total",
			Help: "Domain events published to the bus.",
		}),
		EventBusDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accord_eventbus_dropped_subscribers_total",
			Help: "Subscribers dropped from the bus for falling behind.",
		}),
		VoiceJoinsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accord_voice_joins_total",
			Help: "Voice channel joins, by backend.",
		}, []string{"backend"}),
		VoiceLeavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accord_voice_leaves_total",
			Help: "Voice channel leaves, by backend.",
		}, []string{"backend"}),
		SFUNodesOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "accord_sfu_nodes_online",
			Help: "Number of SFU nodes currently marked online.",
		}),
		KVOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "accord_kv_operations_total",
			Help: "The total number of KV operations performed.",
		}, []string{"operation", "status"}),
		KVOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accord_kv_operation_duration_seconds",
			Help:    "Duration of KV operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(
		m.GatewaySessionsActive,
		m.GatewayFramesInTotal,
		m.GatewayCloseTotal,
		m.EventBusPublishedTotal,
		m.EventBusDroppedTotal,
		m.VoiceJoinsTotal,
		m.VoiceLeavesTotal,
		m.SFUNodesOnline,
		m.KVOperationsTotal,
		m.KVOperationDuration,
	)
}

func (m *Metrics) RecordKVOperation(operation, status string, durationSeconds float64) {
	m.KVOperationsTotal.WithLabelValues(operation, status).Inc()
	m.KVOperationDuration.WithLabelValues(operation).Observe(durationSeconds)
}
