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

// Package config holds the single Config struct loaded once at process
// startup via configulator and threaded explicitly through the rest of
// the server, rather than read back out of a package-level global.
package config

// Database configures the repository's backing SQL store.
type Database struct {
	Driver   DatabaseDriver `name:"database_driver" default:"postgres"`
	Host     string         `name:"database_host"`
	Port     int            `name:"database_port" default:"5432"`
	Username string         `name:"database_username"`
	Password string         `name:"database_password"`
	Database string         `name:"database_name" default:"accord"`
	SSLMode  string         `name:"database_ssl_mode" default:"prefer"`
}

// Redis configures the shared KV/PubSub backend used to cluster the
// EventBus, RateLimiter and PresenceTable across more than one process.
type Redis struct {
	Enabled  bool   `name:"redis_enabled"`
	Host     string `name:"redis_host" default:"localhost"`
	Port     int    `name:"redis_port" default:"6379"`
	Password string `name:"redis_password"`
}

// Metrics configures the Prometheus /metrics server.
type Metrics struct {
	Enabled      bool   `name:"metrics_enabled" default:"true"`
	Bind         string `name:"metrics_bind" default:"0.0.0.0"`
	Port         int    `name:"metrics_port" default:"9100"`
	OTLPEndpoint string `name:"otlp_endpoint"`
}

// PProf configures the debug pprof server.
type PProf struct {
	Enabled        bool     `name:"pprof_enabled"`
	Bind           string   `name:"pprof_bind" default:"127.0.0.1"`
	Port           int      `name:"pprof_port" default:"6060"`
	TrustedProxies []string `name:"pprof_trusted_proxies"`
}

// HTTP configures the REST + gateway listener.
type HTTP struct {
	Bind           string   `name:"http_bind" default:"0.0.0.0"`
	Port           int      `name:"http_port" default:"8080"`
	CORSHosts      []string `name:"cors_hosts"`
	TrustedProxies []string `name:"trusted_proxies"`
}

// SFU configures this process when it runs as an embedded SFU edge node
// (ACCORD_MODE=sfu) instead of the main chat/gateway process.
type SFU struct {
	MainURL           string `name:"accord_main_url"`
	AdminToken        string `name:"accord_sfu_admin_token"`
	NodeID            string `name:"accord_sfu_node_id"`
	Region            string `name:"accord_sfu_region"`
	Capacity          int    `name:"accord_sfu_capacity" default:"100"`
	Endpoint          string `name:"accord_sfu_endpoint"`
	HeartbeatInterval int    `name:"accord_sfu_heartbeat_interval" default:"25"`
}

// LiveKit configures the LiveKit voice backend.
type LiveKit struct {
	URL       string `name:"livekit_url"`
	APIKey    string `name:"livekit_api_key"`
	APISecret string `name:"livekit_api_secret"`
}

// Config stores the application configuration, loaded once via
// configulator.FromContext[Config](ctx).LoadWithoutValidation(), checked
// with Validate, and passed explicitly to every component that needs it.
type Config struct {
	Port            int          `name:"port" default:"8080"`
	DatabaseURL     string       `name:"database_url"`
	Mode            Mode         `name:"accord_mode" default:"main"`
	VoiceBackend    VoiceBackend `name:"accord_voice_backend" default:"custom"`
	StoragePath     string       `name:"accord_storage_path" default:"./data"`
	TestMode        bool         `name:"accord_test_mode"`
	LogLevel        LogLevel     `name:"log_level" default:"info"`
	Secret          string       `name:"secret"`

	Database Database `name:"database"`
	Redis    Redis    `name:"redis"`
	Metrics  Metrics  `name:"metrics"`
	PProf    PProf    `name:"pprof"`
	HTTP     HTTP     `name:"http"`
	SFU      SFU      `name:"sfu"`
	LiveKit  LiveKit  `name:"livekit"`
}
