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

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidMode indicates that ACCORD_MODE is not one of the known modes.
	ErrInvalidMode = errors.New("invalid accord mode provided, must be one of main or sfu")
	// ErrInvalidVoiceBackend indicates that ACCORD_VOICE_BACKEND is not recognized.
	ErrInvalidVoiceBackend = errors.New("invalid accord voice backend provided, must be one of custom or livekit")
	// ErrSecretRequired indicates that the signing secret is required.
	ErrSecretRequired = errors.New("secret is required for the application")
	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")
	// ErrInvalidDatabaseDriver indicates that the provided database driver is not valid.
	ErrInvalidDatabaseDriver = errors.New("invalid database driver provided")
	// ErrInvalidDatabaseHost indicates that the provided database host is not valid.
	ErrInvalidDatabaseHost = errors.New("invalid database host provided")
	// ErrInvalidDatabasePort indicates that the provided database port is not valid.
	ErrInvalidDatabasePort = errors.New("invalid database port provided")
	// ErrInvalidDatabaseName indicates that the provided database name is not valid.
	ErrInvalidDatabaseName = errors.New("invalid database name provided")
	// ErrInvalidHTTPPort indicates that the provided HTTP port is not valid.
	ErrInvalidHTTPPort = errors.New("invalid HTTP port provided")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfBindAddress indicates that the provided PProf server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid PProf server bind address provided")
	// ErrInvalidPProfPort indicates that the provided PProf server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid PProf server port provided")
	// ErrSFUFieldsRequired indicates that ACCORD_MODE=sfu is missing one of its required fields.
	ErrSFUFieldsRequired = errors.New("accord_main_url, accord_sfu_admin_token, accord_sfu_node_id, accord_sfu_region and accord_sfu_endpoint are required when accord_mode is sfu")
	// ErrLiveKitFieldsRequired indicates that the livekit backend is missing credentials.
	ErrLiveKitFieldsRequired = errors.New("livekit_url, livekit_api_key and livekit_api_secret are required when accord_voice_backend is livekit")
)

// Validate validates the Redis configuration.
func (r Redis) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Host == "" {
		return ErrInvalidRedisHost
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ErrInvalidRedisPort
	}
	return nil
}

// Validate validates the Database configuration.
func (d Database) Validate() error {
	if d.Driver != DatabaseDriverSQLite && d.Driver != DatabaseDriverPostgres {
		return ErrInvalidDatabaseDriver
	}
	if d.Driver == DatabaseDriverPostgres && d.Host == "" {
		return ErrInvalidDatabaseHost
	}
	if d.Driver == DatabaseDriverPostgres && (d.Port <= 0 || d.Port > 65535) {
		return ErrInvalidDatabasePort
	}
	if d.Database == "" {
		return ErrInvalidDatabaseName
	}
	return nil
}

// Validate validates the HTTP configuration.
func (h HTTP) Validate() error {
	if h.Port <= 0 || h.Port > 65535 {
		return ErrInvalidHTTPPort
	}
	return nil
}

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}
	return nil
}

// Validate validates the PProf configuration.
func (p PProf) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Bind == "" {
		return ErrInvalidPProfBindAddress
	}
	if p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidPProfPort
	}
	return nil
}

// Validate validates the SFU configuration; only enforced when Mode is sfu.
func (s SFU) Validate(mode Mode) error {
	if mode != ModeSFU {
		return nil
	}
	if s.MainURL == "" || s.AdminToken == "" || s.NodeID == "" || s.Region == "" || s.Endpoint == "" {
		return ErrSFUFieldsRequired
	}
	return nil
}

// Validate validates the LiveKit configuration; only enforced when it is the selected backend.
func (l LiveKit) Validate(backend VoiceBackend) error {
	if backend != VoiceBackendLiveKit {
		return nil
	}
	if l.URL == "" || l.APIKey == "" || l.APISecret == "" {
		return ErrLiveKitFieldsRequired
	}
	return nil
}

// Validate validates the full Config, failing closed on the first problem found.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug && c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn && c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}
	if c.Mode != ModeMain && c.Mode != ModeSFU {
		return ErrInvalidMode
	}
	if c.VoiceBackend != VoiceBackendCustom && c.VoiceBackend != VoiceBackendLiveKit {
		return ErrInvalidVoiceBackend
	}
	if c.Secret == "" && !c.TestMode {
		return ErrSecretRequired
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.SFU.Validate(c.Mode); err != nil {
		return err
	}
	if err := c.LiveKit.Validate(c.VoiceBackend); err != nil {
		return err
	}
	return nil
}
